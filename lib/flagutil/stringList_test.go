package flagutil

import (
	"flag"
	"testing"
)

func TestStringList(t *testing.T) {
	list := StringList{"default"}
	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	flagSet.Var(&list, "packages", "")
	if err := flagSet.Parse([]string{"-packages", "linux, grub,,"}); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0] != "linux" || list[1] != "grub" {
		t.Errorf("unexpected list: %v", list)
	}
	if list.String() != "linux,grub" {
		t.Errorf("unexpected string: %s", list.String())
	}
	if err := list.Set(""); err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got: %v", list)
	}
}
