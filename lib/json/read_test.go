package json

import (
	"bytes"
	"path/filepath"
	"testing"
)

type layout struct {
	SwapSize uint64
	Name     string
}

func TestReadCommented(t *testing.T) {
	input := []byte(`# Layout overrides.
{
    // Swap in bytes.
    "SwapSize": 1024,
    "Name": "test"
}
`)
	var value layout
	if err := Read(bytes.NewReader(input), &value); err != nil {
		t.Fatal(err)
	}
	if value.SwapSize != 1024 || value.Name != "test" {
		t.Errorf("unexpected value: %+v", value)
	}
}

func TestReadUnknownField(t *testing.T) {
	var value layout
	err := Read(bytes.NewReader([]byte(`{"SwapSize": 1, "Bogus": 2}`)),
		&value)
	if err == nil {
		t.Error("no failure for unknown field")
	}
}

func TestWriteThenReadFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteToFile(filename, 0644, "    ",
		layout{SwapSize: 7, Name: "x"}); err != nil {
		t.Fatal(err)
	}
	var value layout
	if err := ReadFromFile(filename, &value); err != nil {
		t.Fatal(err)
	}
	if value.SwapSize != 7 || value.Name != "x" {
		t.Errorf("unexpected value: %+v", value)
	}
}
