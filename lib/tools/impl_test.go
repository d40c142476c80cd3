package tools

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestToolErrorMessage(t *testing.T) {
	err := fmt.Errorf("opening: %w", &ToolError{
		Tool:       "cryptsetup",
		Args:       []string{"open", "/dev/sda3", "cryptroot"},
		ExitStatus: 2,
		Output:     []byte("No key available with this passphrase.\n"),
	})
	var toolError *ToolError
	if !errors.As(err, &toolError) {
		t.Fatal("ToolError not found in chain")
	}
	if toolError.ExitStatus != 2 {
		t.Errorf("unexpected exit status: %d", toolError.ExitStatus)
	}
	expected := "error running: cryptsetup open /dev/sda3 cryptroot: exit status 2, output: No key available with this passphrase."
	if msg := toolError.Error(); msg != expected {
		t.Errorf("expected: %q, got: %q", expected, msg)
	}
}

func TestToolErrorNotStarted(t *testing.T) {
	cause := errors.New("executable file not found")
	err := &ToolError{Tool: "sgdisk", ExitStatus: -1, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("cause not unwrapped")
	}
	if !strings.Contains(err.Error(), "executable file not found") {
		t.Errorf("cause not in message: %s", err)
	}
}

type packageTool struct {
	PackageTool
	versions map[string]string
}

func (p *packageTool) PackageVersion(root, name string) (string, error) {
	if version, ok := p.versions[root+":"+name]; ok {
		return version, nil
	}
	return "", errors.New("not installed")
}

func TestVersionProber(t *testing.T) {
	tool := &packageTool{versions: map[string]string{"/mnt:linux": "6.6.1"}}
	prober := NewVersionProber(tool, "/mnt")
	if version, err := prober.PackageVersion("linux"); err != nil {
		t.Fatal(err)
	} else if version != "6.6.1" {
		t.Errorf("unexpected version: %s", version)
	}
	if _, err := prober.PackageVersion("grub"); err == nil {
		t.Error("missing package reported as installed")
	}
}
