package tools

import (
	"bytes"
	"fmt"
	"strings"
)

func (e *ToolError) error() string {
	buffer := &strings.Builder{}
	fmt.Fprintf(buffer, "error running: %s", e.Tool)
	if len(e.Args) > 0 {
		fmt.Fprintf(buffer, " %s", strings.Join(e.Args, " "))
	}
	if e.ExitStatus >= 0 {
		fmt.Fprintf(buffer, ": exit status %d", e.ExitStatus)
	} else if e.Err != nil {
		fmt.Fprintf(buffer, ": %s", e.Err)
	}
	if output := bytes.TrimSpace(e.Output); len(output) > 0 {
		fmt.Fprintf(buffer, ", output: %s", output)
	}
	return buffer.String()
}

func (t FileSystemType) string() string {
	switch t {
	case FileSystemExt4:
		return "ext4"
	case FileSystemVfat:
		return "vfat"
	case FileSystemSwap:
		return "swap"
	}
	return fmt.Sprintf("FileSystemType(%d)", uint(t))
}
