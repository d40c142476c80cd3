package integrity

import (
	"fmt"
	"io"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/format"
	"github.com/fatih/color"
)

func newColor(useColor bool, attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	if !useColor {
		c.DisableColor()
	}
	return c
}

func (e *MismatchError) error() string {
	r := e.Report
	return fmt.Sprintf(
		"%s changed: %d added, %d removed, %d modified: if this was expected run \"bootcheck update\"",
		r.Root, len(r.Added), len(r.Removed), len(r.Modified))
}

func (r *Report) write(writer io.Writer, useColor bool) error {
	red := newColor(useColor, color.FgRed, color.Bold)
	green := newColor(useColor, color.FgGreen, color.Bold)
	yellow := newColor(useColor, color.FgYellow)
	var err error
	printf := func(c *color.Color, text string, args ...interface{}) {
		if err == nil {
			_, err = c.Fprintf(writer, text, args...)
		}
	}
	plain := newColor(false)
	if r.Pass() {
		printf(green, "PASS")
		printf(plain, ": %s: %d files unchanged\n", r.Root, r.Checked)
	} else {
		printf(red, "FAIL")
		printf(plain, ": %s: %d added, %d removed, %d modified (%d checked)\n",
			r.Root, len(r.Added), len(r.Removed), len(r.Modified), r.Checked)
	}
	for _, pathname := range r.Added {
		printf(yellow, "  added:    %s\n", pathname)
	}
	for _, pathname := range r.Removed {
		printf(red, "  removed:  %s\n", pathname)
	}
	for _, pathname := range r.Modified {
		printf(red, "  modified: %s\n", pathname)
	}
	for _, pathname := range r.Unchanged {
		printf(plain, "  ok:       %s\n", pathname)
	}
	if !r.Pass() {
		printf(plain, "If this was expected run: bootcheck update\n")
	}
	return err
}

func (i *Info) write(writer io.Writer, useColor bool) error {
	bold := newColor(useColor, color.Bold)
	lines := []struct{ key, value string }{
		{"Root", i.Root},
		{"Manifest", fmt.Sprintf("%s (%s, %d files)", i.ManifestPath,
			format.FormatBytes(i.ManifestBytes), i.Entries)},
		{"Last updated", i.LastUpdated.Local().Format(
			format.TimeFormatSeconds)},
	}
	if i.HasBackup {
		lines = append(lines, struct{ key, value string }{"Backup",
			fmt.Sprintf("%s (%s)", i.BackupPath,
				format.FormatBytes(i.BackupBytes))})
	} else {
		lines = append(lines, struct{ key, value string }{"Backup", "none"})
	}
	lines = append(lines, struct{ key, value string }{"Tree size",
		format.FormatBytes(i.TreeSize)})
	for _, entry := range i.Metadata {
		if entry.Key == "generated" || entry.Key == "root" ||
			entry.Key == "files" {
			continue
		}
		key := entry.Key
		if name := strings.TrimPrefix(key, "package."); name != key {
			key = "Package " + name
		}
		lines = append(lines, struct{ key, value string }{key, entry.Value})
	}
	for _, line := range lines {
		if _, err := bold.Fprintf(writer, "%-14s", line.key+":"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(writer, line.value); err != nil {
			return err
		}
	}
	return nil
}
