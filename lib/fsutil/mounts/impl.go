package mounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	procMounts = "/proc/mounts"
)

func getMountTable() (*MountTable, error) {
	file, err := os.Open(procMounts)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readMountTable(file)
}

func readMountTable(reader io.Reader) (*MountTable, error) {
	scanner := bufio.NewScanner(reader)
	table := &MountTable{}
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 1 {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("only read %d values from %s",
				len(fields), line)
		}
		table.Entries = append(table.Entries, &MountEntry{
			Device:     unescape(fields[0]),
			MountPoint: unescape(fields[1]),
			Type:       fields[2],
			Options:    fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func unescape(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}
	var builder strings.Builder
	for index := 0; index < len(field); index++ {
		if field[index] == '\\' && index+3 < len(field) {
			if value, err := strconv.ParseUint(field[index+1:index+4], 8,
				8); err == nil {
				builder.WriteByte(byte(value))
				index += 3
				continue
			}
		}
		builder.WriteByte(field[index])
	}
	return builder.String()
}

func (mt *MountTable) findEntry(path string) *MountEntry {
	var lastMatch *MountEntry
	var lastLength int
	for _, entry := range mt.Entries {
		length := len(entry.MountPoint)
		if isUnder(path, entry.MountPoint) && length > lastLength {
			lastMatch = entry
			lastLength = length
		}
	}
	return lastMatch
}

func isUnder(path, prefix string) bool {
	if prefix == "/" || path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func (mt *MountTable) mountsUnder(prefix string) []*MountEntry {
	prefix = filepath.Clean(prefix)
	var entries []*MountEntry
	for _, entry := range mt.Entries {
		if isUnder(entry.MountPoint, prefix) {
			entries = append(entries, entry)
		}
	}
	return entries
}
