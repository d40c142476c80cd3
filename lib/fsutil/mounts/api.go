package mounts

import (
	"io"
)

type MountEntry struct {
	Device     string
	MountPoint string
	Type       string
	Options    string
}

type MountTable struct {
	Entries []*MountEntry
}

// GetMountTable reads the mount table of the current mount namespace.
func GetMountTable() (*MountTable, error) {
	return getMountTable()
}

// ReadMountTable parses a mount table in /proc/mounts format. Octal escapes
// in device and mount point names are decoded.
func ReadMountTable(reader io.Reader) (*MountTable, error) {
	return readMountTable(reader)
}

// FindEntry returns the entry with the longest mount point containing path.
func (mt *MountTable) FindEntry(path string) *MountEntry {
	return mt.findEntry(path)
}

// MountsUnder returns the entries mounted at or below prefix, in the order
// they were mounted.
func (mt *MountTable) MountsUnder(prefix string) []*MountEntry {
	return mt.mountsUnder(prefix)
}
