// Package tools defines the capability set through which provisioning drives
// external programmes. The exectools package runs the real binaries and the
// faketools package simulates them for tests.
package tools

import (
	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
)

const (
	FileSystemExt4 FileSystemType = iota
	FileSystemVfat
	FileSystemSwap
)

type CryptoTool interface {
	// Format creates a LUKS container of the specified version on device.
	// The passphrase is delivered on standard input.
	Format(device string, version uint, passphrase []byte) error
	// Open maps the container on device to /dev/mapper/name.
	Open(device, name string, passphrase []byte) error
	Close(name string) error
}

type FileSystemType uint

type MountTool interface {
	Mount(source, target string, fsType FileSystemType) error
	Unmount(target string) error
}

type PackageTool interface {
	// Install installs packages into the system rooted at root.
	Install(root string, packages []string) error
	// PackageVersion returns the installed version of a package in the system
	// rooted at root.
	PackageVersion(root, name string) (string, error)
	// RunInRoot runs a programme chrooted into root.
	RunInRoot(root, name string, args ...string) error
}

type PartitionTool interface {
	// Capacity returns the size of device in bytes.
	Capacity(device string) (uint64, error)
	// MakeFileSystem creates a file-system (or swap area) on device.
	MakeFileSystem(device string, fsType FileSystemType, label string) error
	// Partition replaces the partition table on device.
	Partition(device string, partitions []disklayout.PartitionSpec) error
}

// ToolError is returned when an external programme fails. Args never contain
// secrets: those are passed on standard input.
type ToolError struct {
	Tool       string
	Args       []string
	ExitStatus int // -1 if the programme did not exit normally.
	Output     []byte
	Err        error
}

// Toolset is the full capability set used by the provisioning pipeline.
type Toolset struct {
	CryptoTool
	MountTool
	PackageTool
	PartitionTool
	VolumeTool
}

// VersionProber reports installed package versions for one system root.
type VersionProber struct {
	tool PackageTool
	root string
}

type VolumeTool interface {
	// CreateGroup initialises device as a physical volume and creates the
	// volume group name on it.
	CreateGroup(name, device string) error
	// CreateVolume creates a logical volume of size bytes. If size is zero
	// all remaining free space is used.
	CreateVolume(group, name string, size uint64) error
	// GroupSpace returns the total and free bytes of a volume group.
	GroupSpace(name string) (uint64, uint64, error)
}

func NewVersionProber(tool PackageTool, root string) *VersionProber {
	return &VersionProber{tool: tool, root: root}
}

func (e *ToolError) Error() string {
	return e.error()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func (t FileSystemType) String() string {
	return t.string()
}

func (p *VersionProber) PackageVersion(name string) (string, error) {
	return p.tool.PackageVersion(p.root, name)
}
