// Package faketools simulates the provisioning tools in memory. It is used by
// tests and by dry runs, which need plausible device sizes without touching
// any device.
package faketools

import (
	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/hash"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

const (
	ExtentSize    = 4 << 20
	Luks1Overhead = 2 << 20
	Luks2Overhead = 16 << 20
	LvmOverhead   = 1 << 20
)

type container struct {
	passphrase hash.Hash
	version    uint
}

type fileSystem struct {
	fsType tools.FileSystemType
	label  string
}

type group struct {
	free uint64
	size uint64
}

// Tools implements every interface of tools.Toolset. It is not safe for
// concurrent use.
type Tools struct {
	// PopulateRoot makes Install create a minimal system tree (kernel image,
	// initramfs, module directory and GRUB defaults) under the root.
	PopulateRoot bool
	// KernelRelease is used for the module directory created by Install.
	KernelRelease string
	calls         []string
	capacities    map[string]uint64
	containers    map[string]*container
	failures      map[string]error
	fileSystems   map[string]fileSystem
	groups        map[string]*group
	installed     map[string][]string
	mappings      map[string]string // Name: device.
	mounts        []string
	versions      map[string]string
}

func New() *Tools {
	return &Tools{
		KernelRelease: "6.6.1-arch1-1",
		capacities:    make(map[string]uint64),
		containers:    make(map[string]*container),
		failures:      make(map[string]error),
		fileSystems:   make(map[string]fileSystem),
		groups:        make(map[string]*group),
		installed:     make(map[string][]string),
		mappings:      make(map[string]string),
		versions:      make(map[string]string),
	}
}

// Calls returns a log of the operations performed, one per entry, in the form
// "Operation arg...".
func (t *Tools) Calls() []string {
	return append([]string(nil), t.calls...)
}

// FailOn makes every later call to operation (e.g. "Open") return err.
func (t *Tools) FailOn(operation string, err error) {
	t.failures[operation] = err
}

// FileSystem returns the type and label of the file-system made on device.
func (t *Tools) FileSystem(device string) (tools.FileSystemType, string, bool) {
	fs, ok := t.fileSystems[device]
	return fs.fsType, fs.label, ok
}

// Installed returns the packages installed into root.
func (t *Tools) Installed(root string) []string {
	return t.installed[root]
}

// IsOpen returns true if a container is mapped to name.
func (t *Tools) IsOpen(name string) bool {
	_, ok := t.mappings[name]
	return ok
}

// Mounted returns the currently mounted targets in mount order.
func (t *Tools) Mounted() []string {
	return append([]string(nil), t.mounts...)
}

func (t *Tools) SetCapacity(device string, size uint64) {
	t.capacities[device] = size
}

func (t *Tools) SetVersion(name, version string) {
	t.versions[name] = version
}

func (t *Tools) Toolset() tools.Toolset {
	return tools.Toolset{
		CryptoTool:    t,
		MountTool:     t,
		PackageTool:   t,
		PartitionTool: t,
		VolumeTool:    t,
	}
}

func (t *Tools) Capacity(device string) (uint64, error) {
	return t.capacity(device)
}

func (t *Tools) Close(name string) error {
	return t.close(name)
}

func (t *Tools) CreateGroup(name, device string) error {
	return t.createGroup(name, device)
}

func (t *Tools) CreateVolume(group, name string, size uint64) error {
	return t.createVolume(group, name, size)
}

func (t *Tools) Format(device string, version uint, passphrase []byte) error {
	return t.format(device, version, passphrase)
}

func (t *Tools) GroupSpace(name string) (uint64, uint64, error) {
	return t.groupSpace(name)
}

func (t *Tools) Install(root string, packages []string) error {
	return t.install(root, packages)
}

func (t *Tools) MakeFileSystem(device string, fsType tools.FileSystemType,
	label string) error {
	return t.makeFileSystem(device, fsType, label)
}

func (t *Tools) Mount(source, target string, fsType tools.FileSystemType) error {
	return t.mount(source, target, fsType)
}

func (t *Tools) Open(device, name string, passphrase []byte) error {
	return t.open(device, name, passphrase)
}

func (t *Tools) PackageVersion(root, name string) (string, error) {
	return t.packageVersion(root, name)
}

func (t *Tools) Partition(device string,
	partitions []disklayout.PartitionSpec) error {
	return t.partition(device, partitions)
}

func (t *Tools) RunInRoot(root, name string, args ...string) error {
	return t.runInRoot(root, name, args...)
}

func (t *Tools) Unmount(target string) error {
	return t.unmount(target)
}
