// Package exectools runs the real partitioning, encryption, volume, mount and
// package programmes. Secrets are passed on standard input and are never
// logged.
package exectools

import (
	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/faketools"
)

// Tools implements every interface of tools.Toolset.
type Tools struct {
	logger    log.DebugLogger
	simulator *faketools.Tools // Non-nil for dry runs.
}

// New creates a Tools. If dryRun is true, commands which modify the system
// are logged instead of run and their effects are simulated so that later
// steps see plausible device sizes.
func New(dryRun bool, logger log.DebugLogger) *Tools {
	t := &Tools{logger: logger}
	if dryRun {
		t.simulator = faketools.New()
	}
	return t
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
