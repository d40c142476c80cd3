package faketools

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/hash"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

func toolError(tool string, exitStatus int, format string,
	v ...interface{}) error {
	return &tools.ToolError{
		Tool:       tool,
		ExitStatus: exitStatus,
		Output:     []byte(fmt.Sprintf(format, v...)),
	}
}

func (t *Tools) record(operation string, args ...string) error {
	t.calls = append(t.calls, strings.Join(append([]string{operation},
		args...), " "))
	return t.failures[operation]
}

func (t *Tools) capacity(device string) (uint64, error) {
	if err := t.record("Capacity", device); err != nil {
		return 0, err
	}
	if size, ok := t.capacities[device]; ok {
		return size, nil
	}
	return 0, fmt.Errorf("open %s: no such file or directory", device)
}

func (t *Tools) close(name string) error {
	if err := t.record("Close", name); err != nil {
		return err
	}
	if _, ok := t.mappings[name]; !ok {
		return toolError("cryptsetup", 4, "Device %s is not active.", name)
	}
	delete(t.mappings, name)
	delete(t.capacities, filepath.Join("/dev/mapper", name))
	return nil
}

func (t *Tools) createGroup(name, device string) error {
	if err := t.record("CreateGroup", name, device); err != nil {
		return err
	}
	size, ok := t.capacities[device]
	if !ok {
		return toolError("pvcreate", 5, "No device found for %s.", device)
	}
	if _, ok := t.groups[name]; ok {
		return toolError("vgcreate", 5, "A volume group called %s already exists.",
			name)
	}
	if size <= LvmOverhead+ExtentSize {
		return toolError("vgcreate", 5, "%s is too small", device)
	}
	size -= LvmOverhead
	size -= size % ExtentSize
	t.groups[name] = &group{free: size, size: size}
	return nil
}

func (t *Tools) createVolume(groupName, name string, size uint64) error {
	if err := t.record("CreateVolume", groupName, name,
		strconv.FormatUint(size, 10)); err != nil {
		return err
	}
	vg, ok := t.groups[groupName]
	if !ok {
		return toolError("lvcreate", 5, "Volume group \"%s\" not found",
			groupName)
	}
	device := filepath.Join("/dev", groupName, name)
	if _, ok := t.capacities[device]; ok {
		return toolError("lvcreate", 5, "Logical Volume \"%s\" already exists",
			name)
	}
	if size == 0 {
		size = vg.free
	} else if remainder := size % ExtentSize; remainder != 0 {
		size += ExtentSize - remainder
	}
	if size == 0 || size > vg.free {
		return toolError("lvcreate", 5,
			"Volume group \"%s\" has insufficient free space", groupName)
	}
	vg.free -= size
	t.capacities[device] = size
	return nil
}

func (t *Tools) format(device string, version uint, passphrase []byte) error {
	if err := t.record("Format", device,
		strconv.FormatUint(uint64(version), 10)); err != nil {
		return err
	}
	if version != 1 && version != 2 {
		return toolError("cryptsetup", 1, "Unknown LUKS version %d", version)
	}
	if _, ok := t.capacities[device]; !ok {
		return toolError("cryptsetup", 4, "Device %s does not exist.", device)
	}
	for _, mappedDevice := range t.mappings {
		if mappedDevice == device {
			return toolError("cryptsetup", 5, "Cannot format device %s in use.",
				device)
		}
	}
	passphraseHash, err := hash.Compute(bytes.NewReader(passphrase))
	if err != nil {
		return err
	}
	t.containers[device] = &container{
		passphrase: passphraseHash,
		version:    version,
	}
	delete(t.fileSystems, device)
	return nil
}

func (t *Tools) groupSpace(name string) (uint64, uint64, error) {
	if err := t.record("GroupSpace", name); err != nil {
		return 0, 0, err
	}
	vg, ok := t.groups[name]
	if !ok {
		return 0, 0, toolError("vgs", 5, "Volume group \"%s\" not found", name)
	}
	return vg.size, vg.free, nil
}

func (t *Tools) install(root string, packages []string) error {
	if err := t.record("Install", append([]string{root},
		packages...)...); err != nil {
		return err
	}
	t.installed[root] = append(t.installed[root], packages...)
	if !t.PopulateRoot {
		return nil
	}
	files := map[string]string{
		"boot/vmlinuz-linux":       "kernel image\n",
		"boot/initramfs-linux.img": "initramfs\n",
		"etc/default/grub":         "GRUB_TIMEOUT=5\nGRUB_CMDLINE_LINUX=\"\"\n",
		filepath.Join("usr/lib/modules", t.KernelRelease, "pkgbase"): "linux\n",
	}
	for filename, content := range files {
		pathname := filepath.Join(root, filename)
		err := os.MkdirAll(filepath.Dir(pathname), fsutil.DirPerms)
		if err != nil {
			return err
		}
		err = os.WriteFile(pathname, []byte(content), fsutil.PublicFilePerms)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tools) makeFileSystem(device string, fsType tools.FileSystemType,
	label string) error {
	if err := t.record("MakeFileSystem", device, fsType.String(),
		label); err != nil {
		return err
	}
	if _, ok := t.capacities[device]; !ok {
		return toolError("mkfs", 1, "%s: No such file or directory", device)
	}
	t.fileSystems[device] = fileSystem{fsType: fsType, label: label}
	return nil
}

func (t *Tools) mount(source, target string, fsType tools.FileSystemType) error {
	if err := t.record("Mount", source, target, fsType.String()); err != nil {
		return err
	}
	fs, ok := t.fileSystems[source]
	if !ok || fs.fsType != fsType {
		return fmt.Errorf("mount %s on %s: invalid argument", source, target)
	}
	t.mounts = append(t.mounts, target)
	return nil
}

func (t *Tools) open(device, name string, passphrase []byte) error {
	if err := t.record("Open", device, name); err != nil {
		return err
	}
	c, ok := t.containers[device]
	if !ok {
		return toolError("cryptsetup", 1, "Device %s is not a valid LUKS device.",
			device)
	}
	if _, ok := t.mappings[name]; ok {
		return toolError("cryptsetup", 5, "Device %s already exists.", name)
	}
	passphraseHash, err := hash.Compute(bytes.NewReader(passphrase))
	if err != nil {
		return err
	}
	if passphraseHash != c.passphrase {
		return toolError("cryptsetup", 2,
			"No key available with this passphrase.")
	}
	overhead := uint64(Luks2Overhead)
	if c.version == 1 {
		overhead = Luks1Overhead
	}
	t.mappings[name] = device
	t.capacities[filepath.Join("/dev/mapper", name)] =
		t.capacities[device] - overhead
	return nil
}

func (t *Tools) packageVersion(root, name string) (string, error) {
	if err := t.record("PackageVersion", root, name); err != nil {
		return "", err
	}
	if version, ok := t.versions[name]; ok {
		return version, nil
	}
	return "", toolError("pacman", 1, "error: package '%s' was not found", name)
}

func (t *Tools) partition(device string,
	partitions []disklayout.PartitionSpec) error {
	if err := t.record("Partition", device); err != nil {
		return err
	}
	capacity, ok := t.capacities[device]
	if !ok {
		return toolError("sgdisk", 2, "Problem opening %s for reading!", device)
	}
	for _, partition := range partitions {
		if partition.Start+partition.Size > capacity {
			return toolError("sgdisk", 4,
				"Could not create partition %d from %d of size %d",
				partition.Index, partition.Start, partition.Size)
		}
	}
	for _, partition := range partitions {
		partitionDevice := disklayout.PartitionName(device, partition.Index)
		t.capacities[partitionDevice] = partition.Size
		delete(t.containers, partitionDevice)
		delete(t.fileSystems, partitionDevice)
	}
	return nil
}

func (t *Tools) runInRoot(root, name string, args ...string) error {
	return t.record("RunInRoot", append([]string{root, name}, args...)...)
}

func (t *Tools) unmount(target string) error {
	if err := t.record("Unmount", target); err != nil {
		return err
	}
	for index := len(t.mounts) - 1; index >= 0; index-- {
		if t.mounts[index] == target {
			t.mounts = append(t.mounts[:index], t.mounts[index+1:]...)
			return nil
		}
	}
	return fmt.Errorf("umount %s: invalid argument", target)
}
