package exectools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/format"
	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/wsyscall"
)

const deviceTimeout = 5 * time.Second

func kibibytes(value uint64) string {
	return strconv.FormatUint(value>>10, 10) + "K"
}

func (t *Tools) capacity(device string) (uint64, error) {
	if t.simulator != nil {
		if size, err := t.simulator.Capacity(device); err == nil {
			return size, nil
		}
	}
	size, err := wsyscall.GetDeviceSize(device)
	if err != nil {
		return 0, err
	}
	if t.simulator != nil {
		t.simulator.SetCapacity(device, size)
	}
	return size, nil
}

func (t *Tools) close(name string) error {
	if _, err := t.run("cryptsetup", "", nil, "close", name); err != nil {
		return err
	}
	if t.simulator != nil {
		return t.simulator.Close(name)
	}
	return nil
}

func (t *Tools) createGroup(name, device string) error {
	if err := t.waitForDevice(device); err != nil {
		return err
	}
	_, err := t.run("pvcreate", "", nil, "--yes", device)
	if err != nil {
		return err
	}
	if _, err := t.run("vgcreate", "", nil, name, device); err != nil {
		return err
	}
	if t.simulator != nil {
		return t.simulator.CreateGroup(name, device)
	}
	return nil
}

func (t *Tools) createVolume(group, name string, size uint64) error {
	args := []string{"--yes", "--wipesignatures", "y", "-n", name}
	if size == 0 {
		args = append(args, "-l", "100%FREE")
	} else {
		args = append(args, "-L", strconv.FormatUint(size, 10)+"b")
	}
	args = append(args, group)
	if _, err := t.run("lvcreate", "", nil, args...); err != nil {
		return err
	}
	if t.simulator != nil {
		return t.simulator.CreateVolume(group, name, size)
	}
	return nil
}

func (t *Tools) format(device string, version uint, passphrase []byte) error {
	if version != 1 && version != 2 {
		return fmt.Errorf("unsupported LUKS version: %d", version)
	}
	if err := t.waitForDevice(device); err != nil {
		return err
	}
	startTime := time.Now()
	_, err := t.run("cryptsetup", "", passphrase, "--batch-mode", "luksFormat",
		"--type", "luks"+strconv.FormatUint(uint64(version), 10),
		"--key-file", "-", device)
	if err != nil {
		return err
	}
	t.logger.Printf("formatted encrypted device %s in %s\n",
		device, format.Duration(time.Since(startTime)))
	if t.simulator != nil {
		return t.simulator.Format(device, version, passphrase)
	}
	return nil
}

func (t *Tools) groupSpace(name string) (uint64, uint64, error) {
	if t.simulator != nil {
		return t.simulator.GroupSpace(name)
	}
	output, err := t.runAlways("vgs", "", nil, "--noheadings", "--nosuffix",
		"--units", "b", "-o", "vg_size,vg_free", name)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(string(output))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected vgs output: %s", output)
	}
	size, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	free, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return size, free, nil
}

func (t *Tools) makeFileSystem(device string, fsType tools.FileSystemType,
	label string) error {
	if err := t.waitForDevice(device); err != nil {
		return err
	}
	startTime := time.Now()
	var err error
	switch fsType {
	case tools.FileSystemExt4:
		_, err = t.run("mkfs.ext4", "", nil, "-F", "-L", label,
			"-E", "lazy_itable_init=0,lazy_journal_init=0", device)
	case tools.FileSystemVfat:
		_, err = t.run("mkfs.vfat", "", nil, "-F", "32", "--codepage=437",
			"-n", label, device)
	case tools.FileSystemSwap:
		_, err = t.run("mkswap", "", nil, "-L", label, device)
	default:
		return fmt.Errorf("unsupported file-system type: %s", fsType)
	}
	if err != nil {
		return err
	}
	t.logger.Printf("made %s file-system on %s in %s\n",
		fsType, device, format.Duration(time.Since(startTime)))
	if t.simulator != nil {
		return t.simulator.MakeFileSystem(device, fsType, label)
	}
	return nil
}

func (t *Tools) open(device, name string, passphrase []byte) error {
	_, err := t.run("cryptsetup", "", passphrase, "open", "--type", "luks",
		"--key-file", "-", device, name)
	if err != nil {
		return err
	}
	if t.simulator != nil {
		return t.simulator.Open(device, name, passphrase)
	}
	return nil
}

func (t *Tools) partition(device string,
	partitions []disklayout.PartitionSpec) error {
	if len(partitions) < 1 {
		return errors.New("no partitions")
	}
	if _, err := t.run("sgdisk", "", nil, "--zap-all", device); err != nil {
		return err
	}
	args := make([]string, 0, len(partitions)*3+1)
	for _, partition := range partitions {
		index := strconv.FormatUint(uint64(partition.Index), 10)
		args = append(args,
			"--new="+index+":"+kibibytes(partition.Start)+":+"+
				kibibytes(partition.Size),
			"--typecode="+index+":"+partition.TypeCode,
			"--change-name="+index+":"+partition.Label)
	}
	args = append(args, device)
	if _, err := t.run("sgdisk", "", nil, args...); err != nil {
		return err
	}
	if t.simulator != nil {
		return t.simulator.Partition(device, partitions)
	}
	for _, partition := range partitions {
		err := t.waitForDevice(disklayout.PartitionName(device,
			partition.Index))
		if err != nil {
			return err
		}
	}
	return nil
}

// waitForDevice waits for udev to create the node for a new partition or
// mapping.
func (t *Tools) waitForDevice(device string) error {
	if t.simulator != nil {
		return nil
	}
	startTime := time.Now()
	numIterations, numOpened, err := fsutil.WaitForBlockAvailable(device,
		deviceTimeout)
	if err != nil {
		return err
	}
	if numIterations > 0 {
		t.logger.Debugf(0, "%s available after %d iterations, %d opens, %s\n",
			device, numIterations, numOpened,
			format.Duration(time.Since(startTime)))
	}
	return nil
}
