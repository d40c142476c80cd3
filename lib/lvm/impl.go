package lvm

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/format"
)

func roundUp(size uint64) uint64 {
	if remainder := size % ExtentSize; remainder != 0 {
		return size + ExtentSize - remainder
	}
	return size
}

func (e *InsufficientFreeSpaceError) error() string {
	return fmt.Sprintf("volume group %s: %s for %s: requested %s, free %s",
		e.Group, ErrInsufficientFreeSpace, e.Volume,
		format.FormatBytes(e.Requested), format.FormatBytes(e.Free))
}

func (m *Manager) createGroup(device, name string) (*Group, error) {
	if device == "" || name == "" {
		return nil, errors.New("device and group name required")
	}
	if err := m.tool.CreateGroup(name, device); err != nil {
		return nil, err
	}
	size, free, err := m.tool.GroupSpace(name)
	if err != nil {
		return nil, err
	}
	m.logger.Printf("created volume group %s on %s: %s free\n",
		name, device, format.FormatBytes(free))
	return &Group{Name: name, Device: device, Size: size, Free: free}, nil
}

func (m *Manager) createVolume(group *Group, name string,
	policy SizePolicy) (*Volume, error) {
	for _, volume := range group.Volumes {
		if volume.Name == name {
			return nil, fmt.Errorf("volume group %s: volume %s already exists",
				group.Name, name)
		}
	}
	var size uint64
	if policy.remaining {
		if group.Free < 1 {
			return nil, &InsufficientFreeSpaceError{
				Group:  group.Name,
				Volume: name,
			}
		}
		size = group.Free
		if err := m.tool.CreateVolume(group.Name, name, 0); err != nil {
			return nil, err
		}
	} else {
		if policy.fixed < 1 {
			return nil, fmt.Errorf("volume %s: zero size requested", name)
		}
		size = roundUp(policy.fixed)
		if size > group.Free {
			return nil, &InsufficientFreeSpaceError{
				Group:     group.Name,
				Volume:    name,
				Requested: size,
				Free:      group.Free,
			}
		}
		if err := m.tool.CreateVolume(group.Name, name, size); err != nil {
			return nil, err
		}
	}
	group.Free -= size
	volume := &Volume{
		Group:  group.Name,
		Name:   name,
		Size:   size,
		Policy: policy,
	}
	group.Volumes = append(group.Volumes, volume)
	m.logger.Printf("created logical volume %s: %s\n",
		volume.DevicePath(), format.FormatBytes(size))
	return volume, nil
}

func (p SizePolicy) string() string {
	if p.remaining {
		return "RemainingFree"
	}
	return "FixedBytes(" + format.FormatBytes(p.fixed) + ")"
}

func (v *Volume) devicePath() string {
	return filepath.Join("/dev", v.Group, v.Name)
}
