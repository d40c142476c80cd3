package disklayout

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/Cloud-Foundations/Provisioner/lib/format"
)

func partitionName(device string, index uint) string {
	leafName := filepath.Base(device)
	suffix := strconv.FormatUint(uint64(index), 10)
	if last := leafName[len(leafName)-1]; last >= '0' && last <= '9' {
		return device + "p" + suffix
	}
	return device + suffix
}

func roundUp(value, alignment uint64) uint64 {
	if remainder := value % alignment; remainder != 0 {
		return value + alignment - remainder
	}
	return value
}

func (e *InsufficientCapacityError) error() string {
	return fmt.Sprintf("%s: %s: have %s, need at least %s",
		e.Device, ErrInsufficientCapacity, format.FormatBytes(e.Capacity),
		format.FormatBytes(e.Required))
}

func (p Policy) withDefaults() Policy {
	defaults := DefaultPolicy()
	if p.EfiSize == 0 {
		p.EfiSize = defaults.EfiSize
	}
	if p.BootSize == 0 {
		p.BootSize = defaults.BootSize
	}
	if p.SwapSize == 0 {
		p.SwapSize = defaults.SwapSize
	}
	if p.MinimumRootSize == 0 {
		p.MinimumRootSize = defaults.MinimumRootSize
	}
	if p.Alignment == 0 {
		p.Alignment = defaults.Alignment
	}
	return p
}

func planLayout(device string, capacity uint64, mode EncryptionMode,
	policy Policy) (*Plan, error) {
	if device == "" {
		return nil, errors.New("no device specified")
	}
	if _, ok := modeToText[mode]; !ok {
		return nil, fmt.Errorf("unsupported encryption mode: %s", mode)
	}
	policy = policy.withDefaults()
	align := policy.Alignment
	efiSize := roundUp(policy.EfiSize, align)
	bootSize := roundUp(policy.BootSize, align)
	swapSize := roundUp(policy.SwapSize, align)
	// The first partition starts one alignment unit in. The same is reserved
	// at the end for the backup GPT header.
	required := align + efiSize + swapSize + policy.MinimumRootSize + align
	if mode.Encrypted() {
		// The root container also holds the LUKS2 header, the volume group
		// metadata and up to one extent lost rounding the group size down.
		// Swap is a volume there, rounded up to whole extents.
		required = align + efiSize + bootSize + LuksHeaderSize +
			VolumeMetadataSize + VolumeExtentSize +
			roundUp(policy.SwapSize, VolumeExtentSize) +
			policy.MinimumRootSize + align
	}
	if capacity-capacity%align < required {
		return nil, &InsufficientCapacityError{
			Device:   device,
			Capacity: capacity,
			Required: required,
		}
	}
	plan := &Plan{
		Device:   device,
		Capacity: capacity,
		Mode:     mode,
		Policy:   policy,
	}
	plan.add(PartitionSpec{
		Size:     efiSize,
		TypeCode: TypeCodeEFI,
		Label:    "EFI",
		Role:     RoleEFI,
		Holds:    RoleEFI,
	})
	switch mode {
	case ModeNone:
		plan.add(PartitionSpec{
			Size:     swapSize,
			TypeCode: TypeCodeSwap,
			Label:    "swap",
			Role:     RoleSwap,
			Holds:    RoleSwap,
		})
		plan.addRemainder(PartitionSpec{
			TypeCode: TypeCodeLinux,
			Label:    "root",
			Role:     RoleRoot,
			Holds:    RoleRoot,
		})
	case ModeStandard:
		plan.add(PartitionSpec{
			Size:     bootSize,
			TypeCode: TypeCodeLinux,
			Label:    "boot",
			Role:     RoleBoot,
			Holds:    RoleBoot,
		})
		plan.addRemainder(PartitionSpec{
			TypeCode:    TypeCodeLUKS,
			Label:       "cryptroot",
			Role:        RoleContainer,
			Holds:       RoleRoot,
			LuksVersion: 2,
		})
	case ModeFullDiskEncryption:
		// GRUB can only unlock LUKS1, so the boot container uses it.
		plan.add(PartitionSpec{
			Size:        bootSize,
			TypeCode:    TypeCodeLUKS,
			Label:       "cryptboot",
			Role:        RoleContainer,
			Holds:       RoleBoot,
			LuksVersion: 1,
		})
		plan.addRemainder(PartitionSpec{
			TypeCode:    TypeCodeLUKS,
			Label:       "cryptroot",
			Role:        RoleContainer,
			Holds:       RoleRoot,
			LuksVersion: 2,
		})
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Plan) add(partition PartitionSpec) {
	partition.Index = uint(len(p.Partitions) + 1)
	partition.Start = p.Policy.Alignment
	if numPartitions := len(p.Partitions); numPartitions > 0 {
		last := p.Partitions[numPartitions-1]
		partition.Start = last.Start + last.Size
	}
	p.Partitions = append(p.Partitions, partition)
}

func (p *Plan) addRemainder(partition PartitionSpec) {
	p.add(partition)
	last := &p.Partitions[len(p.Partitions)-1]
	end := p.Capacity - p.Policy.Alignment
	end -= end % p.Policy.Alignment
	last.Size = end - last.Start
	last.Remainder = true
}

func (p *Plan) find(role, holds Role) *PartitionSpec {
	for index := range p.Partitions {
		partition := &p.Partitions[index]
		if partition.Role == role && partition.Holds == holds {
			return partition
		}
	}
	return nil
}

func (p *Plan) validate() error {
	if len(p.Partitions) < 1 {
		return errors.New("no partitions")
	}
	var end uint64
	for index, partition := range p.Partitions {
		if partition.Index != uint(index+1) {
			return fmt.Errorf("partition %d has index %d",
				index+1, partition.Index)
		}
		if partition.Size < 1 {
			return fmt.Errorf("partition %d is empty", partition.Index)
		}
		if partition.Start < end {
			return fmt.Errorf("partition %d overlaps partition %d",
				partition.Index, partition.Index-1)
		}
		end = partition.Start + partition.Size
		switch partition.Role {
		case RoleContainer:
			if partition.LuksVersion != 1 && partition.LuksVersion != 2 {
				return fmt.Errorf("container partition %d has LUKS version %d",
					partition.Index, partition.LuksVersion)
			}
		default:
			if partition.LuksVersion != 0 {
				return fmt.Errorf("plain partition %d has LUKS version %d",
					partition.Index, partition.LuksVersion)
			}
		}
	}
	if efi := p.Partitions[0]; efi.Role != RoleEFI {
		return errors.New("first partition is not the EFI partition")
	}
	if end > p.Capacity {
		return fmt.Errorf("partitions end at %d, beyond capacity: %d",
			end, p.Capacity)
	}
	return nil
}

func (p *Plan) write(writer io.Writer) error {
	_, err := fmt.Fprintf(writer, "Device: %s (%s), encryption: %s\n",
		p.Device, format.FormatBytes(p.Capacity), p.Mode)
	if err != nil {
		return err
	}
	for _, partition := range p.Partitions {
		var luks string
		if partition.LuksVersion > 0 {
			luks = fmt.Sprintf(" LUKS%d(%s)", partition.LuksVersion,
				partition.Holds)
		}
		_, err := fmt.Fprintf(writer, "  %-16s %-9s %s %10s%s\n",
			p.PartitionDevice(partition.Index), partition.Label,
			partition.TypeCode, format.FormatBytes(partition.Size), luks)
		if err != nil {
			return err
		}
	}
	if p.Mode.Encrypted() {
		_, err := fmt.Fprintf(writer, "  volume group: swap %s, root: remainder\n",
			format.FormatBytes(p.SwapVolumeSize()))
		return err
	}
	return nil
}
