// Package disklayout computes GPT partition tables for a target block device.
// The planner is pure: it never touches the device.
package disklayout

import (
	"errors"
	"io"
)

const (
	MiB = 1 << 20
	GiB = 1 << 30

	// Space inside an encrypted root container which volumes cannot use.
	LuksHeaderSize     = 16 * MiB // LUKS2 default.
	VolumeMetadataSize = MiB
	VolumeExtentSize   = 4 * MiB

	TypeCodeEFI   = "ef00"
	TypeCodeLinux = "8300"
	TypeCodeLUKS  = "8309"
	TypeCodeSwap  = "8200"
)

const (
	ModeNone EncryptionMode = iota
	ModeStandard
	ModeFullDiskEncryption
)

const (
	RoleEFI Role = iota
	RoleBoot
	RoleSwap
	RoleRoot
	RoleContainer
)

var ErrInsufficientCapacity = errors.New("insufficient capacity")

// EncryptionMode selects the layout. It may be used as a flag.Value.
type EncryptionMode uint

type InsufficientCapacityError struct {
	Device   string
	Capacity uint64
	Required uint64
}

// PartitionSpec describes one partition. Start and Size are in bytes.
type PartitionSpec struct {
	Index       uint
	Start       uint64
	Size        uint64
	Remainder   bool // Size was computed from the remaining capacity.
	TypeCode    string
	Label       string
	Role        Role
	Holds       Role // For containers: what the opened mapping will hold.
	LuksVersion uint
}

type Plan struct {
	Device     string
	Capacity   uint64
	Mode       EncryptionMode
	Policy     Policy
	Partitions []PartitionSpec
}

// Policy holds the sizes used by PlanLayout, in bytes. Zero values are
// replaced with the defaults.
type Policy struct {
	EfiSize         uint64 `json:",omitempty"`
	BootSize        uint64 `json:",omitempty"`
	SwapSize        uint64 `json:",omitempty"`
	MinimumRootSize uint64 `json:",omitempty"`
	Alignment       uint64 `json:",omitempty"`
}

type Role uint

// DefaultPolicy returns the default sizes: EFI 512MiB, boot 1GiB, swap 4GiB,
// a minimum root of 10GiB and 1MiB alignment.
func DefaultPolicy() Policy {
	return Policy{
		EfiSize:         512 * MiB,
		BootSize:        GiB,
		SwapSize:        4 * GiB,
		MinimumRootSize: 10 * GiB,
		Alignment:       MiB,
	}
}

// PartitionName returns the device node for partition index of device. A "p"
// separator is used when the device name ends in a digit (/dev/nvme0n1p1).
func PartitionName(device string, index uint) string {
	return partitionName(device, index)
}

// PlanLayout computes the partition table for device with the specified
// capacity. If the capacity cannot hold the fixed sizes plus the minimum root
// size an *InsufficientCapacityError is returned.
func PlanLayout(device string, capacity uint64, mode EncryptionMode,
	policy Policy) (*Plan, error) {
	return planLayout(device, capacity, mode, policy)
}

func (e *InsufficientCapacityError) Error() string {
	return e.error()
}

func (e *InsufficientCapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}

func (m EncryptionMode) Encrypted() bool {
	return m != ModeNone
}

func (m EncryptionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *EncryptionMode) Set(value string) error {
	return m.set(value)
}

func (m EncryptionMode) String() string {
	return m.string()
}

func (m *EncryptionMode) UnmarshalText(text []byte) error {
	return m.set(string(text))
}

// Find returns the first partition with the specified role and contents, or
// nil.
func (p *Plan) Find(role, holds Role) *PartitionSpec {
	return p.find(role, holds)
}

// PartitionDevice returns the device node for partition index of the plan.
func (p *Plan) PartitionDevice(index uint) string {
	return partitionName(p.Device, index)
}

// Validate checks that partition indices are contiguous from 1, that the EFI
// partition is first and unencrypted, that partitions do not overlap and that
// the table fits the device.
func (p *Plan) Validate() error {
	return p.validate()
}

// SwapVolumeSize returns the size of the swap logical volume for encrypted
// modes, which is the swap size rounded up to whole extents.
func (p *Plan) SwapVolumeSize() uint64 {
	return roundUp(p.Policy.SwapSize, VolumeExtentSize)
}

// Write prints the plan in a human readable table.
func (p *Plan) Write(writer io.Writer) error {
	return p.write(writer)
}

// WithDefaults returns a copy of the policy with zero values replaced by the
// defaults.
func (p Policy) WithDefaults() Policy {
	return p.withDefaults()
}

func (r Role) String() string {
	return r.string()
}
