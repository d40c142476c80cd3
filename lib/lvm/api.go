// Package lvm creates a volume group on one device and carves logical volumes
// out of it.
package lvm

import (
	"errors"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

const ExtentSize = 4 << 20

var ErrInsufficientFreeSpace = errors.New("insufficient free space")

type Group struct {
	Name    string
	Device  string
	Size    uint64
	Free    uint64
	Volumes []*Volume
}

type InsufficientFreeSpaceError struct {
	Group     string
	Volume    string
	Requested uint64
	Free      uint64
}

type Manager struct {
	tool   tools.VolumeTool
	logger log.DebugLogger
}

// SizePolicy is either FixedBytes(n) or RemainingFree().
type SizePolicy struct {
	fixed     uint64
	remaining bool
}

type Volume struct {
	Group  string
	Name   string
	Size   uint64
	Policy SizePolicy
}

// FixedBytes requests size bytes, rounded up to the extent size.
func FixedBytes(size uint64) SizePolicy {
	return SizePolicy{fixed: size}
}

func New(tool tools.VolumeTool, logger log.DebugLogger) *Manager {
	return &Manager{tool: tool, logger: logger}
}

// RemainingFree requests all free space left in the group at creation time.
// A later FixedBytes request will then fail.
func RemainingFree() SizePolicy {
	return SizePolicy{remaining: true}
}

func (e *InsufficientFreeSpaceError) Error() string {
	return e.error()
}

func (e *InsufficientFreeSpaceError) Unwrap() error {
	return ErrInsufficientFreeSpace
}

// CreateGroup initialises device as a physical volume, creates the group
// name on it and reads back its size.
func (m *Manager) CreateGroup(device, name string) (*Group, error) {
	return m.createGroup(device, name)
}

// CreateVolume creates a logical volume according to policy. If there is
// not enough free space an *InsufficientFreeSpaceError is returned.
func (m *Manager) CreateVolume(group *Group, name string,
	policy SizePolicy) (*Volume, error) {
	return m.createVolume(group, name, policy)
}

func (p SizePolicy) IsRemainingFree() bool {
	return p.remaining
}

func (p SizePolicy) String() string {
	return p.string()
}

// DevicePath returns /dev/<group>/<volume>.
func (v *Volume) DevicePath() string {
	return v.devicePath()
}
