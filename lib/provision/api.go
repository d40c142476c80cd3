// Package provision drives a target device from an empty disk to an installed
// base system. Stages run strictly forward. A failed stage halts the run and
// nothing is rolled back: opened containers and volume groups are left for
// the operator.
package provision

import (
	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/luks"
	"github.com/Cloud-Foundations/Provisioner/lib/lvm"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

const (
	StateUnpartitioned State = iota
	StatePartitioned
	StateContainersOpened
	StateVolumesCreated
	StateFormatted
	StateMounted
	StateBaseInstalled
)

var DefaultPackages = []string{
	"base",
	"linux",
	"linux-firmware",
	"mkinitcpio",
	"cryptsetup",
	"lvm2",
	"grub",
	"efibootmgr",
}

type Config struct {
	Device          string
	Mode            disklayout.EncryptionMode
	Policy          disklayout.Policy
	MountRoot       string
	Packages        []string
	VolumeGroupName string
	BootloaderId    string
	DryRun          bool // Do not write configuration files into MountRoot.
}

type ConfigurationError struct {
	Problem string
	Err     error
}

// Context carries all state of one run between the stages.
type Context struct {
	Config
	Passphrase    luks.Passphrase // Wiped once the volumes are created.
	State         State
	Capacity      uint64
	Plan          *disklayout.Plan
	BootContainer *luks.Container
	RootContainer *luks.Container
	Group         *lvm.Group
	Devices       Devices
	Mounts        []MountEntry // In mount order.
}

// Devices are the nodes holding each file-system once staging is complete.
type Devices struct {
	EFI  string
	Boot string // Empty if /boot is part of the root file-system.
	Swap string
	Root string
}

type MountEntry struct {
	Device     string
	MountPoint string
	Type       tools.FileSystemType
}

type Pipeline struct {
	tools   tools.Toolset
	stager  *luks.Stager
	volumes *lvm.Manager
	logger  log.DebugLogger
}

// StageError reports the state which could not be entered and the error
// from the tool, unmodified.
type StageError struct {
	State State
	Err   error
}

type State uint

// NewContext creates a Context for a run, filling in defaults. The passphrase
// must be empty for ModeNone.
func NewContext(config Config, passphrase luks.Passphrase) *Context {
	return newContext(config, passphrase)
}

func New(toolset tools.Toolset, logger log.DebugLogger) *Pipeline {
	return &Pipeline{
		tools:   toolset,
		stager:  luks.NewStager(toolset.CryptoTool, logger),
		volumes: lvm.New(toolset.VolumeTool, logger),
		logger:  logger,
	}
}

// Unmount unmounts the entries in reverse order.
func Unmount(tool tools.MountTool, mounts []MountEntry) error {
	return unmount(tool, mounts)
}

func (e *ConfigurationError) Error() string {
	return e.error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Run validates the configuration and then runs every stage. The states for
// containers and volumes are skipped for ModeNone.
func (p *Pipeline) Run(ctx *Context) error {
	return p.run(ctx)
}

// Validate checks the configuration, reads the device capacity and computes
// the plan. Nothing is modified. Failures are returned as a
// *ConfigurationError.
func (p *Pipeline) Validate(ctx *Context) error {
	return p.validate(ctx)
}

func (e *StageError) Error() string {
	return e.error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (s State) String() string {
	return s.string()
}
