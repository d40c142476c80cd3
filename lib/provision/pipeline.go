package provision

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/format"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

type stage struct {
	state         State
	encryptedOnly bool
	run           func(p *Pipeline, ctx *Context) error
}

var stages = []stage{
	{StatePartitioned, false, (*Pipeline).partition},
	{StateContainersOpened, true, (*Pipeline).openContainers},
	{StateVolumesCreated, true, (*Pipeline).createVolumes},
	{StateFormatted, false, (*Pipeline).makeFileSystems},
	{StateMounted, false, (*Pipeline).mountFileSystems},
	{StateBaseInstalled, false, (*Pipeline).installBase},
}

var stateToText = map[State]string{
	StateUnpartitioned:    "Unpartitioned",
	StatePartitioned:      "Partitioned",
	StateContainersOpened: "ContainersOpened",
	StateVolumesCreated:   "VolumesCreated",
	StateFormatted:        "Formatted",
	StateMounted:          "Mounted",
	StateBaseInstalled:    "BaseInstalled",
}

func newContext(config Config, passphrase []byte) *Context {
	config.Policy = config.Policy.WithDefaults()
	if config.MountRoot == "" {
		config.MountRoot = "/mnt"
	}
	if len(config.Packages) < 1 {
		config.Packages = DefaultPackages
	}
	if config.VolumeGroupName == "" {
		config.VolumeGroupName = "vg"
	}
	if config.BootloaderId == "" {
		config.BootloaderId = "GRUB"
	}
	return &Context{Config: config, Passphrase: passphrase}
}

func unmount(tool tools.MountTool, mounts []MountEntry) error {
	for index := len(mounts) - 1; index >= 0; index-- {
		if err := tool.Unmount(mounts[index].MountPoint); err != nil {
			return err
		}
	}
	return nil
}

func (e *ConfigurationError) error() string {
	if e.Err == nil {
		return "configuration error: " + e.Problem
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Problem, e.Err)
}

func (e *StageError) error() string {
	return fmt.Sprintf("failed entering state %s: %s", e.State, e.Err)
}

func (s State) string() string {
	if text, ok := stateToText[s]; ok {
		return text
	}
	return fmt.Sprintf("State(%d)", uint(s))
}

func configurationError(problem string, err error) error {
	return &ConfigurationError{Problem: problem, Err: err}
}

func (p *Pipeline) validate(ctx *Context) error {
	device := filepath.Clean(ctx.Device)
	if !filepath.IsAbs(ctx.Device) || !strings.HasPrefix(device, "/dev/") {
		return configurationError(
			fmt.Sprintf("device: %q is not a path under /dev", ctx.Device),
			nil)
	}
	ctx.Device = device
	if !filepath.IsAbs(ctx.MountRoot) || filepath.Clean(ctx.MountRoot) == "/" {
		return configurationError(
			fmt.Sprintf("mount root: %q is not an absolute directory below /",
				ctx.MountRoot), nil)
	}
	ctx.MountRoot = filepath.Clean(ctx.MountRoot)
	if ctx.Mode.Encrypted() && len(ctx.Passphrase) < 1 {
		return configurationError(
			fmt.Sprintf("encryption mode %s requires a passphrase", ctx.Mode),
			nil)
	}
	if !ctx.Mode.Encrypted() && len(ctx.Passphrase) > 0 {
		return configurationError(
			"passphrase supplied but encryption mode is none", nil)
	}
	if len(ctx.Packages) < 1 {
		return configurationError("no packages to install", nil)
	}
	capacity, err := p.tools.Capacity(ctx.Device)
	if err != nil {
		return configurationError("reading capacity of "+ctx.Device, err)
	}
	plan, err := disklayout.PlanLayout(ctx.Device, capacity, ctx.Mode,
		ctx.Policy)
	if err != nil {
		return configurationError("planning layout", err)
	}
	ctx.Capacity = capacity
	ctx.Plan = plan
	return nil
}

func (p *Pipeline) run(ctx *Context) error {
	defer func() {
		ctx.Passphrase.Wipe()
		ctx.Passphrase = nil
	}()
	if ctx.State != StateUnpartitioned {
		return fmt.Errorf("cannot run from state %s: stages only run forward",
			ctx.State)
	}
	if err := p.validate(ctx); err != nil {
		return err
	}
	p.logger.Printf("provisioning %s (%s), encryption: %s\n",
		ctx.Device, format.FormatBytes(ctx.Capacity), ctx.Mode)
	setupMetrics()
	runStartTime := time.Now()
	for _, stage := range stages {
		if stage.encryptedOnly && !ctx.Mode.Encrypted() {
			continue
		}
		startTime := time.Now()
		if err := stage.run(p, ctx); err != nil {
			return &StageError{State: stage.state, Err: err}
		}
		duration := time.Since(startTime)
		stageDistributions[stage.state].Add(duration)
		ctx.State = stage.state
		p.logger.Printf("reached state %s in %s\n",
			ctx.State, format.Duration(duration))
		if ctx.State == StateVolumesCreated {
			ctx.Passphrase.Wipe()
			ctx.Passphrase = nil
			p.logger.Debugln(0, "passphrase discarded")
		}
	}
	runDistribution.Add(time.Since(runStartTime))
	return nil
}

func (p *Pipeline) partition(ctx *Context) error {
	if err := p.tools.Partition(ctx.Device, ctx.Plan.Partitions); err != nil {
		return err
	}
	for _, partition := range ctx.Plan.Partitions {
		device := ctx.Plan.PartitionDevice(partition.Index)
		switch partition.Role {
		case disklayout.RoleEFI:
			ctx.Devices.EFI = device
		case disklayout.RoleBoot:
			ctx.Devices.Boot = device
		case disklayout.RoleSwap:
			ctx.Devices.Swap = device
		case disklayout.RoleRoot:
			ctx.Devices.Root = device
		}
	}
	return nil
}

func (p *Pipeline) openContainers(ctx *Context) error {
	for _, holds := range []disklayout.Role{disklayout.RoleBoot,
		disklayout.RoleRoot} {
		partition := ctx.Plan.Find(disklayout.RoleContainer, holds)
		if partition == nil {
			continue
		}
		container, err := p.stager.Format(
			ctx.Plan.PartitionDevice(partition.Index), partition.LuksVersion,
			ctx.Passphrase)
		if err != nil {
			return err
		}
		container.MappedName = partition.Label
		mappedPath, err := p.stager.Open(container, ctx.Passphrase)
		if err != nil {
			return err
		}
		if holds == disklayout.RoleBoot {
			ctx.BootContainer = container
			ctx.Devices.Boot = mappedPath
		} else {
			ctx.RootContainer = container
		}
	}
	if ctx.RootContainer == nil {
		return errors.New("plan has no root container")
	}
	return nil
}
