package provision

import (
	"os"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/lvm"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

const (
	bootMountPoint = "/boot"
	efiMountPoint  = "/boot/efi"
	rootMountPoint = "/"

	bootFsLabel = "boot"
	efiFsLabel  = "EFI"
	rootFsLabel = "root"
	swapFsLabel = "swap"
)

func (p *Pipeline) createVolumes(ctx *Context) error {
	group, err := p.volumes.CreateGroup(ctx.RootContainer.MappedPath(),
		ctx.VolumeGroupName)
	if err != nil {
		return err
	}
	ctx.Group = group
	// Swap must come first: the root volume takes whatever is left.
	swap, err := p.volumes.CreateVolume(group, "swap",
		lvm.FixedBytes(ctx.Plan.Policy.SwapSize))
	if err != nil {
		return err
	}
	root, err := p.volumes.CreateVolume(group, "root", lvm.RemainingFree())
	if err != nil {
		return err
	}
	ctx.Devices.Swap = swap.DevicePath()
	ctx.Devices.Root = root.DevicePath()
	return nil
}

func (p *Pipeline) installBase(ctx *Context) error {
	if err := p.tools.Install(ctx.MountRoot, ctx.Packages); err != nil {
		return err
	}
	config := NewSystemConfig(ctx)
	if ctx.DryRun {
		config.log(p.logger)
	} else if err := config.Install(ctx.MountRoot); err != nil {
		return err
	}
	err := p.tools.RunInRoot(ctx.MountRoot, "mkinitcpio", "-P")
	if err != nil {
		return err
	}
	err = p.tools.RunInRoot(ctx.MountRoot, "grub-install",
		"--target=x86_64-efi", "--efi-directory="+efiMountPoint,
		"--bootloader-id="+ctx.BootloaderId)
	if err != nil {
		return err
	}
	return p.tools.RunInRoot(ctx.MountRoot, "grub-mkconfig",
		"-o", "/boot/grub/grub.cfg")
}

func (p *Pipeline) makeFileSystems(ctx *Context) error {
	type fileSystem struct {
		device string
		fsType tools.FileSystemType
		label  string
	}
	fileSystems := []fileSystem{
		{ctx.Devices.EFI, tools.FileSystemVfat, efiFsLabel},
		{ctx.Devices.Boot, tools.FileSystemExt4, bootFsLabel},
		{ctx.Devices.Root, tools.FileSystemExt4, rootFsLabel},
		{ctx.Devices.Swap, tools.FileSystemSwap, swapFsLabel},
	}
	for _, fs := range fileSystems {
		if fs.device == "" {
			continue
		}
		if err := p.tools.MakeFileSystem(fs.device, fs.fsType,
			fs.label); err != nil {
			return err
		}
	}
	return nil
}

// mountFileSystems mounts root, then boot inside it, then EFI inside boot.
func (p *Pipeline) mountFileSystems(ctx *Context) error {
	entries := []MountEntry{
		{ctx.Devices.Root, rootMountPoint, tools.FileSystemExt4},
		{ctx.Devices.Boot, bootMountPoint, tools.FileSystemExt4},
		{ctx.Devices.EFI, efiMountPoint, tools.FileSystemVfat},
	}
	for _, entry := range entries {
		if entry.Device == "" {
			continue
		}
		entry.MountPoint = filepath.Join(ctx.MountRoot, entry.MountPoint)
		if !ctx.DryRun {
			if err := os.MkdirAll(entry.MountPoint, fsutil.DirPerms); err != nil {
				return err
			}
		}
		if err := p.tools.Mount(entry.Device, entry.MountPoint,
			entry.Type); err != nil {
			return err
		}
		ctx.Mounts = append(ctx.Mounts, entry)
	}
	return nil
}
