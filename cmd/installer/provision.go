//go:build linux
// +build linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/integrity"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/luks"
	"github.com/Cloud-Foundations/Provisioner/lib/provision"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/exectools"
)

const (
	bootcheckBinary = "/usr/bin/bootcheck"
	bootcheckHook   = "etc/pacman.d/hooks/95-bootcheck.hook"
)

func provisionSubcommand(args []string, logger log.DebugLogger) error {
	if err := provisionDevice(args[0], logger); err != nil {
		return fmt.Errorf("error provisioning: %w", err)
	}
	return nil
}

func askForConfirmation(plan *disklayout.Plan, reader *bufio.Reader,
	output io.Writer) error {
	if err := plan.Write(output); err != nil {
		return err
	}
	fmt.Fprintf(output, "All data on %s will be destroyed. Type YES to continue: ",
		plan.Device)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return err
	}
	if strings.TrimSpace(answer) != "YES" {
		return fmt.Errorf("not confirmed")
	}
	return nil
}

// recordBootIntegrity writes the first manifest of the unencrypted /boot of
// the new system and installs the package hook which verifies it.
func recordBootIntegrity(config provision.Config, toolset tools.Toolset,
	logger log.DebugLogger) error {
	if config.Mode == disklayout.ModeFullDiskEncryption {
		logger.Println("/boot is encrypted: not recording boot integrity")
		return nil
	}
	if config.DryRun {
		logger.Println("dry run: skipping: bootcheck update")
		return nil
	}
	engine := integrity.New(integrity.Config{
		Root:       filepath.Join(config.MountRoot, "boot"),
		PathPrefix: integrity.DefaultRoot,
		StateDir: filepath.Join(config.MountRoot,
			strings.TrimPrefix(integrity.DefaultStateDir, "/")),
		Packages:      integrity.DefaultPackages,
		KernelRelease: integrity.ModulesKernelRelease(config.MountRoot),
		VersionProber: tools.NewVersionProber(toolset.PackageTool,
			config.MountRoot),
	}, logger)
	if _, err := engine.Update(); err != nil {
		return err
	}
	return integrity.WriteHook(filepath.Join(config.MountRoot, bootcheckHook),
		bootcheckBinary, integrity.DefaultPackages)
}

func provisionDevice(device string, logger log.DebugLogger) error {
	config, err := loadConfig(device)
	if err != nil {
		return err
	}
	toolset := exectools.New(config.DryRun, logger).Toolset()
	reader := bufio.NewReader(os.Stdin)
	if !*confirm && !config.DryRun {
		plan, err := makePlan(device, logger)
		if err != nil {
			return err
		}
		if err := askForConfirmation(plan, reader, os.Stderr); err != nil {
			return err
		}
	}
	var passphrase luks.Passphrase
	if config.Mode.Encrypted() {
		passphrase, err = readPassphrase(os.Stdin, reader, os.Stderr)
		if err != nil {
			return err
		}
	}
	if *portNum > 0 {
		listener, err := startHttpServer(*portNum, logger)
		if err != nil {
			logger.Printf("not serving metrics: %s\n", err)
		} else {
			defer listener.Close()
		}
	}
	ctx := provision.NewContext(config, passphrase)
	pipeline := provision.New(toolset, logger)
	if err := pipeline.Run(ctx); err != nil {
		return err
	}
	if err := recordBootIntegrity(ctx.Config, toolset, logger); err != nil {
		return fmt.Errorf("error recording boot integrity: %w", err)
	}
	logger.Printf("%s is installed and mounted on %s: run \"installer unmount\" when done\n",
		ctx.Device, ctx.MountRoot)
	return nil
}
