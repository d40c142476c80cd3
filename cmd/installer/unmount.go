//go:build linux
// +build linux

package main

import (
	"fmt"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil/mounts"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/provision"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/exectools"
)

func unmountSubcommand(args []string, logger log.DebugLogger) error {
	if err := unmountTarget(logger); err != nil {
		return fmt.Errorf("error unmounting: %s", err)
	}
	return nil
}

func unmountTarget(logger log.DebugLogger) error {
	mountTable, err := mounts.GetMountTable()
	if err != nil {
		return err
	}
	var entries []provision.MountEntry
	for _, entry := range mountTable.MountsUnder(filepath.Clean(*mountPoint)) {
		entries = append(entries, provision.MountEntry{
			Device:     entry.Device,
			MountPoint: entry.MountPoint,
		})
	}
	if len(entries) < 1 {
		logger.Printf("nothing mounted under %s\n", *mountPoint)
		return nil
	}
	toolset := exectools.New(*dryRun, logger).Toolset()
	return provision.Unmount(toolset.MountTool, entries)
}
