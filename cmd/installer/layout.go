//go:build linux
// +build linux

package main

import (
	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/json"
	"github.com/Cloud-Foundations/Provisioner/lib/provision"
)

type layoutConfiguration struct {
	Policy          disklayout.Policy
	Packages        []string `json:",omitempty"`
	VolumeGroupName string   `json:",omitempty"`
	BootloaderId    string   `json:",omitempty"`
}

// loadConfig builds the pipeline configuration from the layout file (if
// any) and then the flags, which take precedence.
func loadConfig(device string) (provision.Config, error) {
	var layout layoutConfiguration
	if *layoutFile != "" {
		if err := json.ReadFromFile(*layoutFile, &layout); err != nil {
			return provision.Config{}, err
		}
	}
	return makeConfig(device, layout), nil
}

func makeConfig(device string, layout layoutConfiguration) provision.Config {
	policy := layout.Policy
	if minimumRootSize > 0 {
		policy.MinimumRootSize = uint64(minimumRootSize)
	}
	if swapSize > 0 {
		policy.SwapSize = uint64(swapSize)
	}
	return provision.Config{
		Device:          device,
		Mode:            encryptionMode,
		Policy:          policy.WithDefaults(),
		MountRoot:       *mountPoint,
		Packages:        layout.Packages,
		VolumeGroupName: layout.VolumeGroupName,
		BootloaderId:    layout.BootloaderId,
		DryRun:          *dryRun,
	}
}
