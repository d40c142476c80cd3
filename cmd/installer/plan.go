//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/exectools"
)

func planSubcommand(args []string, logger log.DebugLogger) error {
	if err := printPlan(args[0], logger); err != nil {
		return fmt.Errorf("error planning layout: %s", err)
	}
	return nil
}

func makePlan(device string, logger log.DebugLogger) (*disklayout.Plan,
	error) {
	config, err := loadConfig(device)
	if err != nil {
		return nil, err
	}
	capacity, err := exectools.New(true, logger).Capacity(config.Device)
	if err != nil {
		return nil, err
	}
	return disklayout.PlanLayout(config.Device, capacity, config.Mode,
		config.Policy)
}

func printPlan(device string, logger log.DebugLogger) error {
	plan, err := makePlan(device, logger)
	if err != nil {
		return err
	}
	return plan.Write(os.Stdout)
}
