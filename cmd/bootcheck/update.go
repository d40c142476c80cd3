package main

import (
	"errors"
	"fmt"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/wsyscall"
)

func updateSubcommand(args []string, logger log.DebugLogger) error {
	if err := update(logger); err != nil {
		return fmt.Errorf("error updating manifest: %w", err)
	}
	return nil
}

func update(logger log.DebugLogger) error {
	if !wsyscall.IsPrivileged() {
		return errors.New("must be run as root")
	}
	manifest, err := makeEngine(logger).Update()
	if err != nil {
		return err
	}
	if id, ok := manifest.Metadata.Get("generation-id"); ok {
		logger.Debugf(0, "generation: %s\n", id)
	}
	return nil
}
