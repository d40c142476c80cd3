package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/integrity"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

func installHookSubcommand(args []string, logger log.DebugLogger) error {
	if err := installHook(logger); err != nil {
		return fmt.Errorf("error installing hook: %s", err)
	}
	return nil
}

func installHook(logger log.DebugLogger) error {
	binary, err := os.Executable()
	if err != nil {
		return err
	}
	if binary, err = filepath.EvalSymlinks(binary); err != nil {
		return err
	}
	if err := integrity.WriteHook(*hookFile, binary, packages); err != nil {
		return err
	}
	logger.Printf("wrote: %s\n", *hookFile)
	return nil
}
