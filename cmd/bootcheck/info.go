package main

import (
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

func infoSubcommand(args []string, logger log.DebugLogger) error {
	info, err := makeEngine(logger).Info()
	if err != nil {
		return err
	}
	return info.Write(os.Stdout, !*noColor)
}
