package main

import (
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/flags/commands"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

func verifySubcommand(args []string, logger log.DebugLogger) error {
	var verbose bool
	if len(args) > 0 {
		switch args[0] {
		case "-v", "-verbose", "--verbose":
			verbose = true
		default:
			return commands.NewUsageError("unknown verify option: %s", args[0])
		}
	}
	return verify(verbose, logger)
}

func verify(verbose bool, logger log.DebugLogger) error {
	report, err := makeEngine(logger).Verify(verbose)
	if err != nil {
		return err
	}
	if err := report.Write(os.Stdout, !*noColor); err != nil {
		return err
	}
	return report.Err()
}
