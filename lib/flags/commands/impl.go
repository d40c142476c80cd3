package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

func printCommands(writer io.Writer, commands []Command) {
	isSorted := sort.SliceIsSorted(commands, func(i, j int) bool {
		return commands[i].Command < commands[j].Command
	})
	if !isSorted {
		fmt.Fprintln(writer, "NOTE: COMMANDS ARE NOT SORTED!")
	}
	for _, command := range commands {
		if command.CmdFunc == nil {
			continue
		}
		if command.Args == "" {
			fmt.Fprintln(writer, " ", command.Command)
		} else {
			fmt.Fprintln(writer, " ", command.Command, command.Args)
		}
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (usageError) ExitCode() int { return ExitUsage }

func exitCode(err error) int {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitFailure
}

func runCommands(commands []Command, args []string, output io.Writer,
	printUsage func(), logger log.DebugLogger) int {
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}
	numCommandArgs := len(args) - 1
	for _, command := range commands {
		if command.CmdFunc == nil {
			continue
		}
		if args[0] != command.Command {
			continue
		}
		if numCommandArgs < command.MinArgs ||
			(command.MaxArgs >= 0 && numCommandArgs > command.MaxArgs) {
			printUsage()
			return ExitUsage
		}
		if *cpuProfileFilename != "" {
			file, err := os.Create(*cpuProfileFilename)
			if err != nil {
				fmt.Fprintln(output, err)
				return ExitUsage
			}
			defer file.Close()
			if err := pprof.StartCPUProfile(file); err != nil {
				fmt.Fprintf(output, "could not start CPU profile: %s\n", err)
				return ExitUsage
			}
			defer pprof.StopCPUProfile()
		}
		if err := command.CmdFunc(args[1:], logger); err != nil {
			fmt.Fprintln(output, err)
			var usage usageError
			if errors.As(err, &usage) {
				printUsage()
			}
			return exitCode(err)
		}
		return ExitSuccess
	}
	printUsage()
	return ExitUsage
}
