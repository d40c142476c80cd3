package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type CommandFunc func([]string, log.DebugLogger) error

type Command struct {
	Command string
	Args    string
	MinArgs int
	MaxArgs int // Negative means unlimited.
	CmdFunc CommandFunc
}

// ExitCoder may be implemented by errors returned from a CommandFunc which
// need a specific exit code rather than ExitFailure.
type ExitCoder interface {
	ExitCode() int
}

// NewUsageError returns an error for a malformed command line, which exits
// with ExitUsage.
func NewUsageError(format string, v ...interface{}) error {
	return usageError(fmt.Sprintf(format, v...))
}

var (
	cpuProfileFilename = flag.String("cpuProfileFilename", "",
		"Save a CPU profile of the subcommand to the specified file")
)

func PrintCommands(writer io.Writer, commands []Command) {
	printCommands(writer, commands)
}

// RunCommands will run the command named by the first non-flag argument and
// returns the exit code for the process.
func RunCommands(commands []Command, printUsage func(),
	logger log.DebugLogger) int {
	return runCommands(commands, flag.Args(), flag.CommandLine.Output(),
		printUsage, logger)
}

// RunArgs is similar to RunCommands, except that the command line is given
// in args and errors are written to output.
func RunArgs(commands []Command, args []string, output io.Writer,
	printUsage func(), logger log.DebugLogger) int {
	return runCommands(commands, args, output, printUsage, logger)
}
