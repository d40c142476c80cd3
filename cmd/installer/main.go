//go:build linux
// +build linux

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/flags/commands"
	"github.com/Cloud-Foundations/Provisioner/lib/flags/loadflags"
	"github.com/Cloud-Foundations/Provisioner/lib/format"
	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/log/debuglogger"
	"github.com/Cloud-Foundations/Provisioner/lib/logbuf"
	"github.com/Cloud-Foundations/Provisioner/lib/wsyscall"
	"github.com/Cloud-Foundations/tricorder/go/tricorder"
)

const logDirectory = "/var/log/installer"

type logWriter struct {
	writer io.Writer
}

var (
	confirm = flag.Bool("confirm", false,
		"If true, do not ask before destroying data on the device")
	dryRun = flag.Bool("dryRun", !wsyscall.IsPrivileged(),
		"If true, do not make changes")
	encryptionMode = disklayout.ModeStandard
	layoutFile     = flag.String("layoutFile", "",
		"Optional JSON file with partition sizes and packages")
	logDebugLevel = flag.Int("logDebugLevel", -1, "Debug log level")
	mountPoint    = flag.String("mountPoint", "/mnt",
		"Mount point for new root file-system")
	portNum = flag.Uint("portNum", 6969,
		"Port number to serve metrics and logs on while provisioning (0 disables)")
	minimumRootSize format.Bytes
	swapSize        format.Bytes

	processStartTime = time.Now()
)

func init() {
	flag.Var(&encryptionMode, "encryptionMode",
		"Encryption mode: none, standard or fde")
	flag.Var(&minimumRootSize, "minimumRootSize",
		"Minimum size of the root file-system (default 10 GiB)")
	flag.Var(&swapSize, "swapSize", "Size of swap (default 4 GiB)")
}

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w,
		"Usage: installer [flags...] command [args...]")
	fmt.Fprintln(w, "Common flags:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "Commands:")
	commands.PrintCommands(w, subcommands)
}

var subcommands = []commands.Command{
	{Command: "plan", Args: "device", MinArgs: 1, MaxArgs: 1, CmdFunc: planSubcommand},
	{Command: "provision", Args: "device", MinArgs: 1, MaxArgs: 1, CmdFunc: provisionSubcommand},
	{Command: "unmount", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: unmountSubcommand},
}

func main() {
	if err := loadflags.LoadForSystemTool("installer"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.Usage = printUsage
	flag.Parse()
	tricorder.RegisterFlags()
	logBuffer, logger := createLogger()
	code := commands.RunCommands(subcommands, printUsage, logger)
	logBuffer.Flush()
	os.Exit(code)
}

// createLogger logs to stderr and, unless this is a dry run, to a new file
// in /var/log/installer. Recent lines are also served at /logs.
func createLogger() (*logbuf.LogBuffer, log.DebugLogger) {
	options := logbuf.GetStandardOptions()
	options.AlsoLogToStderr = true
	options.HttpServeMux = http.DefaultServeMux
	if options.Directory == "" && !*dryRun {
		options.Directory = logDirectory
	}
	if options.Directory != "" {
		err := os.MkdirAll(options.Directory, fsutil.DirPerms)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			options.Directory = ""
		}
	}
	logBuffer := logbuf.NewWithOptions(options)
	logger := debuglogger.New(stdlog.New(&logWriter{logBuffer}, "", 0))
	logger.SetLevel(int16(*logDebugLevel))
	if err := logBuffer.OpenError(); err != nil {
		logger.Printf("not writing log file: %s\n", err)
	}
	return logBuffer, logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	buffer := &bytes.Buffer{}
	fmt.Fprintf(buffer, "[%7.3f] ", time.Since(processStartTime).Seconds())
	buffer.Write(p)
	return w.writer.Write(buffer.Bytes())
}
