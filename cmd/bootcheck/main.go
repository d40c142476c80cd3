package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/flags/commands"
	"github.com/Cloud-Foundations/Provisioner/lib/flags/loadflags"
	"github.com/Cloud-Foundations/Provisioner/lib/flagutil"
	"github.com/Cloud-Foundations/Provisioner/lib/integrity"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/log/debuglogger"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/exectools"
	"github.com/Cloud-Foundations/tricorder/go/tricorder"
	"github.com/fatih/color"
)

var (
	hookFile = flag.String("hookFile",
		"/etc/pacman.d/hooks/95-bootcheck.hook",
		"Pathname of pacman hook written by install-hook")
	logDebugLevel = flag.Int("logDebugLevel", -1, "Debug log level")
	noColor       = flag.Bool("noColor", false,
		"If true, do not colour reports")
	packages = flagutil.StringList(integrity.DefaultPackages)
	portNum  = flag.Uint("portNum", 6982,
		"Port number to serve metrics on while watching (0 disables)")
	root = flag.String("root", integrity.DefaultRoot,
		"Directory tree to check")
	stateDir = flag.String("stateDir", integrity.DefaultStateDir,
		"Directory holding the manifest and its backup")
)

func init() {
	flag.Var(&packages, "packages",
		"Comma separated packages to record versions of and to trigger the hook")
}

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w,
		"Usage: bootcheck [flags...] command [args...]")
	fmt.Fprintln(w, "Common flags:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "Commands:")
	commands.PrintCommands(w, subcommands)
}

var subcommands = []commands.Command{
	{Command: "info", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: infoSubcommand},
	{Command: "install-hook", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: installHookSubcommand},
	{Command: "update", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: updateSubcommand},
	{Command: "verify", Args: "[--verbose]", MinArgs: 0, MaxArgs: 1, CmdFunc: verifySubcommand},
	{Command: "watch", Args: "", MinArgs: 0, MaxArgs: 0, CmdFunc: watchSubcommand},
}

func makeEngine(logger log.DebugLogger) *integrity.Engine {
	return integrity.New(integrity.Config{
		Root:     *root,
		StateDir: *stateDir,
		Packages: packages,
		VersionProber: tools.NewVersionProber(exectools.New(false, logger),
			"/"),
	}, logger)
}

func main() {
	if err := loadflags.LoadForSystemTool("bootcheck"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.Usage = printUsage
	flag.Parse()
	tricorder.RegisterFlags()
	if *noColor {
		color.NoColor = true
	}
	logger := debuglogger.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))
	logger.SetLevel(int16(*logDebugLevel))
	os.Exit(commands.RunCommands(subcommands, printUsage, logger))
}
