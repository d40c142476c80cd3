package loadflags

import (
	"flag"
	"path/filepath"
)

// LoadForCli loads flag values for an interactive tool from
// /etc/config/<progName> and then from $HOME/.config/<progName>.
func LoadForCli(progName string) error {
	return loadForCli(progName)
}

// LoadForSystemTool loads flag values from /etc/<progName>/flags.default and
// /etc/<progName>/flags.extra. Missing files are ignored.
func LoadForSystemTool(progName string) error {
	return LoadFromDirectory(flag.CommandLine, filepath.Join("/etc", progName))
}

// LoadFromDirectory loads "name=value" lines from the flags.default and then
// the flags.extra files in dirname into flagSet. Lines beginning with '#' or
// ';' are comments.
func LoadFromDirectory(flagSet *flag.FlagSet, dirname string) error {
	return loadFlags(flagSet, dirname)
}
