package loadflags

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const systemDir = "/etc/config"

func loadFlags(flagSet *flag.FlagSet, dirname string) error {
	err := loadFlagsFromFile(flagSet, filepath.Join(dirname, "flags.default"))
	if err != nil {
		return err
	}
	return loadFlagsFromFile(flagSet, filepath.Join(dirname, "flags.extra"))
}

func loadFlagsFromFile(flagSet *flag.FlagSet, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 {
			continue
		}
		if line[0] == '#' || line[0] == ';' {
			continue
		}
		splitLine := strings.SplitN(line, "=", 2)
		if len(splitLine) < 2 {
			return fmt.Errorf("%s:%d: cannot split name from value: %s",
				filename, lineNumber, line)
		}
		name := strings.TrimSpace(splitLine[0])
		if strings.ContainsAny(name, " \t") {
			return fmt.Errorf("%s:%d: name has whitespace: %s",
				filename, lineNumber, line)
		}
		value := strings.TrimSpace(splitLine[1])
		if err := flagSet.Set(name, value); err != nil {
			return fmt.Errorf("%s:%d: %s", filename, lineNumber, err)
		}
	}
	return scanner.Err()
}

func loadForCli(progName string) error {
	err := loadFlags(flag.CommandLine, filepath.Join(systemDir, progName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	}
	return loadFlags(flag.CommandLine,
		filepath.Join(os.Getenv("HOME"), ".config", progName))
}
