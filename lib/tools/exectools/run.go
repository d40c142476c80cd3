package exectools

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

func findExecutable(rootDir, file string) error {
	if d, err := os.Stat(filepath.Join(rootDir, file)); err != nil {
		return err
	} else {
		if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
			return nil
		}
		return os.ErrPermission
	}
}

func lookPath(rootDir, file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(rootDir, file); err != nil {
			return "", err
		}
		return file, nil
	}
	path := os.Getenv("PATH")
	if rootDir != "" {
		path = "/usr/local/sbin:/usr/local/bin:/usr/bin:/usr/sbin:/bin:/sbin"
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "." // Unix shell semantics: path element "" means "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(rootDir, path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("(chroot=%s) %s not found in PATH", rootDir, file)
}

// run runs a programme which modifies the system. For dry runs the command is
// logged and skipped.
func (t *Tools) run(name, chroot string, stdin []byte,
	args ...string) ([]byte, error) {
	if t.simulator != nil {
		t.logger.Debugf(0, "dry run: skipping: %s %s\n",
			name, strings.Join(args, " "))
		return nil, nil
	}
	return t.runAlways(name, chroot, stdin, args...)
}

// runAlways runs a programme even for dry runs. It must only be used for
// queries.
func (t *Tools) runAlways(name, chroot string, stdin []byte,
	args ...string) ([]byte, error) {
	path, err := lookPath(chroot, name)
	if err != nil {
		return nil, &tools.ToolError{
			Tool:       name,
			Args:       args,
			ExitStatus: -1,
			Err:        err,
		}
	}
	cmd := exec.Command(path, args...)
	cmd.WaitDelay = time.Second
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	if chroot != "" {
		if err := setChroot(cmd, chroot); err != nil {
			return nil, err
		}
		t.logger.Debugf(0, "running(chroot=%s): %s %s\n",
			chroot, name, strings.Join(args, " "))
	} else {
		t.logger.Debugf(0, "running: %s %s\n", name, strings.Join(args, " "))
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		if err == exec.ErrWaitDelay {
			return output, nil
		}
		toolError := &tools.ToolError{
			Tool:       name,
			Args:       args,
			ExitStatus: -1,
			Output:     output,
			Err:        err,
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			toolError.ExitStatus = exitError.ExitCode()
		}
		return output, toolError
	}
	return output, nil
}
