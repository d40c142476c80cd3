package exectools

import (
	"os/exec"
	"syscall"
)

func setChroot(cmd *exec.Cmd, root string) error {
	cmd.Dir = "/"
	cmd.SysProcAttr = &syscall.SysProcAttr{Chroot: root}
	return nil
}
