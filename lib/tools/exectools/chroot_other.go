//go:build !linux

package exectools

import (
	"os/exec"

	"github.com/Cloud-Foundations/Provisioner/lib/wsyscall"
)

func setChroot(cmd *exec.Cmd, root string) error {
	return wsyscall.ErrUnsupported
}
