// Package wsyscall wraps the system calls used for provisioning storage and
// inspecting the running system. On platforms other than Linux the wrappers
// return ErrUnsupported.
package wsyscall

import (
	"errors"
)

const (
	MS_BIND = 1 << iota
	MS_RDONLY
	MS_REC
)

var ErrUnsupported = errors.New("unsupported on this platform")

// GetDeviceSize returns the capacity in bytes of the block device (or
// regular image file) named pathname.
func GetDeviceSize(pathname string) (uint64, error) {
	return getDeviceSize(pathname)
}

// IsBlockDevice returns true if pathname is a block device node.
func IsBlockDevice(pathname string) (bool, error) {
	return isBlockDevice(pathname)
}

// IsPrivileged returns true if the effective user is root.
func IsPrivileged() bool {
	return isPrivileged()
}

// KernelRelease returns the release string of the running kernel, as printed
// by "uname -r".
func KernelRelease() (string, error) {
	return kernelRelease()
}

func Mount(source string, target string, fstype string, flags uintptr,
	data string) error {
	return mount(source, target, fstype, flags, data)
}

func Sync() error {
	return sync()
}

func Unmount(target string) error {
	return unmount(target, false)
}

// UnmountDetach performs a lazy unmount, which is required to tear down
// recursive bind mounts.
func UnmountDetach(target string) error {
	return unmount(target, true)
}
