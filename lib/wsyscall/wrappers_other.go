//go:build !linux

package wsyscall

import (
	"os"
)

func getDeviceSize(pathname string) (uint64, error) {
	if fi, err := os.Stat(pathname); err != nil {
		return 0, err
	} else if fi.Mode().IsRegular() {
		return uint64(fi.Size()), nil
	}
	return 0, ErrUnsupported
}

func isBlockDevice(pathname string) (bool, error) {
	return false, ErrUnsupported
}

func isPrivileged() bool {
	return os.Geteuid() == 0
}

func kernelRelease() (string, error) {
	return "", ErrUnsupported
}

func mount(source string, target string, fstype string, flags uintptr,
	data string) error {
	return ErrUnsupported
}

func sync() error {
	return ErrUnsupported
}

func unmount(target string, detach bool) error {
	return ErrUnsupported
}
