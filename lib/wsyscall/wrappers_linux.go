package wsyscall

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func getDeviceSize(pathname string) (uint64, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	fi, err := file.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Mode().IsRegular() {
		return uint64(fi.Size()), nil
	}
	if fi.Mode()&os.ModeDevice == 0 || fi.Mode()&os.ModeCharDevice != 0 {
		return 0, fmt.Errorf("%s is not a block device", pathname)
	}
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, file.Fd(),
		unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, fmt.Errorf("BLKGETSIZE64: %s: %w", pathname, errno)
	}
	return size, nil
}

func isBlockDevice(pathname string) (bool, error) {
	var stat unix.Stat_t
	if err := unix.Stat(pathname, &stat); err != nil {
		return false, err
	}
	return stat.Mode&unix.S_IFMT == unix.S_IFBLK, nil
}

func isPrivileged() bool {
	return unix.Geteuid() == 0
}

func kernelRelease() (string, error) {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(utsname.Release[:]), nil
}

func mount(source string, target string, fstype string, flags uintptr,
	data string) error {
	var linuxFlags uintptr
	if flags&MS_BIND != 0 {
		linuxFlags |= unix.MS_BIND
	}
	if flags&MS_RDONLY != 0 {
		linuxFlags |= unix.MS_RDONLY
	}
	if flags&MS_REC != 0 {
		linuxFlags |= unix.MS_REC
	}
	return unix.Mount(source, target, fstype, linuxFlags, data)
}

func sync() error {
	unix.Sync()
	return nil
}

func unmount(target string, detach bool) error {
	if detach {
		return unix.Unmount(target, unix.MNT_DETACH)
	}
	return unix.Unmount(target, 0)
}
