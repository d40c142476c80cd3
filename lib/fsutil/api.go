package fsutil

import (
	"io"
	"os"
	"time"
)

const (
	DirPerms         os.FileMode = 0755
	PrivateDirPerms  os.FileMode = 0700
	PrivateFilePerms os.FileMode = 0600
	PublicFilePerms  os.FileMode = 0644
)

// CopyFile will create a new file, copy data from the sourceFilename to a
// tmpfile and then atomically rename the tmpfile to destFilename, ensuring
// that the file never has incomplete data.
// If there are any errors, then destFilename is unchanged.
// CopyFile is not safe to call concurrently for the same file.
func CopyFile(destFilename, sourceFilename string, mode os.FileMode) error {
	return copyFile(destFilename, sourceFilename, mode)
}

// CopyToFile will create a new file, write length bytes from reader to a
// tmpfile and then atomically rename the tmpfile to destFilename, ensuring
// that the file never has incomplete data.
// If length is zero all remaining bytes from reader are written. If there are
// any errors, then destFilename is unchanged.
// CopyToFile is not safe to call concurrently for the same file.
func CopyToFile(destFilename string, perm os.FileMode, reader io.Reader,
	length uint64) error {
	return copyToFile(destFilename, perm, reader, length)
}

// GetTreeSize will walk a directory tree and count the size of the regular
// files.
func GetTreeSize(dirname string) (uint64, error) {
	return getTreeSize(dirname)
}

// ReadLines will read lines from a reader. Empty lines and comment lines (i.e.
// lines beginning with '#') are skipped.
func ReadLines(reader io.Reader) ([]string, error) {
	return readLines(reader)
}

// WaitForBlockAvailable will wait for the specified block device node to
// become available, or return an error on timeout. The timeout is limited to
// one hour. The number of iterations and the number of successful Open(2) calls
// is returned.
// This is needed because partition and device-mapper nodes are created
// asynchronously by udev after the table is written.
func WaitForBlockAvailable(pathname string,
	timeout time.Duration) (uint, uint, error) {
	return waitForBlockAvailable(pathname, timeout)
}
