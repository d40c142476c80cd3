package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func copyToFile(destFilename string, perm os.FileMode, reader io.Reader,
	length uint64) error {
	tmpFilename := destFilename + "~"
	destFile, err := os.OpenFile(tmpFilename,
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFilename)
	defer destFile.Close()
	if err := copyToWriter(destFile, tmpFilename, reader, length); err != nil {
		return err
	}
	if err := destFile.Sync(); err != nil {
		return err
	}
	if err := destFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpFilename, destFilename)
}

func copyToWriter(writer io.Writer, filename string, reader io.Reader,
	length uint64) error {
	if length < 1 {
		if _, err := io.Copy(writer, reader); err != nil {
			return fmt.Errorf("error copying: %s", err)
		}
	} else {
		length := int64(length)
		if nCopied, err := io.CopyN(writer, reader, length); err != nil {
			return fmt.Errorf("error copying: %s", err)
		} else if nCopied != length {
			return fmt.Errorf("expected length: %d, got: %d for: %s",
				length, nCopied, filename)
		}
	}
	return nil
}

func copyFile(destFilename, sourceFilename string, mode os.FileMode) error {
	sourceFile, err := os.Open(sourceFilename)
	if err != nil {
		return errors.New(sourceFilename + ": " + err.Error())
	}
	defer sourceFile.Close()
	if mode == 0 {
		fi, err := sourceFile.Stat()
		if err != nil {
			return errors.New(sourceFilename + ": " + err.Error())
		}
		mode = fi.Mode().Perm()
	}
	return copyToFile(destFilename, mode, sourceFile, 0)
}
