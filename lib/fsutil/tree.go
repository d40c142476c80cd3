package fsutil

import (
	"bufio"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

func getTreeSize(dirname string) (uint64, error) {
	var size uint64
	err := filepath.WalkDir(dirname,
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			fi, err := entry.Info()
			if err != nil {
				return err
			}
			size += uint64(fi.Size())
			return nil
		})
	if err != nil {
		return 0, err
	}
	return size, nil
}

func readLines(reader io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(reader)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 || line[0] == '#' {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
