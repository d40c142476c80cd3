package checksums

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/hash"
)

func scan(root, pathPrefix string) (*Manifest, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if pathPrefix == "" {
		pathPrefix = root
	}
	manifest := &Manifest{}
	err = filepath.WalkDir(root,
		func(pathname string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			digest, err := hash.ComputeFile(pathname)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, pathname)
			if err != nil {
				return err
			}
			manifest.Entries = append(manifest.Entries, Entry{
				Path: path.Join(pathPrefix, filepath.ToSlash(rel)),
				Hash: digest,
			})
			return nil
		})
	if err != nil {
		return nil, err
	}
	manifest.sort()
	return manifest, nil
}

func decode(reader io.Reader) (*Manifest, error) {
	manifest := &Manifest{}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(nil, 1<<20)
	var lineNumber uint
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}
		hexDigest, pathname, found := strings.Cut(line, " ")
		if !found || pathname == "" {
			return nil, fmt.Errorf("line %d: missing path", lineNumber)
		}
		digest, err := hash.Parse(hexDigest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s", lineNumber, err)
		}
		if !strings.HasPrefix(pathname, "/") {
			return nil, fmt.Errorf("line %d: path is not absolute: %s",
				lineNumber, pathname)
		}
		manifest.Entries = append(manifest.Entries,
			Entry{Path: pathname, Hash: digest})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	manifest.sort()
	return manifest, nil
}

func (m *Manifest) encode(writer io.Writer) error {
	w := bufio.NewWriter(writer)
	for _, entry := range m.Entries {
		if strings.ContainsRune(entry.Path, '\n') {
			return fmt.Errorf("cannot encode path with newline: %q",
				entry.Path)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", entry.Hash,
			entry.Path); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (m *Manifest) equal(other *Manifest) bool {
	if len(m.Entries) != len(other.Entries) {
		return false
	}
	for index, entry := range m.Entries {
		if entry != other.Entries[index] {
			return false
		}
	}
	return true
}

func (m *Manifest) sort() {
	sort.Slice(m.Entries, func(left, right int) bool {
		return m.Entries[left].Path < m.Entries[right].Path
	})
}
