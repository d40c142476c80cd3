package checksums

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
)

func (s *Store) path(filename string) string {
	return filepath.Join(s.directory, filename)
}

func (s *Store) load() (*Manifest, error) {
	file, err := os.Open(s.ManifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer file.Close()
	manifest, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding: %s: %w", s.ManifestPath(), err)
	}
	if metadataFile, err := os.Open(s.MetadataPath()); err == nil {
		defer metadataFile.Close()
		manifest.Metadata, err = decodeMetadata(metadataFile)
		if err != nil {
			return nil, fmt.Errorf("error decoding: %s: %w",
				s.MetadataPath(), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return manifest, nil
}

func (s *Store) save(manifest *Manifest) error {
	manifestData := &bytes.Buffer{}
	if err := manifest.encode(manifestData); err != nil {
		return err
	}
	metadataData := &bytes.Buffer{}
	if err := manifest.Metadata.encode(metadataData); err != nil {
		return err
	}
	if err := os.MkdirAll(s.directory, fsutil.DirPerms); err != nil {
		return err
	}
	if _, err := os.Stat(s.ManifestPath()); err == nil {
		err := fsutil.CopyFile(s.BackupPath(), s.ManifestPath(),
			fsutil.PublicFilePerms)
		if err != nil {
			return fmt.Errorf("error backing up manifest: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	err := fsutil.CopyToFile(s.ManifestPath(), fsutil.PublicFilePerms,
		manifestData, 0)
	if err != nil {
		return err
	}
	return fsutil.CopyToFile(s.MetadataPath(), fsutil.PublicFilePerms,
		metadataData, 0)
}
