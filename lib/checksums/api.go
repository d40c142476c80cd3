// Package checksums maintains a SHA-256 manifest of the files below a
// directory, with a one generation backup.
package checksums

import (
	"errors"
	"io"

	"github.com/Cloud-Foundations/Provisioner/lib/hash"
)

const (
	BackupFile   = "checksums.sha256.bak"
	ManifestFile = "checksums.sha256"
	MetadataFile = "metadata"
)

var ErrNotFound = errors.New("manifest not found")

type Entry struct {
	Path string // Absolute.
	Hash hash.Hash
}

type Manifest struct {
	Entries  []Entry // Sorted by path.
	Metadata Metadata
}

// Metadata is an ordered list of key/value pairs. It is stored as
// "key: value" lines.
type Metadata []MetadataEntry

type MetadataEntry struct {
	Key   string
	Value string
}

type Store struct {
	directory string
}

// Decode reads a manifest in the format written by Encode. Metadata is not
// included.
func Decode(reader io.Reader) (*Manifest, error) {
	return decode(reader)
}

func DecodeMetadata(reader io.Reader) (Metadata, error) {
	return decodeMetadata(reader)
}

func NewStore(directory string) *Store {
	return &Store{directory: directory}
}

// Scan computes the manifest of the regular files below root. Other types of
// files are skipped. Paths are absolute.
func Scan(root string) (*Manifest, error) {
	return scan(root, "")
}

// ScanAs is similar to Scan, except that root is recorded as pathPrefix. It
// is used for trees mounted somewhere other than where they will be checked.
func ScanAs(root, pathPrefix string) (*Manifest, error) {
	return scan(root, pathPrefix)
}

// Encode writes one "<hex digest> <path>" line per entry.
func (m *Manifest) Encode(writer io.Writer) error {
	return m.encode(writer)
}

// Equal returns true if both manifests have the same entries in the same
// order. Metadata are ignored.
func (m *Manifest) Equal(other *Manifest) bool {
	return m.equal(other)
}

func (md Metadata) Encode(writer io.Writer) error {
	return md.encode(writer)
}

// Get returns the value for key.
func (md Metadata) Get(key string) (string, bool) {
	return md.get(key)
}

// Set replaces the value for key, or appends it.
func (md *Metadata) Set(key, value string) {
	md.set(key, value)
}

func (s *Store) BackupPath() string {
	return s.path(BackupFile)
}

// Load reads the current manifest and its metadata. If there is no manifest
// ErrNotFound is returned.
func (s *Store) Load() (*Manifest, error) {
	return s.load()
}

func (s *Store) ManifestPath() string {
	return s.path(ManifestFile)
}

func (s *Store) MetadataPath() string {
	return s.path(MetadataFile)
}

// Save copies the current manifest (if any) to the backup path and then
// atomically replaces the manifest and metadata.
func (s *Store) Save(manifest *Manifest) error {
	return s.save(manifest)
}
