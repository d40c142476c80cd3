// Package luks formats and opens LUKS containers.
package luks

import (
	"errors"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

const mapperDirectory = "/dev/mapper"

var (
	ErrDeviceBusy         = errors.New("device busy")
	ErrEmptyPassphrase    = errors.New("empty passphrase")
	ErrFormatFailed       = errors.New("format failed")
	ErrNotOpen            = errors.New("container not open")
	ErrPassphraseMismatch = errors.New("passphrases do not match")
	ErrUnsupportedVersion = errors.New("unsupported LUKS version")
	ErrWrongPassphrase    = errors.New("wrong passphrase")
)

// Container is a formatted LUKS container. MappedName may be changed before
// the container is opened.
type Container struct {
	Device     string
	Version    uint
	MappedName string
	opened     bool
}

// FormatError wraps the tool error from a failed format. It matches
// ErrFormatFailed with errors.Is.
type FormatError struct {
	Device  string
	Version uint
	Err     error
}

// Passphrase holds a secret in memory. It formats as asterisks so that it is
// not exposed by accidental logging.
type Passphrase []byte

type Stager struct {
	tool   tools.CryptoTool
	logger log.DebugLogger
}

// ConfirmPassphrase compares the two entries in constant time. The second
// entry is wiped. On success the first entry is returned, otherwise it is
// wiped as well.
func ConfirmPassphrase(first, second []byte) (Passphrase, error) {
	return confirmPassphrase(first, second)
}

func NewStager(tool tools.CryptoTool, logger log.DebugLogger) *Stager {
	return &Stager{tool: tool, logger: logger}
}

func (c *Container) IsOpen() bool {
	return c.opened
}

// MappedPath returns /dev/mapper/<MappedName>.
func (c *Container) MappedPath() string {
	return c.mappedPath()
}

func (e *FormatError) Error() string {
	return e.error()
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormatFailed
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (p Passphrase) GoString() string {
	return p.String()
}

func (p Passphrase) String() string {
	return "********"
}

// Wipe zeroes the passphrase in place.
func (p Passphrase) Wipe() {
	for index := range p {
		p[index] = 0
	}
}

// Close unmaps an open container. It is only used for explicit teardown.
func (s *Stager) Close(container *Container) error {
	return s.close(container)
}

// Format creates a LUKS container on partition. Version must be 1 or 2.
// Failures are returned as a *FormatError and are never retried.
func (s *Stager) Format(partition string, version uint,
	passphrase Passphrase) (*Container, error) {
	return s.format(partition, version, passphrase)
}

// Open maps the container and returns the path of the mapped device. A
// rejected passphrase matches ErrWrongPassphrase and a mapping which is
// already in use matches ErrDeviceBusy.
func (s *Stager) Open(container *Container,
	passphrase Passphrase) (string, error) {
	return s.open(container, passphrase)
}
