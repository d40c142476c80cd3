// Package integrity detects changes to a tree (normally /boot) by comparing
// it against a stored SHA-256 manifest.
package integrity

import (
	"errors"
	"io"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/checksums"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

const (
	ExitMismatch = 3

	DefaultRoot     = "/boot"
	DefaultStateDir = "/var/lib/bootcheck"
)

var (
	DefaultPackages = []string{"linux", "linux-firmware", "grub", "mkinitcpio"}

	ErrNoBaseline = errors.New(
		"no baseline manifest: run \"bootcheck update\" first")
)

type Config struct {
	Root          string
	PathPrefix    string // If set, paths under Root are recorded below this.
	StateDir      string
	Packages      []string // Versions recorded in the metadata.
	KernelRelease func() (string, error)
	VersionProber VersionProber // Optional.
}

type Engine struct {
	config Config
	logger log.DebugLogger
	store  *checksums.Store
}

type Info struct {
	Root          string
	ManifestPath  string
	ManifestBytes uint64
	Entries       uint
	LastUpdated   time.Time
	Metadata      checksums.Metadata
	BackupPath    string
	HasBackup     bool
	BackupBytes   uint64
	TreeSize      uint64
}

// MismatchError is returned for a failed verification.
type MismatchError struct {
	Report *Report
}

type Report struct {
	Root      string
	Checked   uint
	Added     []string
	Removed   []string
	Modified  []string
	Unchanged []string // Only filled in for verbose reports.
}

type VersionProber interface {
	PackageVersion(name string) (string, error)
}

// Diff compares the stored and current manifests. A renamed file is reported
// as removed and added.
func Diff(stored, current *checksums.Manifest) *Report {
	return diff(stored, current, true)
}

// ModulesKernelRelease returns a function which reports the newest kernel
// release with modules installed below systemRoot.
func ModulesKernelRelease(systemRoot string) func() (string, error) {
	return func() (string, error) {
		return modulesKernelRelease(systemRoot)
	}
}

func New(config Config, logger log.DebugLogger) *Engine {
	return newEngine(config, logger)
}

// WriteHook writes a pacman hook which runs "binary verify" after
// transactions affecting any of targets.
func WriteHook(pathname, binary string, targets []string) error {
	return writeHook(pathname, binary, targets)
}

func (e *Engine) Info() (*Info, error) {
	return e.info()
}

// Update scans the tree, replaces the stored manifest (keeping a backup of
// the previous one) and returns the new manifest.
func (e *Engine) Update() (*checksums.Manifest, error) {
	return e.update()
}

// Verify compares the tree with the stored manifest. A mismatch is not an
// error: use Report.Err to convert it into one.
func (e *Engine) Verify(verbose bool) (*Report, error) {
	return e.verify(verbose)
}

// Watch verifies the tree after each burst of changes, once quiet has
// elapsed with no further changes. Outcomes are logged. It returns when stop
// is closed.
func (e *Engine) Watch(stop <-chan struct{}, quiet time.Duration) error {
	return e.watch(stop, quiet)
}

func (i *Info) Write(writer io.Writer, useColor bool) error {
	return i.write(writer, useColor)
}

func (e *MismatchError) Error() string {
	return e.error()
}

func (e *MismatchError) ExitCode() int {
	return ExitMismatch
}

// Err returns a *MismatchError if the report has any differences.
func (r *Report) Err() error {
	if r.Pass() {
		return nil
	}
	return &MismatchError{Report: r}
}

func (r *Report) Pass() bool {
	return len(r.Added) < 1 && len(r.Removed) < 1 && len(r.Modified) < 1
}

func (r *Report) Write(writer io.Writer, useColor bool) error {
	return r.write(writer, useColor)
}
