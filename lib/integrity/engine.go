package integrity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/checksums"
	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/verstr"
	"github.com/Cloud-Foundations/Provisioner/lib/wsyscall"
	"github.com/google/uuid"
)

func newEngine(config Config, logger log.DebugLogger) *Engine {
	if config.Root == "" {
		config.Root = DefaultRoot
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}
	if config.KernelRelease == nil {
		config.KernelRelease = wsyscall.KernelRelease
	}
	setupMetrics()
	return &Engine{
		config: config,
		logger: logger,
		store:  checksums.NewStore(config.StateDir),
	}
}

func modulesKernelRelease(systemRoot string) (string, error) {
	dirname := filepath.Join(systemRoot, "usr", "lib", "modules")
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return "", err
	}
	var releases []string
	for _, entry := range entries {
		if entry.IsDir() {
			releases = append(releases, entry.Name())
		}
	}
	if len(releases) < 1 {
		return "", fmt.Errorf("no kernel modules in: %s", dirname)
	}
	verstr.Sort(releases)
	return releases[len(releases)-1], nil
}

func (e *Engine) loadBaseline() (*checksums.Manifest, error) {
	manifest, err := e.store.Load()
	if err != nil {
		if errors.Is(err, checksums.ErrNotFound) {
			return nil, ErrNoBaseline
		}
		return nil, err
	}
	return manifest, nil
}

func (e *Engine) scan() (*checksums.Manifest, error) {
	if e.config.PathPrefix == "" {
		return checksums.Scan(e.config.Root)
	}
	return checksums.ScanAs(e.config.Root, e.config.PathPrefix)
}

func (e *Engine) recordedRoot() string {
	if e.config.PathPrefix != "" {
		return e.config.PathPrefix
	}
	return e.config.Root
}

func (e *Engine) update() (*checksums.Manifest, error) {
	startTime := time.Now()
	manifest, err := e.scan()
	if err != nil {
		return nil, err
	}
	metadata := &manifest.Metadata
	metadata.Set("generated", startTime.UTC().Format(time.RFC3339))
	metadata.Set("generation-id", uuid.New().String())
	if kernel, err := e.config.KernelRelease(); err != nil {
		e.logger.Printf("unable to determine kernel release: %s\n", err)
	} else {
		metadata.Set("kernel", kernel)
	}
	metadata.Set("root", e.recordedRoot())
	metadata.Set("files", strconv.Itoa(len(manifest.Entries)))
	if e.config.VersionProber != nil {
		for _, name := range e.config.Packages {
			version, err := e.config.VersionProber.PackageVersion(name)
			if err != nil {
				e.logger.Debugf(0, "no version for package: %s: %s\n",
					name, err)
				continue
			}
			metadata.Set("package."+name, version)
		}
	}
	if err := e.store.Save(manifest); err != nil {
		return nil, err
	}
	e.logger.Printf("recorded %d files from %s in %s\n",
		len(manifest.Entries), e.config.Root,
		time.Since(startTime).Round(time.Millisecond))
	return manifest, nil
}

func (e *Engine) verify(verbose bool) (*Report, error) {
	startTime := time.Now()
	stored, err := e.loadBaseline()
	if err != nil {
		return nil, err
	}
	current, err := e.scan()
	if err != nil {
		return nil, err
	}
	report := diff(stored, current, verbose)
	report.Root = e.recordedRoot()
	verifyDistribution.Add(time.Since(startTime))
	e.logger.Debugf(0, "verified %d files in %s\n", report.Checked,
		time.Since(startTime).Round(time.Millisecond))
	return report, nil
}

func (e *Engine) info() (*Info, error) {
	manifest, err := e.loadBaseline()
	if err != nil {
		return nil, err
	}
	info := &Info{
		Root:         e.recordedRoot(),
		ManifestPath: e.store.ManifestPath(),
		Entries:      uint(len(manifest.Entries)),
		Metadata:     manifest.Metadata,
		BackupPath:   e.store.BackupPath(),
	}
	fi, err := os.Stat(info.ManifestPath)
	if err != nil {
		return nil, err
	}
	info.ManifestBytes = uint64(fi.Size())
	info.LastUpdated = fi.ModTime()
	if generated, ok := manifest.Metadata.Get("generated"); ok {
		if t, err := time.Parse(time.RFC3339, generated); err == nil {
			info.LastUpdated = t
		}
	}
	if fi, err := os.Stat(info.BackupPath); err == nil {
		info.HasBackup = true
		info.BackupBytes = uint64(fi.Size())
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	info.TreeSize, err = fsutil.GetTreeSize(e.config.Root)
	if err != nil {
		return nil, err
	}
	return info, nil
}
