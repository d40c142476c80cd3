package integrity

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/checksums"
	"github.com/Cloud-Foundations/Provisioner/lib/hash"
	"github.com/Cloud-Foundations/Provisioner/lib/log/testlogger"
	"github.com/google/uuid"
)

type versionMap map[string]string

func (m versionMap) PackageVersion(name string) (string, error) {
	if version, ok := m[name]; ok {
		return version, nil
	}
	return "", errors.New("package not installed")
}

func writeFile(t *testing.T, pathname, content string) {
	if err := os.MkdirAll(filepath.Dir(pathname), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathname, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func makeEngine(t *testing.T) (*Engine, string, *testlogger.Logger) {
	root := filepath.Join(t.TempDir(), "boot")
	writeFile(t, filepath.Join(root, "vmlinuz-linux"), "kernel")
	writeFile(t, filepath.Join(root, "initramfs-linux.img"), "initramfs")
	writeFile(t, filepath.Join(root, "grub", "grub.cfg"), "menuentry")
	logger := testlogger.New(t)
	engine := New(Config{
		Root:     root,
		StateDir: filepath.Join(t.TempDir(), "state"),
		Packages: []string{"linux", "grub", "missing"},
		KernelRelease: func() (string, error) {
			return "6.6.1-arch1-1", nil
		},
		VersionProber: versionMap{"linux": "6.6.1.arch1-1", "grub": "2:2.12-1"},
	}, logger)
	return engine, root, logger
}

func makeManifest(paths ...string) *checksums.Manifest {
	manifest := &checksums.Manifest{}
	for _, pathname := range paths {
		h, _ := hash.Compute(strings.NewReader(pathname))
		manifest.Entries = append(manifest.Entries,
			checksums.Entry{Path: pathname, Hash: h})
	}
	return manifest
}

func TestDiffRenameIsRemoveAndAdd(t *testing.T) {
	report := Diff(makeManifest("/boot/a", "/boot/b"),
		makeManifest("/boot/a", "/boot/c"))
	if report.Pass() {
		t.Fatal("report passed")
	}
	if len(report.Removed) != 1 || report.Removed[0] != "/boot/b" {
		t.Errorf("expected removed: /boot/b, got: %v", report.Removed)
	}
	if len(report.Added) != 1 || report.Added[0] != "/boot/c" {
		t.Errorf("expected added: /boot/c, got: %v", report.Added)
	}
	if len(report.Modified) != 0 {
		t.Errorf("unexpected modified: %v", report.Modified)
	}
}

func TestDiffModified(t *testing.T) {
	stored := makeManifest("/boot/a", "/boot/b")
	current := makeManifest("/boot/a", "/boot/b")
	current.Entries[1].Hash[0] ^= 0xff
	report := Diff(stored, current)
	if len(report.Modified) != 1 || report.Modified[0] != "/boot/b" {
		t.Errorf("expected modified: /boot/b, got: %v", report.Modified)
	}
	if len(report.Unchanged) != 1 || report.Unchanged[0] != "/boot/a" {
		t.Errorf("expected unchanged: /boot/a, got: %v", report.Unchanged)
	}
}

func TestVerifyWithoutBaseline(t *testing.T) {
	engine, _, _ := makeEngine(t)
	if _, err := engine.Verify(false); !errors.Is(err, ErrNoBaseline) {
		t.Errorf("expected ErrNoBaseline, got: %v", err)
	}
	if _, err := engine.Info(); !errors.Is(err, ErrNoBaseline) {
		t.Errorf("expected ErrNoBaseline, got: %v", err)
	}
}

func TestUpdateThenVerifyPasses(t *testing.T) {
	engine, _, _ := makeEngine(t)
	manifest, err := engine.Update()
	if err != nil {
		t.Fatal(err)
	}
	for key, expected := range map[string]string{
		"kernel":        "6.6.1-arch1-1",
		"files":         "3",
		"package.linux": "6.6.1.arch1-1",
		"package.grub":  "2:2.12-1",
	} {
		if value, _ := manifest.Metadata.Get(key); value != expected {
			t.Errorf("metadata %s: expected: %s, got: %s", key, expected,
				value)
		}
	}
	if _, ok := manifest.Metadata.Get("package.missing"); ok {
		t.Error("metadata recorded for missing package")
	}
	generationId, _ := manifest.Metadata.Get("generation-id")
	if _, err := uuid.Parse(generationId); err != nil {
		t.Errorf("bad generation-id: %s: %s", generationId, err)
	}
	for count := 0; count < 2; count++ {
		report, err := engine.Verify(false)
		if err != nil {
			t.Fatal(err)
		}
		if !report.Pass() || report.Err() != nil {
			t.Fatalf("verify %d failed: %+v", count, report)
		}
		if report.Checked != 3 {
			t.Errorf("expected 3 checked, got: %d", report.Checked)
		}
		if len(report.Unchanged) != 0 {
			t.Error("unchanged paths listed in non-verbose report")
		}
	}
	report, err := engine.Verify(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Unchanged) != 3 {
		t.Errorf("expected 3 unchanged, got: %d", len(report.Unchanged))
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	engine, root, _ := makeEngine(t)
	if _, err := engine.Update(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "vmlinuz-linux"), "backdoored kernel")
	if err := os.Remove(filepath.Join(root, "grub", "grub.cfg")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "extra.efi"), "implant")
	report, err := engine.Verify(false)
	if err != nil {
		t.Fatal(err)
	}
	expected := &Report{
		Root:     root,
		Checked:  3,
		Added:    []string{filepath.Join(root, "extra.efi")},
		Removed:  []string{filepath.Join(root, "grub", "grub.cfg")},
		Modified: []string{filepath.Join(root, "vmlinuz-linux")},
	}
	if report.Root != expected.Root || report.Checked != expected.Checked ||
		strings.Join(report.Added, ",") != strings.Join(expected.Added, ",") ||
		strings.Join(report.Removed, ",") !=
			strings.Join(expected.Removed, ",") ||
		strings.Join(report.Modified, ",") !=
			strings.Join(expected.Modified, ",") {
		t.Errorf("expected: %+v, got: %+v", expected, report)
	}
	err = report.Err()
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got: %v", err)
	}
	if mismatch.ExitCode() != ExitMismatch {
		t.Errorf("expected exit code: %d, got: %d", ExitMismatch,
			mismatch.ExitCode())
	}
	if !strings.Contains(err.Error(), "bootcheck update") {
		t.Errorf("remediation missing from: %s", err)
	}
	buffer := &bytes.Buffer{}
	if err := report.Write(buffer, false); err != nil {
		t.Fatal(err)
	}
	output := buffer.String()
	if !strings.HasPrefix(output, "FAIL: ") {
		t.Errorf("expected FAIL line, got: %s", output)
	}
	if !strings.Contains(output, "  modified: "+expected.Modified[0]+"\n") {
		t.Errorf("modified path missing from: %s", output)
	}
	if strings.Contains(output, "\x1b[") {
		t.Error("colour escapes written with colour disabled")
	}
}

func TestUpdateKeepsOneBackup(t *testing.T) {
	engine, root, _ := makeEngine(t)
	if _, err := engine.Update(); err != nil {
		t.Fatal(err)
	}
	prior, err := os.ReadFile(engine.store.ManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "vmlinuz-linux"), "new kernel")
	if _, err := engine.Update(); err != nil {
		t.Fatal(err)
	}
	backup, err := os.ReadFile(engine.store.BackupPath())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(prior, backup) {
		t.Error("backup does not match prior manifest")
	}
	report, err := engine.Verify(false)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Pass() {
		t.Errorf("verify after update failed: %+v", report)
	}
	info, err := engine.Info()
	if err != nil {
		t.Fatal(err)
	}
	if !info.HasBackup || info.BackupBytes != uint64(len(backup)) {
		t.Errorf("backup not reported: %+v", info)
	}
	if info.Entries != 3 {
		t.Errorf("expected 3 entries, got: %d", info.Entries)
	}
	expectedSize := uint64(len("new kernel") + len("initramfs") +
		len("menuentry"))
	if info.TreeSize != expectedSize {
		t.Errorf("expected tree size: %d, got: %d", expectedSize,
			info.TreeSize)
	}
	buffer := &bytes.Buffer{}
	if err := info.Write(buffer, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buffer.String(), "Package linux:") {
		t.Errorf("package version missing from: %s", buffer.String())
	}
}

func TestPathPrefix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vmlinuz-linux"), "kernel")
	engine := New(Config{
		Root:          root,
		PathPrefix:    "/boot",
		StateDir:      t.TempDir(),
		KernelRelease: ModulesKernelRelease(root),
	}, testlogger.New(t))
	manifest, err := engine.Update()
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Entries[0].Path != "/boot/vmlinuz-linux" {
		t.Errorf("expected /boot/vmlinuz-linux, got: %s",
			manifest.Entries[0].Path)
	}
	if _, ok := manifest.Metadata.Get("kernel"); ok {
		t.Error("kernel recorded without modules")
	}
	if value, _ := manifest.Metadata.Get("root"); value != "/boot" {
		t.Errorf("expected root: /boot, got: %s", value)
	}
}

func TestModulesKernelRelease(t *testing.T) {
	root := t.TempDir()
	for _, release := range []string{"6.1.0-lts", "6.10.1-arch1-1",
		"6.9.7-arch1-1"} {
		writeFile(t, filepath.Join(root, "usr", "lib", "modules", release,
			"pkgbase"), "linux")
	}
	release, err := ModulesKernelRelease(root)()
	if err != nil {
		t.Fatal(err)
	}
	if release != "6.10.1-arch1-1" {
		t.Errorf("expected: 6.10.1-arch1-1, got: %s", release)
	}
}

func TestWriteHook(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "hooks", "95-bootcheck.hook")
	err := WriteHook(pathname, "/usr/bin/bootcheck",
		[]string{"linux", "grub"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(pathname)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, line := range []string{
		"[Trigger]\n",
		"Target = linux\n",
		"Target = grub\n",
		"When = PostTransaction\n",
		"Exec = /usr/bin/bootcheck verify\n",
		"bootcheck update",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("missing %q from hook:\n%s", line, text)
		}
	}
	if err := WriteHook(pathname, "/usr/bin/bootcheck", nil); err == nil {
		t.Error("hook without targets accepted")
	}
}

func TestWatchReportsChange(t *testing.T) {
	engine, root, logger := makeEngine(t)
	if _, err := engine.Update(); err != nil {
		t.Fatal(err)
	}
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- engine.Watch(stop, 20*time.Millisecond) }()
	deadline := time.Now().Add(5 * time.Second)
	waitFor := func(substring string) bool {
		for time.Now().Before(deadline) {
			for _, message := range logger.Messages() {
				if strings.Contains(message, substring) {
					return true
				}
			}
			time.Sleep(10 * time.Millisecond)
		}
		return false
	}
	if !waitFor("watching ") {
		t.Error("watch did not start")
	}
	writeFile(t, filepath.Join(root, "grub", "grub.cfg"), "tampered")
	if !waitFor("bootcheck update") {
		t.Error("change not reported")
	}
	close(stop)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}
