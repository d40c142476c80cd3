package provision

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cloud-Foundations/Provisioner/lib/disklayout"
	"github.com/Cloud-Foundations/Provisioner/lib/log/testlogger"
	"github.com/Cloud-Foundations/Provisioner/lib/luks"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/faketools"
)

const testPassphrase = "correct horse battery staple"

type testRun struct {
	ctx        *Context
	fake       *faketools.Tools
	logger     *testlogger.Logger
	passphrase []byte
	pipeline   *Pipeline
}

func newTestRun(t *testing.T, mode disklayout.EncryptionMode,
	capacity uint64) *testRun {
	fake := faketools.New()
	fake.PopulateRoot = true
	fake.SetCapacity("/dev/sda", capacity)
	logger := testlogger.New(t)
	var passphrase []byte
	if mode.Encrypted() {
		passphrase = []byte(testPassphrase)
	}
	ctx := NewContext(Config{
		Device:    "/dev/sda",
		Mode:      mode,
		MountRoot: t.TempDir(),
	}, passphrase)
	return &testRun{
		ctx:        ctx,
		fake:       fake,
		logger:     logger,
		passphrase: passphrase,
		pipeline:   New(fake.Toolset(), logger),
	}
}

func (r *testRun) countCalls(prefix string) int {
	var count int
	for _, call := range r.fake.Calls() {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return count
}

func (r *testRun) checkPassphraseGone(t *testing.T) {
	if r.ctx.Passphrase != nil {
		t.Error("passphrase still in context")
	}
	for _, ch := range r.passphrase {
		if ch != 0 {
			t.Error("passphrase not wiped")
			break
		}
	}
	for _, message := range r.logger.Messages() {
		if strings.Contains(message, "horse") {
			t.Errorf("passphrase logged: %s", message)
		}
	}
}

func (r *testRun) readFile(t *testing.T, filename string) string {
	data, err := os.ReadFile(filepath.Join(r.ctx.MountRoot, filename))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunStandard(t *testing.T) {
	run := newTestRun(t, disklayout.ModeStandard, 20*disklayout.GiB)
	if err := run.pipeline.Run(run.ctx); err != nil {
		t.Fatal(err)
	}
	ctx := run.ctx
	if ctx.State != StateBaseInstalled {
		t.Errorf("unexpected state: %s", ctx.State)
	}
	run.checkPassphraseGone(t)
	expectedDevices := Devices{
		EFI:  "/dev/sda1",
		Boot: "/dev/sda2",
		Swap: "/dev/vg/swap",
		Root: "/dev/vg/root",
	}
	if ctx.Devices != expectedDevices {
		t.Errorf("expected devices: %+v, got: %+v", expectedDevices, ctx.Devices)
	}
	if ctx.RootContainer == nil || ctx.RootContainer.Version != 2 ||
		ctx.RootContainer.Device != "/dev/sda3" {
		t.Errorf("bad root container: %+v", ctx.RootContainer)
	}
	if ctx.BootContainer != nil {
		t.Error("unexpected boot container")
	}
	swap, root := ctx.Group.Volumes[0], ctx.Group.Volumes[1]
	if swap.Size != 4*disklayout.GiB {
		t.Errorf("unexpected swap size: %d", swap.Size)
	}
	if root.Size < 14*disklayout.GiB+400*disklayout.MiB ||
		root.Size > 14*disklayout.GiB+512*disklayout.MiB {
		t.Errorf("root size not about 14.5GiB: %d", root.Size)
	}
	expectedMounts := []string{
		ctx.MountRoot,
		filepath.Join(ctx.MountRoot, "boot"),
		filepath.Join(ctx.MountRoot, "boot/efi"),
	}
	mounted := run.fake.Mounted()
	if len(mounted) != len(expectedMounts) || len(ctx.Mounts) != len(mounted) {
		t.Fatalf("expected mounts: %v, got: %v", expectedMounts, mounted)
	}
	for index, mountPoint := range expectedMounts {
		if mounted[index] != mountPoint ||
			ctx.Mounts[index].MountPoint != mountPoint {
			t.Errorf("mount %d: expected: %s, got: %s",
				index, mountPoint, mounted[index])
		}
	}
	fstab := run.readFile(t, "etc/fstab")
	for _, text := range []string{"LABEL=root", "LABEL=boot", "umask=0077",
		"LABEL=swap"} {
		if !strings.Contains(fstab, text) {
			t.Errorf("fstab missing %q:\n%s", text, fstab)
		}
	}
	grub := run.readFile(t, "etc/default/grub")
	if !strings.Contains(grub,
		`GRUB_CMDLINE_LINUX="cryptdevice=PARTLABEL=cryptroot:cryptroot root=/dev/vg/root"`) {
		t.Errorf("cryptdevice not set:\n%s", grub)
	}
	if strings.Contains(grub, "GRUB_ENABLE_CRYPTODISK") {
		t.Error("cryptodisk enabled for plain boot")
	}
	hooks := run.readFile(t, "etc/mkinitcpio.conf.d/encrypt.conf")
	if !strings.Contains(hooks, "encrypt lvm2") {
		t.Errorf("bad hooks: %s", hooks)
	}
	if _, err := os.Stat(filepath.Join(ctx.MountRoot,
		"etc/crypttab")); !os.IsNotExist(err) {
		t.Error("crypttab written for plain boot")
	}
	calls := run.fake.Calls()
	last := calls[len(calls)-3:]
	for index, prefix := range []string{"RunInRoot " + ctx.MountRoot +
		" mkinitcpio", "RunInRoot " + ctx.MountRoot + " grub-install",
		"RunInRoot " + ctx.MountRoot + " grub-mkconfig"} {
		if !strings.HasPrefix(last[index], prefix) {
			t.Errorf("call %d: expected prefix: %s, got: %s",
				index, prefix, last[index])
		}
	}
}

func TestRunFullDiskEncryption(t *testing.T) {
	run := newTestRun(t, disklayout.ModeFullDiskEncryption, 64*disklayout.GiB)
	if err := run.pipeline.Run(run.ctx); err != nil {
		t.Fatal(err)
	}
	ctx := run.ctx
	run.checkPassphraseGone(t)
	if run.countCalls("Format /dev/sda2 1") != 1 ||
		run.countCalls("Format /dev/sda3 2") != 1 {
		t.Errorf("unexpected formats: %v", run.fake.Calls())
	}
	if ctx.Devices.Boot != "/dev/mapper/cryptboot" {
		t.Errorf("unexpected boot device: %s", ctx.Devices.Boot)
	}
	crypttab := run.readFile(t, "etc/crypttab")
	fields := strings.Fields(crypttab)
	if len(fields) != 4 || fields[0] != "cryptboot" ||
		fields[1] != "PARTLABEL=cryptboot" || fields[2] != "none" {
		t.Errorf("bad crypttab: %q", crypttab)
	}
	grub := run.readFile(t, "etc/default/grub")
	if !strings.Contains(grub, "GRUB_ENABLE_CRYPTODISK=y\n") {
		t.Errorf("cryptodisk not enabled:\n%s", grub)
	}
	if !strings.Contains(grub, "GRUB_TIMEOUT=5\n") {
		t.Errorf("existing settings lost:\n%s", grub)
	}
}

func TestRunNone(t *testing.T) {
	run := newTestRun(t, disklayout.ModeNone, 20*disklayout.GiB)
	if err := run.pipeline.Run(run.ctx); err != nil {
		t.Fatal(err)
	}
	for _, operation := range []string{"Format", "Open", "CreateGroup"} {
		if count := run.countCalls(operation + " "); count != 0 {
			t.Errorf("%s called %d times", operation, count)
		}
	}
	if len(run.ctx.Mounts) != 2 {
		t.Errorf("expected root and EFI mounts, got: %+v", run.ctx.Mounts)
	}
	if run.ctx.Devices.Swap != "/dev/sda2" || run.ctx.Devices.Root != "/dev/sda3" {
		t.Errorf("unexpected devices: %+v", run.ctx.Devices)
	}
	if grub := run.readFile(t, "etc/default/grub"); strings.Contains(grub,
		"cryptdevice") {
		t.Errorf("cryptdevice set without encryption:\n%s", grub)
	}
	if _, err := os.Stat(filepath.Join(run.ctx.MountRoot,
		initramfsHookFile)); !os.IsNotExist(err) {
		t.Error("initramfs hooks overridden without encryption")
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		device     string
		mode       disklayout.EncryptionMode
		passphrase string
		mountRoot  string
		capacity   uint64
	}{
		{"relative device", "sda", disklayout.ModeNone, "", "/mnt", 20},
		{"not under /dev", "/tmp/sda", disklayout.ModeNone, "", "/mnt", 20},
		{"missing passphrase", "/dev/sda", disklayout.ModeStandard, "",
			"/mnt", 20},
		{"unwanted passphrase", "/dev/sda", disklayout.ModeNone, "x",
			"/mnt", 20},
		{"root mount root", "/dev/sda", disklayout.ModeNone, "", "/", 20},
		{"relative mount root", "/dev/sda", disklayout.ModeNone, "", "mnt",
			20},
		{"small device", "/dev/sda", disklayout.ModeStandard, "x", "/mnt", 12},
		{"missing device", "/dev/sdb", disklayout.ModeNone, "", "/mnt", 20},
	}
	for _, test := range tests {
		fake := faketools.New()
		fake.SetCapacity("/dev/sda", test.capacity*disklayout.GiB)
		ctx := NewContext(Config{
			Device:    test.device,
			Mode:      test.mode,
			MountRoot: test.mountRoot,
		}, []byte(test.passphrase))
		err := New(fake.Toolset(), testlogger.New(t)).Run(ctx)
		var configurationError *ConfigurationError
		if !errors.As(err, &configurationError) {
			t.Errorf("%s: expected ConfigurationError, got: %v", test.name, err)
			continue
		}
		for _, call := range fake.Calls() {
			if !strings.HasPrefix(call, "Capacity ") {
				t.Errorf("%s: modifying call before validation: %s",
					test.name, call)
			}
		}
		if ctx.State != StateUnpartitioned {
			t.Errorf("%s: state advanced to %s", test.name, ctx.State)
		}
		if test.name == "small device" &&
			!errors.Is(err, disklayout.ErrInsufficientCapacity) {
			t.Errorf("%s: cause lost: %v", test.name, err)
		}
	}
}

func TestStageFailureLeavesState(t *testing.T) {
	run := newTestRun(t, disklayout.ModeStandard, 20*disklayout.GiB)
	injected := &tools.ToolError{Tool: "mkfs.ext4", ExitStatus: 1,
		Output: []byte("device is busy")}
	run.fake.FailOn("MakeFileSystem", injected)
	err := run.pipeline.Run(run.ctx)
	var stageError *StageError
	if !errors.As(err, &stageError) {
		t.Fatalf("expected StageError, got: %v", err)
	}
	if stageError.State != StateFormatted {
		t.Errorf("expected failure entering Formatted, got: %s",
			stageError.State)
	}
	if stageError.Err != injected || !errors.Is(err, injected) {
		t.Errorf("tool error not preserved: %v", stageError.Err)
	}
	if !strings.Contains(err.Error(), "Formatted") ||
		!strings.Contains(err.Error(), "device is busy") {
		t.Errorf("unhelpful message: %s", err)
	}
	if run.ctx.State != StateVolumesCreated {
		t.Errorf("unexpected state: %s", run.ctx.State)
	}
	if !run.fake.IsOpen("cryptroot") {
		t.Error("container closed after failure")
	}
	if run.countCalls("Close") != 0 || run.countCalls("Unmount") != 0 {
		t.Error("rollback attempted")
	}
	if err := run.pipeline.Run(run.ctx); err == nil {
		t.Error("second run accepted")
	}
	run.checkPassphraseGone(t)
}

func TestWrongPassphraseStage(t *testing.T) {
	run := newTestRun(t, disklayout.ModeStandard, 20*disklayout.GiB)
	run.fake.FailOn("Open", &tools.ToolError{Tool: "cryptsetup",
		ExitStatus: 2})
	err := run.pipeline.Run(run.ctx)
	var stageError *StageError
	if !errors.As(err, &stageError) ||
		stageError.State != StateContainersOpened {
		t.Fatalf("expected failure entering ContainersOpened, got: %v", err)
	}
	if !errors.Is(err, luks.ErrWrongPassphrase) {
		t.Errorf("expected wrong passphrase, got: %v", err)
	}
	if run.countCalls("Open") != 1 {
		t.Error("open retried")
	}
	run.checkPassphraseGone(t)
}

func TestUnmountReverse(t *testing.T) {
	run := newTestRun(t, disklayout.ModeStandard, 20*disklayout.GiB)
	if err := run.pipeline.Run(run.ctx); err != nil {
		t.Fatal(err)
	}
	if err := Unmount(run.fake, run.ctx.Mounts); err != nil {
		t.Fatal(err)
	}
	if mounted := run.fake.Mounted(); len(mounted) != 0 {
		t.Errorf("still mounted: %v", mounted)
	}
	calls := run.fake.Calls()
	unmounts := calls[len(calls)-3:]
	for index, entry := range []string{"boot/efi", "boot", ""} {
		expected := "Unmount " + filepath.Join(run.ctx.MountRoot, entry)
		if unmounts[index] != expected {
			t.Errorf("unmount %d: expected: %s, got: %s",
				index, expected, unmounts[index])
		}
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	run := newTestRun(t, disklayout.ModeFullDiskEncryption, 20*disklayout.GiB)
	run.fake.PopulateRoot = false
	run.ctx.DryRun = true
	run.ctx.MountRoot = filepath.Join(t.TempDir(), "absent")
	if err := run.pipeline.Run(run.ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(run.ctx.MountRoot); !os.IsNotExist(err) {
		t.Errorf("dry run created mount root: %v", err)
	}
	var sawCrypttab bool
	for _, message := range run.logger.Messages() {
		if strings.Contains(message, "PARTLABEL=cryptboot") {
			sawCrypttab = true
		}
	}
	if !sawCrypttab {
		t.Error("crypttab not logged")
	}
}

func TestRunAtMinimumCapacityKeepsMinimumRoot(t *testing.T) {
	for _, mode := range []disklayout.EncryptionMode{disklayout.ModeStandard,
		disklayout.ModeFullDiskEncryption} {
		_, err := disklayout.PlanLayout("/dev/sda", disklayout.GiB, mode,
			disklayout.Policy{})
		var capacityError *disklayout.InsufficientCapacityError
		if !errors.As(err, &capacityError) {
			t.Fatalf("%s: expected insufficient capacity, got: %v", mode, err)
		}
		run := newTestRun(t, mode, capacityError.Required)
		if err := run.pipeline.Run(run.ctx); err != nil {
			t.Fatalf("%s: %s", mode, err)
		}
		root := run.ctx.Group.Volumes[1]
		minimum := disklayout.DefaultPolicy().MinimumRootSize
		if root.Size < minimum {
			t.Errorf("%s: root volume: %d below minimum: %d",
				mode, root.Size, minimum)
		}
	}
}
