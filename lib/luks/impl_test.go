package luks

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Cloud-Foundations/Provisioner/lib/log/testlogger"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/tools/faketools"
)

func newTestStager(t *testing.T) (*Stager, *faketools.Tools,
	*testlogger.Logger) {
	fake := faketools.New()
	fake.SetCapacity("/dev/sda2", 1<<30)
	fake.SetCapacity("/dev/sda3", 16<<30)
	logger := testlogger.New(t)
	return NewStager(fake, logger), fake, logger
}

func TestConfirmPassphrase(t *testing.T) {
	first := []byte("hunter2")
	second := []byte("hunter2")
	passphrase, err := ConfirmPassphrase(first, second)
	if err != nil {
		t.Fatal(err)
	}
	if string(passphrase) != "hunter2" {
		t.Errorf("unexpected passphrase: %q", passphrase)
	}
	for _, ch := range second {
		if ch != 0 {
			t.Fatal("confirmation entry not wiped")
		}
	}
	passphrase.Wipe()
	for _, ch := range first {
		if ch != 0 {
			t.Fatal("passphrase not wiped")
		}
	}
	mismatched := []byte("hunter3")
	_, err = ConfirmPassphrase(mismatched, []byte("hunter2"))
	if !errors.Is(err, ErrPassphraseMismatch) {
		t.Errorf("expected mismatch, got: %v", err)
	}
	if string(mismatched) == "hunter3" {
		t.Error("rejected passphrase not wiped")
	}
	if _, err := ConfirmPassphrase(nil, nil); !errors.Is(err,
		ErrEmptyPassphrase) {
		t.Errorf("expected empty passphrase error, got: %v", err)
	}
	if _, err := ConfirmPassphrase([]byte("a"), nil); !errors.Is(err,
		ErrPassphraseMismatch) {
		t.Errorf("expected mismatch, got: %v", err)
	}
}

func TestPassphraseNotFormatted(t *testing.T) {
	passphrase := Passphrase("s3cret")
	for _, text := range []string{
		fmt.Sprintf("%s", passphrase),
		fmt.Sprintf("%v", passphrase),
		fmt.Sprintf("%#v", passphrase),
	} {
		if strings.Contains(text, "s3cret") {
			t.Errorf("passphrase exposed: %s", text)
		}
	}
}

func TestFormatAndOpen(t *testing.T) {
	stager, fake, logger := newTestStager(t)
	passphrase := Passphrase("correct horse")
	container, err := stager.Format("/dev/sda3", 2, passphrase)
	if err != nil {
		t.Fatal(err)
	}
	if container.Version != 2 || container.IsOpen() {
		t.Errorf("unexpected container: %+v", container)
	}
	container.MappedName = "cryptroot"
	path, err := stager.Open(container, passphrase)
	if err != nil {
		t.Fatal(err)
	}
	if path != "/dev/mapper/cryptroot" {
		t.Errorf("unexpected mapped path: %s", path)
	}
	if !container.IsOpen() || !fake.IsOpen("cryptroot") {
		t.Error("container not open")
	}
	if _, err := stager.Open(container, passphrase); !errors.Is(err,
		ErrDeviceBusy) {
		t.Errorf("expected busy, got: %v", err)
	}
	if err := stager.Close(container); err != nil {
		t.Fatal(err)
	}
	if err := stager.Close(container); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected not open, got: %v", err)
	}
	for _, message := range logger.Messages() {
		if strings.Contains(message, "horse") {
			t.Errorf("passphrase logged: %s", message)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	stager, fake, _ := newTestStager(t)
	container, err := stager.Format("/dev/sda3", 2, Passphrase("right"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stager.Open(container, Passphrase("wrong")); !errors.Is(err,
		ErrWrongPassphrase) {
		t.Errorf("expected wrong passphrase, got: %v", err)
	}
	if container.IsOpen() {
		t.Error("container open after failure")
	}
	// Occupy the mapping name behind the stager's back.
	other, err := stager.Format("/dev/sda2", 1, Passphrase("right"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fake.Open(other.Device, container.MappedName,
		[]byte("right")); err != nil {
		t.Fatal(err)
	}
	if _, err := stager.Open(container, Passphrase("right")); !errors.Is(err,
		ErrDeviceBusy) {
		t.Errorf("expected busy, got: %v", err)
	}
	injected := &tools.ToolError{Tool: "cryptsetup", ExitStatus: 1}
	fake.FailOn("Open", injected)
	if _, err := stager.Open(container, Passphrase("right")); err != injected {
		t.Errorf("expected tool error verbatim, got: %v", err)
	}
}

func TestFormatErrors(t *testing.T) {
	stager, fake, _ := newTestStager(t)
	for _, version := range []uint{0, 3} {
		_, err := stager.Format("/dev/sda3", version, Passphrase("x"))
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("version %d: expected unsupported, got: %v", version, err)
		}
	}
	if _, err := stager.Format("/dev/sda3", 2, nil); !errors.Is(err,
		ErrEmptyPassphrase) {
		t.Errorf("expected empty passphrase, got: %v", err)
	}
	_, err := stager.Format("/dev/sdz1", 2, Passphrase("x"))
	if !errors.Is(err, ErrFormatFailed) {
		t.Fatalf("expected format failure, got: %v", err)
	}
	var toolError *tools.ToolError
	if !errors.As(err, &toolError) {
		t.Error("tool error not preserved")
	}
	var calls int
	for _, call := range fake.Calls() {
		if strings.HasPrefix(call, "Format /dev/sdz1") {
			calls++
		}
	}
	if calls != 1 {
		t.Errorf("expected exactly one format attempt, got: %d", calls)
	}
}
