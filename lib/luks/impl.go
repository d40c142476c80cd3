package luks

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/tools"
)

// Exit statuses documented by cryptsetup(8).
const (
	exitStatusWrongPassphrase = 2
	exitStatusBusy            = 5
)

func confirmPassphrase(first, second []byte) (Passphrase, error) {
	defer Passphrase(second).Wipe()
	if len(first) < 1 && len(second) < 1 {
		return nil, ErrEmptyPassphrase
	}
	if subtle.ConstantTimeCompare(first, second) != 1 {
		Passphrase(first).Wipe()
		return nil, ErrPassphraseMismatch
	}
	return Passphrase(first), nil
}

func defaultMappedName(partition string) string {
	return "luks-" + filepath.Base(partition)
}

func (c *Container) mappedPath() string {
	return filepath.Join(mapperDirectory, c.MappedName)
}

func (e *FormatError) error() string {
	return fmt.Sprintf("%s: LUKS%d %s: %s",
		e.Device, e.Version, ErrFormatFailed, e.Err)
}

func (s *Stager) close(container *Container) error {
	if !container.opened {
		return fmt.Errorf("%s: %w", container.Device, ErrNotOpen)
	}
	if err := s.tool.Close(container.MappedName); err != nil {
		return err
	}
	container.opened = false
	s.logger.Printf("closed %s\n", container.MappedPath())
	return nil
}

func (s *Stager) format(partition string, version uint,
	passphrase Passphrase) (*Container, error) {
	if version != 1 && version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if len(passphrase) < 1 {
		return nil, ErrEmptyPassphrase
	}
	s.logger.Debugf(0, "formatting %s as LUKS%d\n", partition, version)
	if err := s.tool.Format(partition, version, passphrase); err != nil {
		return nil, &FormatError{Device: partition, Version: version, Err: err}
	}
	return &Container{
		Device:     partition,
		Version:    version,
		MappedName: defaultMappedName(partition),
	}, nil
}

func (s *Stager) open(container *Container,
	passphrase Passphrase) (string, error) {
	if container.opened {
		return "", fmt.Errorf("%s: %w: already open as %s",
			container.Device, ErrDeviceBusy, container.MappedName)
	}
	if len(passphrase) < 1 {
		return "", ErrEmptyPassphrase
	}
	err := s.tool.Open(container.Device, container.MappedName, passphrase)
	if err != nil {
		var toolError *tools.ToolError
		if errors.As(err, &toolError) {
			switch toolError.ExitStatus {
			case exitStatusWrongPassphrase:
				return "", fmt.Errorf("%s: %w", container.Device,
					ErrWrongPassphrase)
			case exitStatusBusy:
				return "", fmt.Errorf("%s: %w: %s", container.Device,
					ErrDeviceBusy, err)
			}
		}
		return "", err
	}
	container.opened = true
	s.logger.Printf("opened %s as %s\n", container.Device,
		container.MappedPath())
	return container.MappedPath(), nil
}
