package provision

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

const (
	crypttabFile      = "etc/crypttab"
	fstabFile         = "etc/fstab"
	grubDefaultsFile  = "etc/default/grub"
	initramfsHookFile = "etc/mkinitcpio.conf.d/encrypt.conf"
)

var (
	plainHooks = []string{"base", "udev", "autodetect", "microcode", "modconf",
		"kms", "keyboard", "keymap", "consolefont", "block", "filesystems",
		"fsck"}
	encryptedHooks = []string{"base", "udev", "autodetect", "microcode",
		"modconf", "kms", "keyboard", "keymap", "consolefont", "block",
		"encrypt", "lvm2", "filesystems", "fsck"}
)

type CrypttabEntry struct {
	Name     string
	Device   string
	Password string
	Options  string
}

type FstabEntry struct {
	Source        string
	MountPoint    string
	Type          string
	Options       string
	DumpFrequency uint
	CheckOrder    uint
}

type GrubSetting struct {
	Name  string
	Value string
}

// SystemConfig is the configuration written into the target root once the
// base system is installed.
type SystemConfig struct {
	Fstab          []FstabEntry
	Crypttab       []CrypttabEntry
	GrubSettings   []GrubSetting
	InitramfsHooks []string // Nil if the defaults need no override.
}

// NewSystemConfig derives the configuration from a run which has reached
// StateMounted.
func NewSystemConfig(ctx *Context) *SystemConfig {
	config := &SystemConfig{}
	config.Fstab = append(config.Fstab, FstabEntry{
		Source:     "LABEL=" + rootFsLabel,
		MountPoint: rootMountPoint,
		Type:       "ext4",
		CheckOrder: 1,
	})
	if ctx.Devices.Boot != "" {
		config.Fstab = append(config.Fstab, FstabEntry{
			Source:     "LABEL=" + bootFsLabel,
			MountPoint: bootMountPoint,
			Type:       "ext4",
			CheckOrder: 2,
		})
	}
	config.Fstab = append(config.Fstab,
		FstabEntry{
			Source:     "LABEL=" + efiFsLabel,
			MountPoint: efiMountPoint,
			Type:       "vfat",
			Options:    "umask=0077",
			CheckOrder: 2,
		},
		FstabEntry{
			Source:     "LABEL=" + swapFsLabel,
			MountPoint: "none",
			Type:       "swap",
		})
	if ctx.BootContainer != nil {
		config.Crypttab = append(config.Crypttab, CrypttabEntry{
			Name:     ctx.BootContainer.MappedName,
			Device:   "PARTLABEL=" + ctx.BootContainer.MappedName,
			Password: "none",
			Options:  "luks",
		})
		config.GrubSettings = append(config.GrubSettings,
			GrubSetting{"GRUB_ENABLE_CRYPTODISK", "y"})
	}
	if ctx.RootContainer != nil {
		config.GrubSettings = append(config.GrubSettings, GrubSetting{
			"GRUB_CMDLINE_LINUX",
			fmt.Sprintf(`"cryptdevice=PARTLABEL=%s:%s root=%s"`,
				ctx.RootContainer.MappedName, ctx.RootContainer.MappedName,
				ctx.Devices.Root),
		})
		config.InitramfsHooks = encryptedHooks
	}
	return config
}

// updateShellVariables replaces the assignments of settings in data, which
// is in shell variable syntax, and appends those which are absent.
func updateShellVariables(data []byte, settings []GrubSetting) []byte {
	pending := make(map[string]string, len(settings))
	for _, setting := range settings {
		pending[setting.Name] = setting.Value
	}
	output := &bytes.Buffer{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " \t#")
		if name, _, found := strings.Cut(trimmed, "="); found {
			if value, ok := pending[name]; ok {
				fmt.Fprintf(output, "%s=%s\n", name, value)
				delete(pending, name)
				continue
			}
		}
		fmt.Fprintln(output, line)
	}
	for _, setting := range settings {
		if value, ok := pending[setting.Name]; ok {
			fmt.Fprintf(output, "%s=%s\n", setting.Name, value)
		}
	}
	return output.Bytes()
}

func writeFile(root, filename string, data []byte) error {
	pathname := filepath.Join(root, filename)
	if err := os.MkdirAll(filepath.Dir(pathname), fsutil.DirPerms); err != nil {
		return err
	}
	return fsutil.CopyToFile(pathname, fsutil.PublicFilePerms,
		bytes.NewReader(data), 0)
}

func (c *SystemConfig) WriteCrypttab(writer io.Writer) error {
	for _, entry := range c.Crypttab {
		_, err := fmt.Fprintf(writer, "%-15s %-23s %-15s %s\n",
			entry.Name, entry.Device, entry.Password, entry.Options)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *SystemConfig) WriteFstab(writer io.Writer) error {
	for _, entry := range c.Fstab {
		options := entry.Options
		if options == "" {
			options = "defaults"
		}
		_, err := fmt.Fprintf(writer, "%-22s %-10s %-5s %-10s %d %d\n",
			entry.Source, entry.MountPoint, entry.Type, options,
			entry.DumpFrequency, entry.CheckOrder)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *SystemConfig) WriteInitramfsHooks(writer io.Writer) error {
	_, err := fmt.Fprintf(writer, "HOOKS=(%s)\n",
		strings.Join(c.InitramfsHooks, " "))
	return err
}

// Install writes the configuration files below root.
func (c *SystemConfig) Install(root string) error {
	buffer := &bytes.Buffer{}
	if err := c.WriteFstab(buffer); err != nil {
		return err
	}
	if err := writeFile(root, fstabFile, buffer.Bytes()); err != nil {
		return err
	}
	if len(c.Crypttab) > 0 {
		buffer.Reset()
		if err := c.WriteCrypttab(buffer); err != nil {
			return err
		}
		if err := writeFile(root, crypttabFile, buffer.Bytes()); err != nil {
			return err
		}
	}
	if len(c.GrubSettings) > 0 {
		data, err := os.ReadFile(filepath.Join(root, grubDefaultsFile))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		err = writeFile(root, grubDefaultsFile,
			updateShellVariables(data, c.GrubSettings))
		if err != nil {
			return err
		}
	}
	if len(c.InitramfsHooks) > 0 {
		buffer.Reset()
		if err := c.WriteInitramfsHooks(buffer); err != nil {
			return err
		}
		err := writeFile(root, initramfsHookFile, buffer.Bytes())
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *SystemConfig) log(logger log.DebugLogger) {
	buffer := &bytes.Buffer{}
	c.WriteFstab(buffer)
	logger.Debugf(0, "dry run: skipping write of %s:\n%s", fstabFile, buffer)
	if len(c.Crypttab) > 0 {
		buffer.Reset()
		c.WriteCrypttab(buffer)
		logger.Debugf(0, "dry run: skipping write of %s:\n%s",
			crypttabFile, buffer)
	}
	for _, setting := range c.GrubSettings {
		logger.Debugf(0, "dry run: skipping %s setting: %s=%s\n",
			grubDefaultsFile, setting.Name, setting.Value)
	}
	if len(c.InitramfsHooks) > 0 {
		logger.Debugf(0, "dry run: skipping write of %s: HOOKS=(%s)\n",
			initramfsHookFile, strings.Join(c.InitramfsHooks, " "))
	}
}
