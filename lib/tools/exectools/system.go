package exectools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
	"github.com/Cloud-Foundations/Provisioner/lib/tools"
	"github.com/Cloud-Foundations/Provisioner/lib/wsyscall"
)

var standardBindMounts = []string{"dev", "proc", "sys", "run"}

func (t *Tools) install(root string, packages []string) error {
	args := append([]string{"-K", root}, packages...)
	if _, err := t.run("pacstrap", "", nil, args...); err != nil {
		return err
	}
	if t.simulator != nil {
		return t.simulator.Install(root, packages)
	}
	return nil
}

func (t *Tools) makeBindMounts(root string) ([]string, error) {
	var mounted []string
	for _, bindMount := range standardBindMounts {
		target := filepath.Join(root, bindMount)
		if err := os.MkdirAll(target, fsutil.DirPerms); err != nil {
			t.unmountBindMounts(mounted)
			return nil, err
		}
		err := wsyscall.Mount("/"+bindMount, target, "",
			wsyscall.MS_BIND|wsyscall.MS_REC, "")
		if err != nil {
			t.unmountBindMounts(mounted)
			return nil, fmt.Errorf("error bind mounting: %s: %w", target, err)
		}
		mounted = append(mounted, target)
	}
	return mounted, nil
}

func (t *Tools) mount(source, target string, fsType tools.FileSystemType) error {
	if t.simulator != nil {
		t.logger.Debugf(0, "dry run: skipping mount of %s on %s type=%s\n",
			source, target, fsType)
		return t.simulator.Mount(source, target, fsType)
	}
	t.logger.Debugf(0, "mount %s on %s type=%s\n", source, target, fsType)
	return wsyscall.Mount(source, target, fsType.String(), 0, "")
}

func (t *Tools) packageVersion(root, name string) (string, error) {
	args := []string{"-Q", name}
	if root != "" && root != "/" {
		args = append([]string{"--root", root}, args...)
	}
	output, err := t.runAlways("pacman", "", nil, args...)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(output))
	if len(fields) != 2 || fields[0] != name {
		return "", fmt.Errorf("unexpected pacman output: %s", output)
	}
	return fields[1], nil
}

func (t *Tools) runInRoot(root, name string, args ...string) error {
	if t.simulator != nil {
		t.run(name, root, nil, args...)
		return t.simulator.RunInRoot(root, name, args...)
	}
	mounted, err := t.makeBindMounts(root)
	if err != nil {
		return err
	}
	defer t.unmountBindMounts(mounted)
	_, err = t.runAlways(name, root, nil, args...)
	return err
}

func (t *Tools) unmount(target string) error {
	if t.simulator != nil {
		t.logger.Debugf(0, "dry run: skipping unmount of %s\n", target)
		return t.simulator.Unmount(target)
	}
	if err := wsyscall.Unmount(target); err != nil {
		return fmt.Errorf("error unmounting: %s: %w", target, err)
	}
	t.logger.Debugf(2, "unmounted: %s\n", target)
	return nil
}

func (t *Tools) unmountBindMounts(mounted []string) {
	for index := len(mounted) - 1; index >= 0; index-- {
		if err := wsyscall.UnmountDetach(mounted[index]); err != nil {
			t.logger.Printf("error unmounting: %s: %s\n", mounted[index], err)
		}
	}
}
