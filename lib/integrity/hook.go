package integrity

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
)

func writeHook(pathname, binary string, targets []string) error {
	if len(targets) < 1 {
		return fmt.Errorf("no hook targets")
	}
	buffer := &bytes.Buffer{}
	fmt.Fprintln(buffer, "[Trigger]")
	fmt.Fprintln(buffer, "Operation = Install")
	fmt.Fprintln(buffer, "Operation = Upgrade")
	fmt.Fprintln(buffer, "Operation = Remove")
	fmt.Fprintln(buffer, "Type = Package")
	for _, target := range targets {
		fmt.Fprintln(buffer, "Target =", target)
	}
	fmt.Fprintln(buffer)
	fmt.Fprintln(buffer, "[Action]")
	fmt.Fprintf(buffer,
		"Description = Checking %s integrity (run \"%s update\" if the changes are expected)\n",
		DefaultRoot, filepath.Base(binary))
	fmt.Fprintln(buffer, "When = PostTransaction")
	fmt.Fprintf(buffer, "Exec = %s verify\n", binary)
	if err := os.MkdirAll(filepath.Dir(pathname), fsutil.DirPerms); err != nil {
		return err
	}
	return fsutil.CopyToFile(pathname, fsutil.PublicFilePerms, buffer, 0)
}
