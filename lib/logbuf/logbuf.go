package logbuf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
)

const timeLayout = "2006-01-02:15:04:05.999"

func newLogBuffer(options Options) *LogBuffer {
	if options.MaxBufferLines < 1 {
		options.MaxBufferLines = 1024
	}
	if options.MaxFiles < 1 {
		options.MaxFiles = 10
	}
	lb := &LogBuffer{
		options: options,
		stderr:  os.Stderr,
		lines:   make([]string, 0, options.MaxBufferLines),
	}
	if options.Directory != "" {
		lb.openError = lb.openNewFile()
		if lb.openError == nil {
			lb.expireOldFiles()
		}
	}
	lb.addHttpHandlers()
	return lb
}

func (lb *LogBuffer) addLine(line string) {
	if uint(len(lb.lines)) < lb.options.MaxBufferLines {
		lb.lines = append(lb.lines, line)
		return
	}
	lb.lines[lb.nextLine] = line
	lb.nextLine++
	if lb.nextLine >= len(lb.lines) {
		lb.nextLine = 0
	}
}

func (lb *LogBuffer) dump(writer io.Writer, prefix, postfix string,
	recentFirst bool) error {
	lines := lb.snapshot()
	if recentFirst {
		reverseStrings(lines)
	}
	w := bufio.NewWriter(writer)
	for _, line := range lines {
		if _, err := fmt.Fprint(w, prefix, line, postfix); err != nil {
			return err
		}
	}
	return w.Flush()
}

// This should be called with the lock held.
func (lb *LogBuffer) expireOldFiles() {
	names, err := lb.list()
	if err != nil {
		return
	}
	for uint(len(names)) > lb.options.MaxFiles {
		os.Remove(filepath.Join(lb.options.Directory, names[0]))
		names = names[1:]
	}
}

func (lb *LogBuffer) flush() error {
	lb.rwMutex.Lock()
	defer lb.rwMutex.Unlock()
	if lb.writer == nil {
		return nil
	}
	if err := lb.writer.Flush(); err != nil {
		return err
	}
	return lb.file.Sync()
}

// list returns the names of the log files, oldest first.
func (lb *LogBuffer) list() ([]string, error) {
	entries, err := os.ReadDir(lb.options.Directory)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.Count(entry.Name(), ":") == 3 && entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// This should be called with the lock held.
func (lb *LogBuffer) openNewFile() error {
	filename := time.Now().Format(timeLayout)
	file, err := os.OpenFile(filepath.Join(lb.options.Directory, filename),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, fsutil.PublicFilePerms)
	if err != nil {
		return err
	}
	lb.file = file
	lb.writer = bufio.NewWriter(file)
	symlink := filepath.Join(lb.options.Directory, "latest")
	tmpSymlink := symlink + "~"
	os.Remove(tmpSymlink)
	os.Symlink(filename, tmpSymlink)
	return os.Rename(tmpSymlink, symlink)
}

func (lb *LogBuffer) write(p []byte) (int, error) {
	if lb.options.AlsoLogToStderr {
		lb.stderr.Write(p)
	}
	lb.rwMutex.Lock()
	defer lb.rwMutex.Unlock()
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"),
		"\n") {
		lb.addLine(line)
	}
	if lb.writer == nil {
		return len(p), nil
	}
	return lb.writer.Write(p)
}

// snapshot returns the lines held in memory, oldest first.
func (lb *LogBuffer) snapshot() []string {
	lb.rwMutex.RLock()
	defer lb.rwMutex.RUnlock()
	lines := make([]string, 0, len(lb.lines))
	lines = append(lines, lb.lines[lb.nextLine:]...)
	return append(lines, lb.lines[:lb.nextLine]...)
}

func reverseStrings(list []string) {
	for left, right := 0, len(list)-1; left < right; left, right = left+1,
		right-1 {
		list[left], list[right] = list[right], list[left]
	}
}
