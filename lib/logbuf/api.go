// Package logbuf keeps the most recent log lines in memory and optionally
// writes every line to a new file per process in a log directory. The
// directory keeps a "latest" symlink to the current file.
package logbuf

import (
	"bufio"
	"flag"
	"io"
	"net/http"
	"os"
	"sync"
)

var (
	logDir = flag.String("logDir", "",
		"Directory to write log files to (empty disables)")
	logbufLines = flag.Uint("logbufLines", 1024,
		"Number of recent log lines to keep in memory")
	logMaxFiles = flag.Uint("logMaxFiles", 10,
		"Number of log files to keep in logDir")
)

type Options struct {
	AlsoLogToStderr bool
	Directory       string
	HttpServeMux    *http.ServeMux // If set, /logs handlers are registered.
	MaxBufferLines  uint           // Default: 1024.
	MaxFiles        uint           // Log files kept in Directory. Default: 10.
}

type LogBuffer struct {
	options Options
	stderr  io.Writer
	rwMutex sync.RWMutex
	// Protected by rwMutex.
	lines     []string
	nextLine  int
	file      *os.File
	writer    *bufio.Writer
	openError error
}

// GetStandardOptions returns options set from the command-line flags.
func GetStandardOptions() Options {
	return Options{
		Directory:      *logDir,
		MaxBufferLines: *logbufLines,
		MaxFiles:       *logMaxFiles,
	}
}

// NewWithOptions creates a LogBuffer. If a log file cannot be created in
// options.Directory, lines are kept in memory only and the error is
// available from OpenError.
func NewWithOptions(options Options) *LogBuffer {
	return newLogBuffer(options)
}

// Dump writes the lines held in memory, each wrapped in prefix and postfix.
func (lb *LogBuffer) Dump(writer io.Writer, prefix, postfix string,
	recentFirst bool) error {
	return lb.dump(writer, prefix, postfix, recentFirst)
}

func (lb *LogBuffer) Flush() error {
	return lb.flush()
}

// OpenError returns the error from creating the log file, if any.
func (lb *LogBuffer) OpenError() error {
	lb.rwMutex.RLock()
	defer lb.rwMutex.RUnlock()
	return lb.openError
}

func (lb *LogBuffer) Write(p []byte) (int, error) {
	return lb.write(p)
}
