package testlogger

import (
	"sync"
	"time"
)

type sprintFunc func(v ...interface{}) string
type sprintfFunc func(format string, v ...interface{}) string

type Logger struct {
	logger    TestLogger
	sprint    sprintFunc
	sprintf   sprintfFunc
	startTime time.Time
	mutex     sync.Mutex // Protect everything below.
	messages  []string
}

// TestLogger defines an interface for a type that can be used for logging by
// tests. The testing.T type from the standard library satisfies this interface.
type TestLogger interface {
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	Log(v ...interface{})
	Logf(format string, v ...interface{})
}

// New will create a Logger from a TestLogger. The Logger that is created
// satisfies the log.DebugLogger interface and thus may be used widely. It
// serves as an adaptor between the testing.T type from the standard library and
// library code that expects a generic logging type.
// Trailing newlines are removed before calling the TestLogger methods.
func New(logger TestLogger) *Logger {
	return newTestlogger(logger)
}

// NewWithTimestamps is the same as New, except that timestamps (since creating
// the logger) are included in the log messages.
func NewWithTimestamps(logger TestLogger) *Logger {
	return newWithTimestamps(logger)
}

// Messages returns a copy of every message logged so far, so that tests may
// check what was (or was not) logged.
func (l *Logger) Messages() []string {
	return l.getMessages()
}

// Debug will log regardless of the debug level.
func (l *Logger) Debug(level uint8, v ...interface{}) {
	l.log(l.sprint(v...))
}

func (l *Logger) Debugf(level uint8, format string, v ...interface{}) {
	l.log(l.sprintf(format, v...))
}

func (l *Logger) Debugln(level uint8, v ...interface{}) {
	l.log(l.sprint(v...))
}

// Fatal will call the Fatal method of the underlying TestLogger.
func (l *Logger) Fatal(v ...interface{}) {
	l.fatal(l.sprint(v...))
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.fatal(l.sprintf(format, v...))
}

func (l *Logger) Fatalln(v ...interface{}) {
	l.fatal(l.sprint(v...))
}

// Panic will call the Fatal method of the underlying TestLogger and will then
// call panic.
func (l *Logger) Panic(v ...interface{}) {
	s := l.sprint(v...)
	l.fatal(s)
	panic(s)
}

func (l *Logger) Panicf(format string, v ...interface{}) {
	s := l.sprintf(format, v...)
	l.fatal(s)
	panic(s)
}

func (l *Logger) Panicln(v ...interface{}) {
	s := l.sprint(v...)
	l.fatal(s)
	panic(s)
}

func (l *Logger) Print(v ...interface{}) {
	l.log(l.sprint(v...))
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.log(l.sprintf(format, v...))
}

func (l *Logger) Println(v ...interface{}) {
	l.log(l.sprint(v...))
}
