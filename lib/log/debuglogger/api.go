package debuglogger

import (
	"log"
)

type Logger struct {
	*log.Logger
	level int16
}

// New will create a *Logger which wraps logger. The debug level defaults to -1
// (no debug messages are logged).
func New(logger *log.Logger) *Logger {
	return &Logger{Logger: logger, level: -1}
}

// GetLevel returns the current debug level.
func (l *Logger) GetLevel() int16 {
	return l.level
}

// SetLevel sets the debug level. Negative values disable debug logging.
func (l *Logger) SetLevel(maxLevel int16) {
	if maxLevel < -1 {
		maxLevel = -1
	}
	l.level = maxLevel
}

func (l *Logger) Debug(level uint8, v ...interface{}) {
	l.debug(level, v...)
}

func (l *Logger) Debugf(level uint8, format string, v ...interface{}) {
	l.debugf(level, format, v...)
}

func (l *Logger) Debugln(level uint8, v ...interface{}) {
	l.debugln(level, v...)
}
