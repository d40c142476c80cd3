package debuglogger

import (
	"fmt"
)

func (l *Logger) enabled(level uint8) bool {
	return int16(level) <= l.level
}

func (l *Logger) debug(level uint8, v ...interface{}) {
	if l.enabled(level) {
		l.Output(3, fmt.Sprint(v...))
	}
}

func (l *Logger) debugf(level uint8, format string, v ...interface{}) {
	if l.enabled(level) {
		l.Output(3, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) debugln(level uint8, v ...interface{}) {
	if l.enabled(level) {
		l.Output(3, fmt.Sprintln(v...))
	}
}
