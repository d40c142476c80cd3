package testlogger

import (
	"fmt"
	"strings"
	"time"
)

func plainSprint(v ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprint(v...), "\n")
}

func plainSprintf(format string, v ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintf(format, v...), "\n")
}

func newTestlogger(logger TestLogger) *Logger {
	return &Logger{
		logger:  logger,
		sprint:  plainSprint,
		sprintf: plainSprintf,
	}
}

func newWithTimestamps(logger TestLogger) *Logger {
	l := &Logger{
		logger:    logger,
		startTime: time.Now(),
	}
	l.sprint = func(v ...interface{}) string {
		return l.stamp(plainSprint(v...))
	}
	l.sprintf = func(format string, v ...interface{}) string {
		return l.stamp(plainSprintf(format, v...))
	}
	return l
}

func (l *Logger) stamp(s string) string {
	return fmt.Sprintf("[%09.6fs] %s",
		float64(time.Since(l.startTime))/float64(time.Second), s)
}

func (l *Logger) record(s string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.messages = append(l.messages, s)
}

func (l *Logger) getMessages() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *Logger) log(s string) {
	l.record(s)
	l.logger.Log(s)
}

func (l *Logger) fatal(s string) {
	l.record(s)
	l.logger.Fatal(s)
}
