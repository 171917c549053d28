package service

import (
	"fmt"
	"time"
)

// RunLog accumulates the timestamped, append-only activity log returned
// verbatim to the caller. One run owns one RunLog; no locking needed.
type RunLog struct {
	lines []string
}

func NewRunLog() *RunLog {
	return &RunLog{lines: make([]string, 0, 16)}
}

func (l *RunLog) Add(format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
}

func (l *RunLog) Lines() []string {
	return l.lines
}
