package tracelog

import (
	"fmt"

	"runtrace/internal/store"
)

// AreaLogger tags events with one named area of work. It is a thin handle;
// create as many as needed with Logger.For.
type AreaLogger struct {
	l    *Logger
	area string
}

// Area returns the area name this logger tags events with.
func (a *AreaLogger) Area() string {
	return a.area
}

// Log records one event at an explicit level and returns the store append
// error, for callers that must know durability was lost.
func (a *AreaLogger) Log(lv store.Level, msg string) error {
	return a.l.Record(a.area, lv, msg)
}

func (a *AreaLogger) Debug(msg string) { a.l.record(a.area, store.LevelDebug, msg) }

func (a *AreaLogger) Info(msg string) { a.l.record(a.area, store.LevelInfo, msg) }

// Status marks a sub-phase boundary: it closes the sub-phase currently open
// in this area and opens a new one named msg. It carries no severity.
func (a *AreaLogger) Status(msg string) { a.l.record(a.area, store.LevelStatus, msg) }

func (a *AreaLogger) Warning(msg string) { a.l.record(a.area, store.LevelWarning, msg) }

func (a *AreaLogger) Error(msg string) { a.l.record(a.area, store.LevelError, msg) }

func (a *AreaLogger) Critical(msg string) { a.l.record(a.area, store.LevelCritical, msg) }

func (a *AreaLogger) Debugf(format string, args ...any) {
	a.l.record(a.area, store.LevelDebug, fmt.Sprintf(format, args...))
}

func (a *AreaLogger) Infof(format string, args ...any) {
	a.l.record(a.area, store.LevelInfo, fmt.Sprintf(format, args...))
}

func (a *AreaLogger) Statusf(format string, args ...any) {
	a.l.record(a.area, store.LevelStatus, fmt.Sprintf(format, args...))
}

func (a *AreaLogger) Warningf(format string, args ...any) {
	a.l.record(a.area, store.LevelWarning, fmt.Sprintf(format, args...))
}

func (a *AreaLogger) Errorf(format string, args ...any) {
	a.l.record(a.area, store.LevelError, fmt.Sprintf(format, args...))
}

func (a *AreaLogger) Criticalf(format string, args ...any) {
	a.l.record(a.area, store.LevelCritical, fmt.Sprintf(format, args...))
}
