// Package logfile mirrors events into per-severity log files with daily
// rotation, alongside the durable event store.
package logfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"runtrace/internal/store"
)

const backupStamp = "2006-01-02"

// Mirror writes each event line into every file whose severity threshold
// admits it: all_logs.log takes everything, warning.log WARNING and above,
// and so on. Files rotate at midnight, keeping a bounded number of dated
// backups.
type Mirror struct {
	mu      sync.Mutex
	dir     string
	backups int
	files   []*leveledFile

	sched     cron.Schedule
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type leveledFile struct {
	name string
	min  store.Level
	f    *os.File
}

// NewMirror opens the leveled files under dir and starts the midnight
// rotation goroutine. backups is the number of dated backups kept per file
// (7 when <= 0).
func NewMirror(dir string, backups int) (*Mirror, error) {
	if backups <= 0 {
		backups = 7
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	m := &Mirror{dir: dir, backups: backups, done: make(chan struct{})}
	cleanup := func() {
		m.mu.Lock()
		m.closeFilesLocked()
		m.mu.Unlock()
	}
	thresholds := []struct {
		name string
		min  store.Level
	}{
		{"all_logs.log", store.LevelDebug},
		{"warning.log", store.LevelWarning},
		{"error.log", store.LevelError},
		{"critical.log", store.LevelCritical},
	}
	for _, th := range thresholds {
		f, err := openAppend(filepath.Join(dir, th.name))
		if err != nil {
			cleanup()
			return nil, err
		}
		m.files = append(m.files, &leveledFile{name: th.name, min: th.min, f: f})
	}

	sched, err := cron.ParseStandard("0 0 * * *")
	if err != nil {
		cleanup()
		return nil, err
	}
	m.sched = sched

	m.wg.Add(1)
	go m.rotateLoop()
	return m, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Write mirrors one event into every file whose threshold admits the level.
// File write errors are ignored so logging never fails the caller on log
// storage issues.
func (m *Mirror) Write(at time.Time, area string, lv store.Level, msg string) {
	line := fmt.Sprintf("%s :-: %s :-: %s :-: %s\n",
		at.Format(time.RFC3339), area, lv, msg)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lf := range m.files {
		if lv < lf.min || lf.f == nil {
			continue
		}
		_, _ = lf.f.WriteString(line)
	}
}

func (m *Mirror) rotateLoop() {
	defer m.wg.Done()
	for {
		timer := time.NewTimer(time.Until(m.sched.Next(time.Now())))
		select {
		case <-m.done:
			timer.Stop()
			return
		case <-timer.C:
			if err := m.Rotate(); err != nil {
				log.Warn().Err(err).Msg("log file rotation failed")
			}
		}
	}
}

// Rotate renames each file to name.YYYY-MM-DD (the day just ended), prunes
// backups beyond the retention count and reopens fresh files.
func (m *Mirror) Rotate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp := time.Now().AddDate(0, 0, -1).Format(backupStamp)
	var firstErr error
	for _, lf := range m.files {
		if lf.f != nil {
			_ = lf.f.Close()
			lf.f = nil
		}

		src := filepath.Join(m.dir, lf.name)
		if err := os.Rename(src, src+"."+stamp); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
		}

		f, err := openAppend(src)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		lf.f = f
		m.pruneLocked(lf.name)
	}
	return firstErr
}

// pruneLocked removes dated backups of name beyond the retention count,
// oldest first. Caller must hold m.mu.
func (m *Mirror) pruneLocked(name string) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return
	}
	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), name+".") {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) <= m.backups {
		return
	}
	// Date-stamped suffixes sort chronologically.
	sort.Strings(backups)
	for _, old := range backups[:len(backups)-m.backups] {
		_ = os.Remove(filepath.Join(m.dir, old))
	}
}

// Close stops the rotation goroutine and closes the files. Safe to call more
// than once.
func (m *Mirror) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeFilesLocked()
}

func (m *Mirror) closeFilesLocked() error {
	var firstErr error
	for _, lf := range m.files {
		if lf.f == nil {
			continue
		}
		if err := lf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		lf.f = nil
	}
	return firstErr
}
