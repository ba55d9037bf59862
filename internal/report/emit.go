package report

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// RuntimeFile is the rolling runtime-breakdown history document.
	RuntimeFile = "report_runtime.json"
	// ErrorFile is the error-digest document, overwritten each run.
	ErrorFile = "report_errors.json"

	// DefaultHistoryCap bounds the rolling runtime history.
	DefaultHistoryCap = 300
)

// Emitter writes report documents into a directory. Writes are atomic from
// a reader's point of view: content goes to a uniquely named temp file that
// is renamed into place.
type Emitter struct {
	dir        string
	historyCap int
}

// NewEmitter creates an Emitter writing into dir, keeping at most historyCap
// runtime reports (DefaultHistoryCap when <= 0).
func NewEmitter(dir string, historyCap int) *Emitter {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Emitter{dir: dir, historyCap: historyCap}
}

// WriteErrors overwrites the error digest document. Only the latest run's
// digest matters operationally.
func (e *Emitter) WriteErrors(d *Digest) error {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal error report: %w", err)
	}
	return e.writeAtomic(ErrorFile, data)
}

// WriteRuntime prepends the report to the rolling runtime history, dropping
// entries beyond the cap. An existing history that cannot be parsed is
// replaced by a fresh single-entry one rather than losing the new report.
// A history file that exists but cannot be read is an error; only parse
// failures trigger the fallback.
func (e *Emitter) WriteRuntime(r *Runtime) error {
	entry, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal runtime report: %w", err)
	}

	history := []json.RawMessage{entry}
	data, err := os.ReadFile(filepath.Join(e.dir, RuntimeFile))
	switch {
	case err == nil:
		var prior []json.RawMessage
		if err := json.Unmarshal(data, &prior); err == nil {
			history = append(history, prior...)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("read runtime history: %w", err)
	}
	if len(history) > e.historyCap {
		history = history[:e.historyCap]
	}

	data, err = json.MarshalIndent(history, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal runtime history: %w", err)
	}
	return e.writeAtomic(RuntimeFile, data)
}

func (e *Emitter) writeAtomic(name string, data []byte) error {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return err
	}

	final := filepath.Join(e.dir, name)
	suffix := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	tmp := final + "." + suffix + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
