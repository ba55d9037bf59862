// Package report derives the runtime breakdown and error digest for one run
// and persists them as JSON documents.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"runtrace/internal/store"
)

// Runtime is the nested timing breakdown for one run.
type Runtime struct {
	Total time.Duration
	Areas []Area
}

// Area is the time attributed to one named phase, in first-appearance order.
// An area that reappears later in the stream accumulates into the same
// total.
type Area struct {
	Name    string
	Total   time.Duration
	Entries []SubPhase
}

// SubPhase is a named interval inside an area, opened by a STATUS event and
// closed by the next boundary or the area's end.
type SubPhase struct {
	Name     string
	Duration time.Duration
}

// Digest tallies problem-level events per area. Every area observed in the
// run appears; areas without qualifying events carry no counts and render as
// the "No Errors" sentinel.
type Digest struct {
	Areas []AreaDigest
}

// AreaDigest holds per-severity counts for one area, in severity order.
type AreaDigest struct {
	Name   string
	Counts []LevelCount
}

// LevelCount is one observed severity and how often it occurred.
type LevelCount struct {
	Level store.Level
	Count int
}

func minutes(d time.Duration) string {
	return fmt.Sprintf("%.2f minutes", d.Minutes())
}

// MarshalJSON renders the runtime document with "Total runtime" first and
// areas in first-appearance order. Areas without sub-phases collapse to a
// flat duration string.
func (r *Runtime) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeKey(&buf, "Total runtime")
	writeString(&buf, minutes(r.Total))
	for _, a := range r.Areas {
		buf.WriteByte(',')
		writeKey(&buf, a.Name)
		if len(a.Entries) == 0 {
			writeString(&buf, minutes(a.Total))
			continue
		}
		buf.WriteByte('{')
		writeKey(&buf, "Total_runtime")
		writeString(&buf, minutes(a.Total))
		buf.WriteByte(',')
		writeKey(&buf, "Entries")
		buf.WriteByte('{')
		for i, e := range a.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, e.Name)
			writeString(&buf, minutes(e.Duration))
		}
		buf.WriteString("}}")
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON renders the error document, one key per area in
// first-appearance order.
func (d *Digest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range d.Areas {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, a.Name)
		if len(a.Counts) == 0 {
			writeString(&buf, "No Errors")
			continue
		}
		buf.WriteByte('{')
		for j, c := range a.Counts {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, c.Level.String())
			fmt.Fprintf(&buf, `{"Count":%d}`, c.Count)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, k string) {
	writeString(buf, k)
	buf.WriteByte(':')
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
