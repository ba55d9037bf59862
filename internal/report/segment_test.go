package report

import (
	"errors"
	"testing"
	"time"

	"runtrace/internal/store"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ev(area string, lv store.Level, msg string, offset time.Duration) store.Event {
	return store.Event{Area: area, Level: lv, Message: msg, At: base.Add(offset)}
}

func findArea(t *testing.T, rt *Runtime, name string) Area {
	t.Helper()
	for _, a := range rt.Areas {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("area %q not in report", name)
	return Area{}
}

func entry(t *testing.T, a Area, name string) time.Duration {
	t.Helper()
	for _, e := range a.Entries {
		if e.Name == name {
			return e.Duration
		}
	}
	t.Fatalf("sub-phase %q not in area %q", name, a.Name)
	return 0
}

func TestSegmentInsufficientData(t *testing.T) {
	t.Parallel()

	if _, err := Segment(nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for zero events, got %v", err)
	}

	one := []store.Event{ev("A", store.LevelInfo, "x", 0)}
	if _, err := Segment(one); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for one event, got %v", err)
	}
}

// The boundary scenario: two STATUS markers inside area A, then a transition
// to B on the final event. B closes immediately at the last timestamp, so it
// reports a flat zero duration.
func TestSegmentStatusAndTrailingTransition(t *testing.T) {
	t.Parallel()

	events := []store.Event{
		ev("A", store.LevelInfo, "x", 0),
		ev("A", store.LevelStatus, "phase1", 1*time.Minute),
		ev("A", store.LevelStatus, "phase2", 3*time.Minute),
		ev("B", store.LevelInfo, "y", 7*time.Minute),
	}

	rt, err := Segment(events)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	if rt.Total != 7*time.Minute {
		t.Fatalf("expected total 7m, got %v", rt.Total)
	}

	a := findArea(t, rt, "A")
	if a.Total != 7*time.Minute {
		t.Fatalf("expected area A total 7m, got %v", a.Total)
	}
	if got := entry(t, a, "Startup"); got != 1*time.Minute {
		t.Fatalf("expected Startup 1m, got %v", got)
	}
	if got := entry(t, a, "phase1"); got != 2*time.Minute {
		t.Fatalf("expected phase1 2m, got %v", got)
	}
	if got := entry(t, a, "phase2"); got != 4*time.Minute {
		t.Fatalf("expected phase2 4m, got %v", got)
	}

	b := findArea(t, rt, "B")
	if b.Total != 0 {
		t.Fatalf("expected area B flat zero, got %v", b.Total)
	}
	if len(b.Entries) != 0 {
		t.Fatalf("expected area B without sub-phases, got %v", b.Entries)
	}
}

// Areas partition the timeline: their totals sum to the total runtime with
// no gaps or double counting.
func TestSegmentAreasPartitionTimeline(t *testing.T) {
	t.Parallel()

	events := []store.Event{
		ev("Alpha", store.LevelInfo, "a", 0),
		ev("Alpha", store.LevelStatus, "fetch", 90*time.Second),
		ev("Beta", store.LevelInfo, "b", 5*time.Minute),
		ev("Beta", store.LevelWarning, "slow", 6*time.Minute),
		ev("Gamma", store.LevelInfo, "c", 11*time.Minute),
		ev("Gamma", store.LevelInfo, "d", 13*time.Minute),
	}

	rt, err := Segment(events)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	var sum time.Duration
	for _, a := range rt.Areas {
		sum += a.Total
	}
	if sum != rt.Total {
		t.Fatalf("area totals %v do not sum to total runtime %v", sum, rt.Total)
	}
	if rt.Total != 13*time.Minute {
		t.Fatalf("expected total 13m, got %v", rt.Total)
	}
}

// An area that reappears after other areas accumulates into one total.
func TestSegmentReappearingAreaSums(t *testing.T) {
	t.Parallel()

	events := []store.Event{
		ev("A", store.LevelInfo, "a1", 0),
		ev("B", store.LevelInfo, "b", 2*time.Minute),
		ev("A", store.LevelInfo, "a2", 5*time.Minute),
		ev("A", store.LevelInfo, "a3", 9*time.Minute),
	}

	rt, err := Segment(events)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	// First appearance 0..2m, second 5m..9m.
	a := findArea(t, rt, "A")
	if a.Total != 6*time.Minute {
		t.Fatalf("expected area A to sum to 6m across appearances, got %v", a.Total)
	}
	if len(rt.Areas) != 2 {
		t.Fatalf("expected 2 distinct areas, got %d", len(rt.Areas))
	}
	if rt.Areas[0].Name != "A" || rt.Areas[1].Name != "B" {
		t.Fatalf("expected first-appearance order [A B], got %v", rt.Areas)
	}
}

// A repeated sub-phase name within an area keeps only the last duration.
func TestSegmentRepeatedSubPhaseNameOverwrites(t *testing.T) {
	t.Parallel()

	events := []store.Event{
		ev("A", store.LevelInfo, "x", 0),
		ev("A", store.LevelStatus, "retry", 1*time.Minute),
		ev("A", store.LevelStatus, "retry", 2*time.Minute),
		ev("A", store.LevelInfo, "done", 6*time.Minute),
	}

	rt, err := Segment(events)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	a := findArea(t, rt, "A")
	if got := entry(t, a, "retry"); got != 4*time.Minute {
		t.Fatalf("expected last write to win with 4m, got %v", got)
	}
	names := 0
	for _, e := range a.Entries {
		if e.Name == "retry" {
			names++
		}
	}
	if names != 1 {
		t.Fatalf("expected one entry for repeated name, got %d", names)
	}
}

// A STATUS event whose area differs from the previous event both transitions
// the area and opens a sub-phase in the new area: transition first, boundary
// second, so the new area books a zero-length Startup.
func TestSegmentStatusOnAreaTransition(t *testing.T) {
	t.Parallel()

	events := []store.Event{
		ev("A", store.LevelInfo, "x", 0),
		ev("B", store.LevelStatus, "load", 3*time.Minute),
		ev("B", store.LevelInfo, "y", 5*time.Minute),
	}

	rt, err := Segment(events)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	a := findArea(t, rt, "A")
	if a.Total != 3*time.Minute {
		t.Fatalf("expected area A total 3m, got %v", a.Total)
	}

	b := findArea(t, rt, "B")
	if b.Total != 2*time.Minute {
		t.Fatalf("expected area B total 2m, got %v", b.Total)
	}
	if got := entry(t, b, "Startup"); got != 0 {
		t.Fatalf("expected zero-length Startup in B, got %v", got)
	}
	if got := entry(t, b, "load"); got != 2*time.Minute {
		t.Fatalf("expected load 2m, got %v", got)
	}
}
