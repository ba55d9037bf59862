package report

import (
	"errors"
	"time"

	"runtrace/internal/store"
)

// ErrInsufficientData reports that a run recorded fewer than two events, so
// no runtime can be derived and no report should be written.
var ErrInsufficientData = errors.New("fewer than two events recorded for run")

// The synthetic sub-phase covering the interval between an area's start and
// its first STATUS boundary.
const startupPhase = "Startup"

// Segment derives the nested timing breakdown from one run's events in a
// single forward pass. The slice must be ordered by (timestamp, insertion
// order) ascending, as returned by the store.
//
// An area transition closes the previous area and its open sub-phase. A
// STATUS event closes the open sub-phase, booking the interval since the
// area began as "Startup" when none is open, then opens a new sub-phase
// named by its message. A STATUS event that also changes the area does both:
// transition first, boundary second. The final event closes whatever is
// still open. Repeated sub-phase names within an area overwrite (last write
// wins).
func Segment(events []store.Event) (*Runtime, error) {
	if len(events) < 2 {
		return nil, ErrInsufficientData
	}

	first := events[0].At
	last := events[len(events)-1].At
	rt := &Runtime{Total: last.Sub(first)}

	areas := make(map[string]int)
	area := func(name string) *Area {
		i, ok := areas[name]
		if !ok {
			i = len(rt.Areas)
			areas[name] = i
			rt.Areas = append(rt.Areas, Area{Name: name})
		}
		return &rt.Areas[i]
	}

	var (
		current   string
		haveArea  bool
		areaStart time.Time
		subName   string
		subStart  time.Time
		subOpen   bool
	)

	for _, ev := range events {
		if !haveArea || ev.Area != current {
			if haveArea {
				a := area(current)
				a.Total += ev.At.Sub(areaStart)
				if subOpen {
					setEntry(a, subName, ev.At.Sub(subStart))
				}
			}
			current = ev.Area
			haveArea = true
			areaStart = ev.At
			subOpen = false
		}

		if ev.Level == store.LevelStatus {
			a := area(current)
			if subOpen {
				setEntry(a, subName, ev.At.Sub(subStart))
			} else {
				setEntry(a, startupPhase, ev.At.Sub(areaStart))
			}
			subName = ev.Message
			subStart = ev.At
			subOpen = true
		}
	}

	// The last event's timestamp is the closing boundary for whatever is
	// still open.
	a := area(current)
	a.Total += last.Sub(areaStart)
	if subOpen {
		setEntry(a, subName, last.Sub(subStart))
	}

	return rt, nil
}

func setEntry(a *Area, name string, d time.Duration) {
	for i := range a.Entries {
		if a.Entries[i].Name == name {
			a.Entries[i].Duration = d
			return
		}
	}
	a.Entries = append(a.Entries, SubPhase{Name: name, Duration: d})
}
