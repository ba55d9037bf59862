package report

import (
	"runtrace/internal/store"
)

// DefaultReportedLevels are the severities counted by the error digest when
// none are configured. STATUS is a structural marker and never counts.
var DefaultReportedLevels = []store.Level{
	store.LevelWarning,
	store.LevelError,
	store.LevelCritical,
}

// Aggregate tallies reported-severity events per area in one grouped pass.
// Grouping is by exact area string; no normalization or case-folding. Areas
// appear in first-appearance order, counts in the order of reported.
func Aggregate(events []store.Event, reported []store.Level) *Digest {
	if len(reported) == 0 {
		reported = DefaultReportedLevels
	}

	counted := make(map[store.Level]bool, len(reported))
	for _, lv := range reported {
		counted[lv] = true
	}

	var order []string
	counts := make(map[string]map[store.Level]int)
	for _, ev := range events {
		c, ok := counts[ev.Area]
		if !ok {
			c = make(map[store.Level]int)
			counts[ev.Area] = c
			order = append(order, ev.Area)
		}
		if counted[ev.Level] {
			c[ev.Level]++
		}
	}

	d := &Digest{}
	for _, name := range order {
		ad := AreaDigest{Name: name}
		for _, lv := range reported {
			if n := counts[name][lv]; n > 0 {
				ad.Counts = append(ad.Counts, LevelCount{Level: lv, Count: n})
			}
		}
		d.Areas = append(d.Areas, ad)
	}
	return d
}
