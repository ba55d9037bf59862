package store

import (
	"fmt"
	"strings"
)

// Level is the severity of an event. Levels are ordered; STATUS sits between
// INFO and WARNING but carries no error meaning; it exists only to delimit
// sub-phases in the runtime breakdown.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelStatus
	LevelWarning
	LevelError
	LevelCritical
)

var levelNames = [...]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelStatus:   "STATUS",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelCritical {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for lv, n := range levelNames {
		if n == name {
			return Level(lv), nil
		}
	}
	return LevelDebug, fmt.Errorf("unknown level %q", s)
}
