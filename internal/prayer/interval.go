package prayer

import "time"

// Interval is a named prayer window [Start, End).
type Interval struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Resolve returns the index of the first interval containing now, or -1 when
// now is before the first start or at/after the last end. A prayer becomes
// active exactly at its start instant.
func Resolve(now time.Time, intervals []Interval) int {
	for i, iv := range intervals {
		if iv.Contains(now) {
			return i
		}
	}
	return -1
}
