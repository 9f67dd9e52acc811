// Package prayer computes Islamic prayer times from solar geometry.
//
// Compute produces the six daily boundaries for a coordinate, civil date and
// calculation parameters. ComputeSunnah divides the night between Maghrib and
// the next Fajr, and Resolve picks the interval that contains a given instant.
// NewSchedule ties these together into the display model used by the CLI.
package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Prayer and night-division names.
const (
	Fajr      = "Fajr"
	Sunrise   = "Sunrise"
	Dhuhr     = "Dhuhr"
	Asr       = "Asr"
	Maghrib   = "Maghrib"
	Isha      = "Isha"
	Midnight  = "Midnight"
	Lastthird = "Lastthird"
)

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

// AllPrayerNames lists every named instant a Schedule can report.
var AllPrayerNames = []string{
	Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, Midnight, Lastthird,
}

// DefaultPrayerNames are the prayers tracked by default.
var DefaultPrayerNames = []string{
	Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha,
}

// ShortNames maps full prayer names to abbreviations.
var ShortNames = map[string]string{
	Fajr:      "F",
	Sunrise:   "S",
	Dhuhr:     "D",
	Asr:       "A",
	Maghrib:   "M",
	Isha:      "I",
	Midnight:  "Mi",
	Lastthird: "L3",
}

// NormalizeName returns the canonical spelling of a prayer name, matched
// case-insensitively.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, n := range AllPrayerNames {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q; valid names: %s", name, strings.Join(AllPrayerNames, ", "))
}

// ParseNames splits a comma-separated list and normalizes each name.
func ParseNames(list string) ([]string, error) {
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		n, err := NormalizeName(p)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// NextPrayer finds the next upcoming prayer from the given slice, relative to now.
// If all prayers have passed, it returns nil (caller should look at tomorrow).
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(prayer Prayer, now time.Time) time.Duration {
	return prayer.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
