package reference

import (
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata" // the service reports IANA zone names

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// Prayers parses the response into instants for every name a prayer.Day
// records. Times are read in the zone reported by the service. Midnight and
// the last third that fall after 00:00 are moved to the following day.
func (r *Response) Prayers(date prayer.CalendarDate) ([]prayer.Prayer, error) {
	loc, err := time.LoadLocation(r.Data.Meta.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown reference timezone %q: %w", r.Data.Meta.Timezone, err)
	}
	day := date.Time(loc)

	t := r.Data.Timings
	raw := []struct{ name, value string }{
		{prayer.Fajr, t.Fajr},
		{prayer.Sunrise, t.Sunrise},
		{prayer.Dhuhr, t.Dhuhr},
		{prayer.Asr, t.Asr},
		{prayer.Maghrib, t.Maghrib},
		{prayer.Isha, t.Isha},
		{prayer.Midnight, t.Midnight},
		{prayer.Lastthird, t.Lastthird},
	}

	prayers := make([]prayer.Prayer, 0, len(raw))
	var maghrib time.Time
	for _, e := range raw {
		at, err := parseClock(e.value, day, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", e.name, e.value, err)
		}
		switch e.name {
		case prayer.Maghrib:
			maghrib = at
		case prayer.Isha, prayer.Midnight, prayer.Lastthird:
			if at.Before(maghrib) {
				at = at.AddDate(0, 0, 1)
			}
		}
		prayers = append(prayers, prayer.Prayer{Name: e.name, Time: at})
	}
	return prayers, nil
}

func parseClock(raw string, day time.Time, loc *time.Location) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// Deviation is the gap between a local and a reference instant.
type Deviation struct {
	Date   prayer.CalendarDate `json:"date"`
	Name   string              `json:"name"`
	Local  time.Time           `json:"local"`
	Remote time.Time           `json:"remote"`
	Delta  time.Duration       `json:"delta"` // local minus remote
}

// Compare pairs each reference instant with the local one of the same name.
// Names missing on either side are skipped.
func Compare(local prayer.Day, remote []prayer.Prayer) []Deviation {
	devs := make([]Deviation, 0, len(remote))
	for _, r := range remote {
		l, ok := local.Lookup(r.Name)
		if !ok {
			continue
		}
		devs = append(devs, Deviation{
			Date:   local.Date,
			Name:   r.Name,
			Local:  l,
			Remote: r.Time,
			Delta:  l.Sub(r.Time),
		})
	}
	return devs
}

// Stats summarizes the deviations recorded for one name.
type Stats struct {
	Name    string        `json:"name"`
	Count   int           `json:"count"`
	Mean    time.Duration `json:"mean"`
	StdDev  time.Duration `json:"std_dev"`
	MaxAbs  time.Duration `json:"max_abs"`
	Within1 int           `json:"within_1m"` // samples no more than a minute apart
}

// Summarize groups deviations by name, in prayer.AllPrayerNames order.
func Summarize(devs []Deviation) []Stats {
	byName := map[string][]float64{}
	for _, d := range devs {
		byName[d.Name] = append(byName[d.Name], d.Delta.Seconds())
	}

	var out []Stats
	for _, name := range prayer.AllPrayerNames {
		secs := byName[name]
		if len(secs) == 0 {
			continue
		}
		abs := make([]float64, len(secs))
		within := 0
		for i, s := range secs {
			abs[i] = math.Abs(s)
			if abs[i] <= 60 {
				within++
			}
		}
		mean, std := stat.MeanStdDev(secs, nil)
		if len(secs) < 2 {
			std = 0
		}
		out = append(out, Stats{
			Name:    name,
			Count:   len(secs),
			Mean:    seconds(mean),
			StdDev:  seconds(std),
			MaxAbs:  seconds(floats.Max(abs)),
			Within1: within,
		})
	}
	return out
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
