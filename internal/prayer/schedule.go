package prayer

import (
	"fmt"
	"time"
)

// Schedule is the display model for one civil date: today's prayers, the
// next day's prayers (needed for the night division), the Sunnah times and
// six display intervals.
type Schedule struct {
	Today     Times
	Tomorrow  Times
	Sunnah    SunnahTimes
	IshaEnd   IshaEnd
	Intervals []Interval
}

// NewSchedule computes a Schedule. Isha's interval closes at the instant
// chosen by end.
func NewSchedule(coord Coordinate, date CalendarDate, params Params, end IshaEnd) (Schedule, error) {
	today, err := Compute(coord, date, params)
	if err != nil {
		return Schedule{}, err
	}
	tomorrow, err := Compute(coord, date.AddDays(1), params)
	if err != nil {
		return Schedule{}, err
	}
	sunnah, err := ComputeSunnah(today.Maghrib, tomorrow.Fajr)
	if err != nil {
		return Schedule{}, err
	}

	var ishaEnd time.Time
	switch end {
	case MiddleOfNight:
		ishaEnd = sunnah.MiddleOfNight
	case NextFajr:
		ishaEnd = tomorrow.Fajr
	default:
		ishaEnd = sunnah.LastThirdOfNight
	}
	if !today.Isha.Before(ishaEnd) {
		// Isha can fall past the middle of a short night.
		ishaEnd = tomorrow.Fajr
	}
	if ishaEnd.Before(today.Isha) {
		ishaEnd = today.Isha
	}

	return Schedule{
		Today:    today,
		Tomorrow: tomorrow,
		Sunnah:   sunnah,
		IshaEnd:  end,
		Intervals: []Interval{
			{Name: Fajr, Start: today.Fajr, End: today.Sunrise},
			{Name: Sunrise, Start: today.Sunrise, End: today.Dhuhr},
			{Name: Dhuhr, Start: today.Dhuhr, End: today.Asr},
			{Name: Asr, Start: today.Asr, End: today.Maghrib},
			{Name: Maghrib, Start: today.Maghrib, End: today.Isha},
			{Name: Isha, Start: today.Isha, End: ishaEnd},
		},
	}, nil
}

// Day flattens the schedule into its named instants and intervals.
func (s Schedule) Day() Day {
	return Day{
		Date: s.Today.Date,
		Prayers: append(s.Today.Prayers(),
			Prayer{Name: Midnight, Time: s.Sunnah.MiddleOfNight},
			Prayer{Name: Lastthird, Time: s.Sunnah.LastThirdOfNight},
		),
		Intervals: append([]Interval(nil), s.Intervals...),
	}
}

// Active returns the index of the interval containing now, or -1.
func (s Schedule) Active(now time.Time) int {
	return Resolve(now, s.Intervals)
}

// Lookup returns the instant for a canonical prayer or night-division name.
func (s Schedule) Lookup(name string) (time.Time, bool) {
	return s.Day().Lookup(name)
}

// Select returns the named instants in the order given.
func (s Schedule) Select(names []string) ([]Prayer, error) {
	return s.Day().Select(names)
}

// Day is the serializable view of a Schedule: every named instant of one
// civil date plus its display intervals.
type Day struct {
	Date      CalendarDate `json:"date"`
	Prayers   []Prayer     `json:"prayers"`
	Intervals []Interval   `json:"intervals"`
}

// Active returns the index of the interval containing now, or -1.
func (d Day) Active(now time.Time) int {
	return Resolve(now, d.Intervals)
}

// Lookup returns the instant recorded under name.
func (d Day) Lookup(name string) (time.Time, bool) {
	for _, p := range d.Prayers {
		if p.Name == name {
			return p.Time, true
		}
	}
	return time.Time{}, false
}

// Select returns the named instants in the order given.
func (d Day) Select(names []string) ([]Prayer, error) {
	prayers := make([]Prayer, 0, len(names))
	for _, name := range names {
		t, ok := d.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}
		prayers = append(prayers, Prayer{Name: name, Time: t})
	}
	return prayers, nil
}
