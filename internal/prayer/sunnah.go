package prayer

import (
	"fmt"
	"time"
)

// SunnahTimes divides the night between Maghrib and the following Fajr.
type SunnahTimes struct {
	MiddleOfNight    time.Time
	LastThirdOfNight time.Time
}

// ComputeSunnah returns the middle and the start of the last third of the
// night running from maghribToday to fajrTomorrow. The night must have a
// positive length.
func ComputeSunnah(maghribToday, fajrTomorrow time.Time) (SunnahTimes, error) {
	night := fajrTomorrow.Sub(maghribToday)
	if night <= 0 {
		return SunnahTimes{}, fmt.Errorf("%w: maghrib %s, fajr %s", ErrInvalidNight,
			maghribToday.Format(time.RFC3339), fajrTomorrow.Format(time.RFC3339))
	}
	return SunnahTimes{
		MiddleOfNight:    maghribToday.Add(night / 2),
		LastThirdOfNight: maghribToday.Add(night * 2 / 3),
	}, nil
}

// SunnahFor runs the calculator for date and the day after, then divides the
// night between them.
func SunnahFor(coord Coordinate, date CalendarDate, params Params) (SunnahTimes, error) {
	today, err := Compute(coord, date, params)
	if err != nil {
		return SunnahTimes{}, err
	}
	tomorrow, err := Compute(coord, date.AddDays(1), params)
	if err != nil {
		return SunnahTimes{}, err
	}
	return ComputeSunnah(today.Maghrib, tomorrow.Fajr)
}
