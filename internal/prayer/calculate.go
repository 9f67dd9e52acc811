package prayer

import (
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/salat/internal/astro"
)

// Times holds the six prayer boundaries for one coordinate and civil date.
// All instants are in UTC; convert with In for display.
type Times struct {
	Coordinate Coordinate
	Date       CalendarDate
	Params     Params

	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// Compute calculates prayer times for coord on date. It is a pure function:
// the same inputs always yield identical instants.
//
// When the Sun never reaches the Fajr or Isha angle and params has no
// high-latitude rule, the error wraps one UnsolvableTimeError per affected
// prayer (use errors.As). A day without sunrise or sunset is always an error,
// joined with the Fajr and Isha errors when their angles are unreachable too.
func Compute(coord Coordinate, date CalendarDate, params Params) (Times, error) {
	if err := date.Validate(); err != nil {
		return Times{}, err
	}
	if err := coord.Validate(); err != nil {
		return Times{}, err
	}

	day := newSolarDay(coord, date)

	var errs []error

	riseH, err := day.hoursAtAltitude(astro.HorizonAltitude, false)
	if err != nil {
		errs = append(errs, day.unsolvable(Sunrise, astro.HorizonAltitude))
	}
	setH, err := day.hoursAtAltitude(astro.HorizonAltitude, true)
	if err != nil {
		errs = append(errs, day.unsolvable(Maghrib, astro.HorizonAltitude))
	}
	if len(errs) > 0 {
		// No night to divide, so twilight falls back to nothing.
		if _, ok := day.twilight(-params.fajrAngle, false); !ok {
			errs = append([]error{day.unsolvable(Fajr, -params.fajrAngle)}, errs...)
		}
		if params.ishaInterval <= 0 {
			if _, ok := day.twilight(-params.ishaAngle, true); !ok {
				errs = append(errs, day.unsolvable(Isha, -params.ishaAngle))
			}
		}
		return Times{}, errors.Join(errs...)
	}
	factor := params.madhab.ShadowFactor()
	asrH, err := day.hours(func(s astro.Solar) float64 {
		return astro.AsrAltitude(factor, coord.Latitude, s.Declination)
	}, true)
	if err != nil {
		return Times{}, day.unsolvable(Asr, astro.AsrAltitude(factor, coord.Latitude, day.sun.Declination))
	}

	sunrise := day.at(riseH)
	sunset := day.at(setH)
	dhuhr := day.at(day.transit)
	asr := day.at(asrH)

	fajr, ok := day.twilight(-params.fajrAngle, false)
	if !ok {
		if params.highLatitude == HighLatitudeNone {
			errs = append(errs, day.unsolvable(Fajr, -params.fajrAngle))
		} else {
			portion := params.highLatitude.nightPortion(params.fajrAngle)
			fajr = sunrise.Add(-scale(day.night(sunset, riseH, setH), portion))
		}
	}

	maghrib := sunset
	if params.maghribAngle > 0 {
		if t, ok := day.twilight(-params.maghribAngle, true); ok {
			maghrib = t
		}
	}

	var isha time.Time
	if params.ishaInterval <= 0 {
		var ok bool
		isha, ok = day.twilight(-params.ishaAngle, true)
		if !ok {
			if params.highLatitude == HighLatitudeNone {
				errs = append(errs, day.unsolvable(Isha, -params.ishaAngle))
			} else {
				portion := params.highLatitude.nightPortion(params.ishaAngle)
				isha = sunset.Add(scale(day.night(sunset, riseH, setH), portion))
			}
		}
	}

	if len(errs) > 0 {
		return Times{}, errors.Join(errs...)
	}

	adj := params.adjustments
	round := params.rounding.apply
	t := Times{
		Coordinate: coord,
		Date:       date,
		Params:     params,
		Fajr:       round(fajr.Add(minutes(adj.Fajr))),
		Sunrise:    round(sunrise.Add(minutes(adj.Sunrise))),
		Dhuhr:      round(dhuhr.Add(minutes(adj.Dhuhr))),
		Asr:        round(asr.Add(minutes(adj.Asr))),
		Maghrib:    round(maghrib.Add(minutes(adj.Maghrib))),
	}
	if params.ishaInterval > 0 {
		t.Isha = t.Maghrib.Add(minutes(params.ishaInterval + adj.Isha))
	} else {
		t.Isha = round(isha.Add(minutes(adj.Isha)))
	}

	if err := t.checkOrder(); err != nil {
		return Times{}, err
	}
	return t, nil
}

// Prayers returns the six boundaries in chronological order.
func (t Times) Prayers() []Prayer {
	return []Prayer{
		{Name: Fajr, Time: t.Fajr},
		{Name: Sunrise, Time: t.Sunrise},
		{Name: Dhuhr, Time: t.Dhuhr},
		{Name: Asr, Time: t.Asr},
		{Name: Maghrib, Time: t.Maghrib},
		{Name: Isha, Time: t.Isha},
	}
}

func (t Times) checkOrder() error {
	ps := t.Prayers()
	for i := 1; i < len(ps); i++ {
		if !ps[i-1].Time.Before(ps[i].Time) {
			return fmt.Errorf("%w on %s at %s: %s %s is not before %s %s",
				ErrOrdering, t.Date, t.Coordinate,
				ps[i-1].Name, ps[i-1].Time.Format(time.RFC3339),
				ps[i].Name, ps[i].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// solarDay caches the transit of one civil date at one coordinate.
type solarDay struct {
	coord   Coordinate
	date    CalendarDate
	jd0     float64     // Julian day at 00:00 UT
	transit float64     // UT hours
	sun     astro.Solar // at transit
}

func newSolarDay(coord Coordinate, date CalendarDate) solarDay {
	d := solarDay{
		coord: coord,
		date:  date,
		jd0:   astro.JulianDay(date.Year, date.Month, date.Day, 0),
	}
	d.transit = astro.TransitHours(coord.Longitude, 0)
	for i := 0; i < 2; i++ {
		d.sun = astro.SolarPosition(d.jd0 + d.transit/24)
		d.transit = astro.TransitHours(coord.Longitude, d.sun.EquationOfTime)
	}
	return d
}

// hours solves for the UT hour at which the Sun reaches altitude(sun), before
// or after transit. The first estimate uses the Sun at transit; one further
// pass re-evaluates the Sun at that estimate.
func (d solarDay) hours(altitude func(astro.Solar) float64, afterTransit bool) (float64, error) {
	sign := -1.0
	if afterTransit {
		sign = 1
	}

	sun, transit := d.sun, d.transit
	var h float64
	for i := 0; i < 2; i++ {
		ha, err := astro.HourAngle(altitude(sun), d.coord.Latitude, sun.Declination)
		if err != nil {
			return 0, err
		}
		h = transit + sign*ha/15
		sun = astro.SolarPosition(d.jd0 + h/24)
		transit = astro.TransitHours(d.coord.Longitude, sun.EquationOfTime)
	}
	return h, nil
}

func (d solarDay) hoursAtAltitude(alt float64, afterTransit bool) (float64, error) {
	return d.hours(func(astro.Solar) float64 { return alt }, afterTransit)
}

// twilight returns the instant the Sun reaches alt, and false when it never does.
func (d solarDay) twilight(alt float64, afterTransit bool) (time.Time, bool) {
	h, err := d.hoursAtAltitude(alt, afterTransit)
	if err != nil {
		return time.Time{}, false
	}
	return d.at(h), true
}

// night returns the span from sunset to the next day's sunrise. If the next
// day has no sunrise it falls back to 24 hours minus today's daylight.
func (d solarDay) night(sunset time.Time, riseH, setH float64) time.Duration {
	next := newSolarDay(d.coord, d.date.AddDays(1))
	if h, err := next.hoursAtAltitude(astro.HorizonAltitude, false); err == nil {
		return next.at(h).Sub(sunset)
	}
	return scale(24*time.Hour, 1-(setH-riseH)/24)
}

func (d solarDay) at(hours float64) time.Time {
	return astro.HoursToTime(d.date.Year, d.date.Month, d.date.Day, hours)
}

func (d solarDay) unsolvable(name string, alt float64) error {
	return &UnsolvableTimeError{
		Prayer:   name,
		Date:     d.date,
		Latitude: d.coord.Latitude,
		Altitude: alt,
	}
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
