package prayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Coordinate is a geographic position in decimal degrees.
// Latitude is north positive, longitude east positive.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports ErrInvalidCoordinate when either component is out of range.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Latitude != c.Latitude {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 || c.Longitude != c.Longitude {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// String formats the coordinate as "lat, lon" with four decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// CalendarDate is a civil date in the proleptic Gregorian calendar with no
// time-of-day component.
type CalendarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// NewCalendarDate builds a date and validates it.
func NewCalendarDate(year, month, day int) (CalendarDate, error) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	if err := d.Validate(); err != nil {
		return CalendarDate{}, err
	}
	return d, nil
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: int(m), Day: d}
}

// ParseCalendarDate parses a YYYY-MM-DD string.
func ParseCalendarDate(s string) (CalendarDate, error) {
	var y, m, d int
	if n, err := fmt.Sscanf(strings.TrimSpace(s), "%d-%d-%d", &y, &m, &d); err != nil || n != 3 {
		return CalendarDate{}, fmt.Errorf("%w: %q is not in YYYY-MM-DD form", ErrInvalidDate, s)
	}
	return NewCalendarDate(y, m, d)
}

// Validate rejects dates that do not exist in the Gregorian calendar.
// Nothing is clamped: 2023-02-29 is an error, not March 1st.
func (d CalendarDate) Validate() error {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > daysIn(d.Year, d.Month) {
		return &InvalidDateError{Year: d.Year, Month: d.Month, Day: d.Day}
	}
	return nil
}

// AddDays returns the date n days later (or earlier when n is negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Time returns midnight at the start of the date in loc.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// String formats the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysIn(year, month int) int {
	if month == 2 && julian.LeapYearGregorian(year) {
		return 29
	}
	return monthDays[month]
}

// Madhab selects the Asr shadow-length rule.
type Madhab int

const (
	// Standard is the Shafi, Maliki and Hanbali rule: shadow factor 1.
	Standard Madhab = iota
	// Hanafi uses shadow factor 2, giving a later Asr.
	Hanafi
)

// ShadowFactor returns the object-height multiple used by the Asr equation.
func (m Madhab) ShadowFactor() float64 {
	if m == Hanafi {
		return 2
	}
	return 1
}

func (m Madhab) String() string {
	if m == Hanafi {
		return "hanafi"
	}
	return "standard"
}

// ParseMadhab accepts "standard" (or "shafi") and "hanafi", case-insensitively.
func ParseMadhab(s string) (Madhab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "shafi", "0":
		return Standard, nil
	case "hanafi", "1":
		return Hanafi, nil
	default:
		return Standard, fmt.Errorf("invalid madhab %q: must be \"standard\" or \"hanafi\"", s)
	}
}

// HighLatitudeRule decides how Fajr and Isha are approximated when the Sun
// never reaches the configured depression angle.
type HighLatitudeRule int

const (
	// HighLatitudeNone reports an UnsolvableTimeError instead of approximating.
	HighLatitudeNone HighLatitudeRule = iota
	// MiddleOfTheNight limits Fajr and Isha to half of the night.
	MiddleOfTheNight
	// SeventhOfTheNight limits Fajr and Isha to one seventh of the night.
	SeventhOfTheNight
	// TwilightAngle uses angle/60 of the night.
	TwilightAngle
)

var highLatitudeNames = []string{"none", "middle-of-the-night", "seventh-of-the-night", "twilight-angle"}

// HighLatitudeRules lists every rule name accepted by ParseHighLatitudeRule.
func HighLatitudeRules() []string {
	return append([]string(nil), highLatitudeNames...)
}

func (r HighLatitudeRule) String() string {
	if int(r) < 0 || int(r) >= len(highLatitudeNames) {
		return fmt.Sprintf("HighLatitudeRule(%d)", int(r))
	}
	return highLatitudeNames[r]
}

// ParseHighLatitudeRule parses a rule name as printed by String.
func ParseHighLatitudeRule(s string) (HighLatitudeRule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range highLatitudeNames {
		if s == name {
			return HighLatitudeRule(i), nil
		}
	}
	return HighLatitudeNone, fmt.Errorf("invalid high latitude rule %q: must be one of %s", s, strings.Join(highLatitudeNames, ", "))
}

// nightPortion returns the fraction of the night allotted to Fajr or Isha.
func (r HighLatitudeRule) nightPortion(angle float64) float64 {
	switch r {
	case MiddleOfTheNight:
		return 1.0 / 2
	case SeventhOfTheNight:
		return 1.0 / 7
	case TwilightAngle:
		return angle / 60
	default:
		return 0
	}
}

// Rounding controls how computed instants are snapped to whole minutes.
type Rounding int

const (
	// RoundNearest rounds half a minute and above up.
	RoundNearest Rounding = iota
	// RoundUp moves any partial minute to the next minute.
	RoundUp
	// RoundNone keeps full precision.
	RoundNone
)

func (r Rounding) apply(t time.Time) time.Time {
	switch r {
	case RoundNearest:
		return t.Add(30 * time.Second).Truncate(time.Minute)
	case RoundUp:
		if tr := t.Truncate(time.Minute); !tr.Equal(t) {
			return tr.Add(time.Minute)
		}
		return t
	default:
		return t
	}
}

// Adjustments are per-prayer offsets in minutes added after calculation.
type Adjustments struct {
	Fajr    int `json:"fajr,omitempty"`
	Sunrise int `json:"sunrise,omitempty"`
	Dhuhr   int `json:"dhuhr,omitempty"`
	Asr     int `json:"asr,omitempty"`
	Maghrib int `json:"maghrib,omitempty"`
	Isha    int `json:"isha,omitempty"`
}

// Add returns the element-wise sum of a and b.
func (a Adjustments) Add(b Adjustments) Adjustments {
	return Adjustments{
		Fajr:    a.Fajr + b.Fajr,
		Sunrise: a.Sunrise + b.Sunrise,
		Dhuhr:   a.Dhuhr + b.Dhuhr,
		Asr:     a.Asr + b.Asr,
		Maghrib: a.Maghrib + b.Maghrib,
		Isha:    a.Isha + b.Isha,
	}
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

// IshaEnd selects which instant closes the Isha interval on display.
type IshaEnd int

const (
	// LastThirdOfNight ends Isha at the start of the last third of the night.
	LastThirdOfNight IshaEnd = iota
	// MiddleOfNight ends Isha at the middle of the night.
	MiddleOfNight
	// NextFajr ends Isha at the following day's Fajr.
	NextFajr
)

var ishaEndNames = []string{"last-third", "middle", "next-fajr"}

// IshaEndConventions lists every name accepted by ParseIshaEnd.
func IshaEndConventions() []string {
	return append([]string(nil), ishaEndNames...)
}

func (e IshaEnd) String() string {
	if int(e) < 0 || int(e) >= len(ishaEndNames) {
		return fmt.Sprintf("IshaEnd(%d)", int(e))
	}
	return ishaEndNames[e]
}

// ParseIshaEnd parses a convention name as printed by String.
func ParseIshaEnd(s string) (IshaEnd, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range ishaEndNames {
		if s == name {
			return IshaEnd(i), nil
		}
	}
	return LastThirdOfNight, fmt.Errorf("invalid isha end %q: must be one of %s", s, strings.Join(ishaEndNames, ", "))
}
