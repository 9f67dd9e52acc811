// Package astro provides the low-precision solar geometry used by the prayer
// time calculator: Julian dates, solar declination, the equation of time,
// solar transit and hour angles for a target sun altitude.
//
// The solar position follows the NOAA solar calculator series (Meeus,
// "Astronomical Algorithms", ch. 25, low-precision method): mean longitude and
// anomaly as quadratics in Julian centuries, the equation of centre truncated
// after its third harmonic, and a single-term nutation correction. Sunrise and
// sunset derived from it agree with published tables to within about a minute
// for latitudes below the polar circles.
package astro

import (
	"errors"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian day of the J2000.0 epoch (2000-01-01 12:00 TT).
const J2000 = 2451545.0

// HorizonAltitude is the altitude of the Sun's centre, in degrees, when its
// upper limb touches the horizon under standard refraction.
const HorizonAltitude = -0.833

// ErrNoSolution is returned by HourAngle when the Sun never reaches the
// requested altitude on that day at that latitude.
var ErrNoSolution = errors.New("sun does not reach the requested altitude")

// Solar holds the Sun's apparent position for one instant.
type Solar struct {
	Declination    float64 // degrees
	RightAscension float64 // degrees, [0, 360)
	EquationOfTime float64 // minutes, apparent minus mean solar time
}

// JulianDay returns the Julian day for a Gregorian calendar date plus a number
// of hours past 00:00 UT. hoursUT may be negative or exceed 24.
func JulianDay(year, month, day int, hoursUT float64) float64 {
	return julian.CalendarGregorianToJD(year, month, float64(day)+hoursUT/24)
}

// JulianCentury returns the number of Julian centuries since J2000.0.
func JulianCentury(jd float64) float64 {
	return (jd - J2000) / 36525
}

// SolarPosition computes the Sun's declination, right ascension and the
// equation of time at Julian day jd.
func SolarPosition(jd float64) Solar {
	t := JulianCentury(jd)

	l0 := Normalize360(280.46646 + t*(36000.76983+t*0.0003032))
	m := Normalize360(357.52911 + t*(35999.05029-t*0.0001537))
	e := 0.016708634 - t*(0.000042037+t*0.0000001267)

	c := sinDeg(m)*(1.914602-t*(0.004817+t*0.000014)) +
		sinDeg(2*m)*(0.019993-t*0.000101) +
		sinDeg(3*m)*0.000289
	trueLong := l0 + c

	omega := 125.04 - 1934.136*t
	lambda := trueLong - 0.00569 - 0.00478*sinDeg(omega)

	eps0 := 23 + (26+(21.448-t*(46.815+t*(0.00059-t*0.001813)))/60)/60
	eps := eps0 + 0.00256*cosDeg(omega)

	decl := Rad2Deg(math.Asin(sinDeg(eps) * sinDeg(lambda)))
	ra := Normalize360(Rad2Deg(math.Atan2(cosDeg(eps)*sinDeg(lambda), cosDeg(lambda))))

	y := math.Pow(math.Tan(Deg2Rad(eps0)/2), 2)
	eot := y*sinDeg(2*l0) -
		2*e*sinDeg(m) +
		4*e*y*sinDeg(m)*cosDeg(2*l0) -
		0.5*y*y*sinDeg(4*l0) -
		1.25*e*e*sinDeg(2*m)

	return Solar{
		Declination:    decl,
		RightAscension: ra,
		EquationOfTime: Rad2Deg(eot) * 4,
	}
}

// TransitHours returns the UT hour of solar transit (apparent noon) for an
// observer at longitude (degrees, east positive) given the equation of time
// in minutes.
func TransitHours(longitude, eot float64) float64 {
	return 12 - longitude/15 - eot/60
}

// HourAngle returns the hour angle, in degrees, at which the Sun's centre is
// at the given altitude for an observer at latitude lat when the solar
// declination is decl. It solves
//
//	cos(H) = (sin(alt) - sin(lat)*sin(decl)) / (cos(lat)*cos(decl))
//
// and returns ErrNoSolution when the right-hand side falls outside [-1, 1].
func HourAngle(altitude, lat, decl float64) (float64, error) {
	num := sinDeg(altitude) - sinDeg(lat)*sinDeg(decl)
	den := cosDeg(lat) * cosDeg(decl)
	if den == 0 {
		return 0, ErrNoSolution
	}
	cosH := num / den
	if math.IsNaN(cosH) || cosH < -1 || cosH > 1 {
		return 0, ErrNoSolution
	}
	return Rad2Deg(math.Acos(cosH)), nil
}

// AsrAltitude returns the sun altitude, in degrees, at which an object's
// shadow equals shadowFactor times its height plus its noon shadow.
func AsrAltitude(shadowFactor, lat, decl float64) float64 {
	return Rad2Deg(math.Atan(1 / (shadowFactor + math.Tan(Deg2Rad(math.Abs(lat-decl))))))
}

// HoursToTime converts fractional hours past 00:00 UT on the given date into
// a UTC instant. Values outside [0, 24) roll over into adjacent days.
func HoursToTime(year, month, day int, hours float64) time.Time {
	base := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(math.Round(hours * float64(time.Hour))))
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }

// Normalize360 maps an angle into [0, 360).
func Normalize360(a float64) float64 {
	return a - 360*math.Floor(a/360)
}

func sinDeg(d float64) float64 { return math.Sin(Deg2Rad(d)) }
func cosDeg(d float64) float64 { return math.Cos(Deg2Rad(d)) }
