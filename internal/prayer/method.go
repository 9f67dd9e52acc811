package prayer

import "time"

// Method identifiers accepted by LookupMethod.
const (
	MuslimWorldLeague = "mwl"
	NorthAmerica      = "isna"
	Egyptian          = "egyptian"
	Karachi           = "karachi"
	Dubai             = "dubai"
	UmmAlQura         = "umm-al-qura"
	Kuwait            = "kuwait"
	Qatar             = "qatar"
	Singapore         = "singapore"
	Turkey            = "turkey"
	Tehran            = "tehran"
)

// Params is an immutable bundle of calculation parameters. The With* methods
// return modified copies; a Params value is never changed in place.
type Params struct {
	method       string
	fajrAngle    float64
	ishaAngle    float64
	ishaInterval int // minutes after Maghrib; replaces ishaAngle when > 0
	maghribAngle float64
	madhab       Madhab
	highLatitude HighLatitudeRule
	adjustments  Adjustments
	rounding     Rounding
}

// NewParams builds custom angle-based parameters with Standard madhab, no
// high-latitude rule and nearest-minute rounding.
func NewParams(fajrAngle, ishaAngle float64) Params {
	return Params{method: "custom", fajrAngle: fajrAngle, ishaAngle: ishaAngle}
}

// Method returns the registry identifier the parameters came from.
func (p Params) Method() string { return p.method }

// FajrAngle returns the sun depression angle for Fajr in degrees.
func (p Params) FajrAngle() float64 { return p.fajrAngle }

// IshaAngle returns the sun depression angle for Isha in degrees. It is
// ignored when IshaInterval is positive.
func (p Params) IshaAngle() float64 { return p.ishaAngle }

// IshaInterval returns the fixed Maghrib-to-Isha gap, or zero when Isha is
// angle based.
func (p Params) IshaInterval() time.Duration { return minutes(p.ishaInterval) }

// MaghribAngle returns the depression angle for Maghrib, or zero when Maghrib
// is at sunset.
func (p Params) MaghribAngle() float64 { return p.maghribAngle }

// Madhab returns the Asr convention.
func (p Params) Madhab() Madhab { return p.madhab }

// HighLatitudeRule returns the fallback used for unsolvable Fajr or Isha.
func (p Params) HighLatitudeRule() HighLatitudeRule { return p.highLatitude }

// Adjustments returns the per-prayer minute offsets.
func (p Params) Adjustments() Adjustments { return p.adjustments }

// Rounding returns the rounding policy.
func (p Params) Rounding() Rounding { return p.rounding }

// WithMadhab returns a copy using madhab m.
func (p Params) WithMadhab(m Madhab) Params {
	p.madhab = m
	return p
}

// WithHighLatitudeRule returns a copy using rule r.
func (p Params) WithHighLatitudeRule(r HighLatitudeRule) Params {
	p.highLatitude = r
	return p
}

// WithAdjustments returns a copy whose offsets are the method's offsets plus a.
func (p Params) WithAdjustments(a Adjustments) Params {
	p.adjustments = p.adjustments.Add(a)
	return p
}

// WithRounding returns a copy using rounding policy r.
func (p Params) WithRounding(r Rounding) Params {
	p.rounding = r
	return p
}

// WithIshaInterval returns a copy with Isha a fixed number of minutes after
// Maghrib. Zero switches back to the Isha angle.
func (p Params) WithIshaInterval(mins int) Params {
	p.ishaInterval = mins
	return p
}

// MethodInfo describes a registered calculation method.
type MethodInfo struct {
	ID     string
	Name   string
	Params Params
}

// registry is ordered for display; lookups scan it.
var registry = []MethodInfo{
	{MuslimWorldLeague, "Muslim World League", Params{
		fajrAngle: 18, ishaAngle: 17,
		adjustments: Adjustments{Dhuhr: 1},
	}},
	{NorthAmerica, "Islamic Society of North America (ISNA)", Params{
		fajrAngle: 15, ishaAngle: 15,
		adjustments: Adjustments{Dhuhr: 1},
	}},
	{Egyptian, "Egyptian General Authority of Survey", Params{
		fajrAngle: 19.5, ishaAngle: 17.5,
		adjustments: Adjustments{Dhuhr: 1},
	}},
	{Karachi, "University of Islamic Sciences, Karachi", Params{
		fajrAngle: 18, ishaAngle: 18,
		adjustments: Adjustments{Dhuhr: 1},
	}},
	{Dubai, "Dubai (fixed 90 minute Isha)", Params{
		fajrAngle: 18.2, ishaInterval: 90,
		adjustments: Adjustments{Sunrise: -3, Dhuhr: 3, Asr: 3, Maghrib: 3},
	}},
	{UmmAlQura, "Umm Al-Qura University, Makkah", Params{
		fajrAngle: 18.5, ishaInterval: 90,
	}},
	{Kuwait, "Kuwait", Params{
		fajrAngle: 18, ishaAngle: 17.5,
	}},
	{Qatar, "Qatar", Params{
		fajrAngle: 18, ishaInterval: 90,
	}},
	{Singapore, "Majlis Ugama Islam Singapura", Params{
		fajrAngle: 20, ishaAngle: 18,
		adjustments: Adjustments{Dhuhr: 1},
		rounding:    RoundUp,
	}},
	{Turkey, "Diyanet Isleri Baskanligi, Turkey", Params{
		fajrAngle: 18, ishaAngle: 17,
		adjustments: Adjustments{Sunrise: -7, Dhuhr: 5, Asr: 4, Maghrib: 7},
	}},
	{Tehran, "Institute of Geophysics, University of Tehran", Params{
		fajrAngle: 17.7, ishaAngle: 14, maghribAngle: 4.5,
	}},
}

// Methods lists every registered method in display order.
func Methods() []MethodInfo {
	out := make([]MethodInfo, len(registry))
	for i, m := range registry {
		m.Params.method = m.ID
		out[i] = m
	}
	return out
}

// MethodIDs lists the registered identifiers in display order.
func MethodIDs() []string {
	ids := make([]string, len(registry))
	for i, m := range registry {
		ids[i] = m.ID
	}
	return ids
}

// LookupMethod returns a fresh copy of the parameters registered under id.
func LookupMethod(id string) (Params, error) {
	for _, m := range registry {
		if m.ID == id {
			p := m.Params
			p.method = m.ID
			return p, nil
		}
	}
	return Params{}, &UnknownMethodError{ID: id}
}
