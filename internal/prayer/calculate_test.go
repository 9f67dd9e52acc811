package prayer

import (
	"errors"
	"testing"
	"time"
)

var (
	mecca  = Coordinate{Latitude: 21.4225, Longitude: 39.8262}
	london = Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	arctic = Coordinate{Latitude: 66, Longitude: 25}

	meccaZone = time.FixedZone("+03", 3*60*60)
)

func mustMethod(t *testing.T, id string) Params {
	t.Helper()
	p, err := LookupMethod(id)
	if err != nil {
		t.Fatalf("LookupMethod(%q): %v", id, err)
	}
	return p
}

func mustCompute(t *testing.T, c Coordinate, d CalendarDate, p Params) Times {
	t.Helper()
	times, err := Compute(c, d, p)
	if err != nil {
		t.Fatalf("Compute(%v, %v, %s): %v", c, d, p.Method(), err)
	}
	return times
}

func clockBetween(t *testing.T, label string, got time.Time, loc *time.Location, from, to string) {
	t.Helper()
	local := got.In(loc).Format(Layout24h)
	if local < from || local > to {
		t.Errorf("%s = %s, want between %s and %s", label, local, from, to)
	}
}

// unsolvableNames collects the prayer names of every UnsolvableTimeError in err.
func unsolvableNames(err error) map[string]bool {
	names := map[string]bool{}
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if u, ok := e.(*UnsolvableTimeError); ok {
			names[u.Prayer] = true
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		walk(errors.Unwrap(e))
	}
	walk(err)
	return names
}

// ---------------------------------------------------------------------------
// Reference scenario
// ---------------------------------------------------------------------------

func TestCompute_MeccaMidJune(t *testing.T) {
	times := mustCompute(t, mecca, CalendarDate{2024, 6, 15}, mustMethod(t, MuslimWorldLeague))

	clockBetween(t, "Dhuhr", times.Dhuhr, meccaZone, "12:20", "12:25")
	clockBetween(t, "Sunrise", times.Sunrise, meccaZone, "05:33", "05:45")
	clockBetween(t, "Maghrib", times.Maghrib, meccaZone, "19:00", "19:12")

	if gap := times.Sunrise.Sub(times.Fajr); gap < time.Hour {
		t.Errorf("Fajr only %v before sunrise, want at least an hour", gap)
	}
	if gap := times.Isha.Sub(times.Maghrib); gap < time.Hour {
		t.Errorf("Isha only %v after Maghrib, want at least an hour", gap)
	}
	if times.Date != (CalendarDate{2024, 6, 15}) || times.Coordinate != mecca {
		t.Errorf("result not tagged with its inputs: %v %v", times.Date, times.Coordinate)
	}
}

func TestCompute_TimesAreUTC(t *testing.T) {
	times := mustCompute(t, mecca, CalendarDate{2024, 6, 15}, mustMethod(t, MuslimWorldLeague))
	for _, p := range times.Prayers() {
		if p.Time.Location() != time.UTC {
			t.Errorf("%s location = %v, want UTC", p.Name, p.Time.Location())
		}
	}
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

func TestCompute_OrderingAcrossMethodsAndSeasons(t *testing.T) {
	coords := []Coordinate{
		{Latitude: -45, Longitude: 170.5},
		{Latitude: -33.87, Longitude: 151.21},
		{Latitude: 0, Longitude: 0},
		{Latitude: 1.29, Longitude: 103.85},
		mecca,
		{Latitude: 30.04, Longitude: 31.24},
		{Latitude: 40.71, Longitude: -74.01},
		{Latitude: 45, Longitude: -122.6},
	}

	for _, m := range Methods() {
		for _, c := range coords {
			for month := 1; month <= 12; month++ {
				d := CalendarDate{2024, month, 15}
				times, err := Compute(c, d, m.Params)
				if err != nil {
					t.Errorf("%s %v %v: %v", m.ID, c, d, err)
					continue
				}
				ps := times.Prayers()
				for i := 1; i < len(ps); i++ {
					if !ps[i-1].Time.Before(ps[i].Time) {
						t.Errorf("%s %v %v: %s (%v) not before %s (%v)",
							m.ID, c, d, ps[i-1].Name, ps[i-1].Time, ps[i].Name, ps[i].Time)
					}
				}
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	p := mustMethod(t, Egyptian).WithMadhab(Hanafi)
	d := CalendarDate{2024, 3, 20}
	a := mustCompute(t, mecca, d, p)
	b := mustCompute(t, mecca, d, p)
	if a != b {
		t.Errorf("two runs differ:\n%+v\n%+v", a, b)
	}
}

func TestCompute_HanafiAsrNotEarlier(t *testing.T) {
	base := mustMethod(t, MuslimWorldLeague)
	for _, c := range []Coordinate{mecca, {Latitude: -33.87, Longitude: 151.21}, {Latitude: 40.71, Longitude: -74.01}} {
		for _, month := range []int{1, 4, 7, 10} {
			d := CalendarDate{2024, month, 1}
			std := mustCompute(t, c, d, base.WithMadhab(Standard))
			han := mustCompute(t, c, d, base.WithMadhab(Hanafi))
			if han.Asr.Before(std.Asr) {
				t.Errorf("%v %v: Hanafi Asr %v before Standard %v", c, d, han.Asr, std.Asr)
			}
			if han.Dhuhr != std.Dhuhr || han.Maghrib != std.Maghrib {
				t.Errorf("%v %v: madhab changed a prayer other than Asr", c, d)
			}
		}
	}
}

func TestCompute_IntervalIshaIsExact(t *testing.T) {
	coords := []Coordinate{
		{Latitude: 25.2, Longitude: 55.27},
		{Latitude: 0, Longitude: -78.5},
		{Latitude: 45, Longitude: 7.7},
		{Latitude: -33.9, Longitude: 18.4},
	}
	for _, id := range []string{Dubai, UmmAlQura, Qatar} {
		p := mustMethod(t, id)
		for _, c := range coords {
			times := mustCompute(t, c, CalendarDate{2024, 6, 21}, p)
			if got := times.Isha.Sub(times.Maghrib); got != 90*time.Minute {
				t.Errorf("%s at %v: Isha - Maghrib = %v, want 90m", id, c, got)
			}
		}
	}
}

func TestCompute_IntervalIshaHonorsAdjustment(t *testing.T) {
	p := mustMethod(t, UmmAlQura).WithAdjustments(Adjustments{Isha: 30})
	times := mustCompute(t, mecca, CalendarDate{2024, 9, 1}, p)
	if got := times.Isha.Sub(times.Maghrib); got != 120*time.Minute {
		t.Errorf("Isha - Maghrib = %v, want 2h0m", got)
	}
}

func TestCompute_AdjustmentsShiftExactly(t *testing.T) {
	d := CalendarDate{2024, 11, 3}
	base := mustMethod(t, NorthAmerica)
	plain := mustCompute(t, london, d, base)
	moved := mustCompute(t, london, d, base.WithAdjustments(Adjustments{Fajr: -2, Asr: 5}))

	if got := moved.Asr.Sub(plain.Asr); got != 5*time.Minute {
		t.Errorf("Asr shift = %v, want 5m", got)
	}
	if got := moved.Fajr.Sub(plain.Fajr); got != -2*time.Minute {
		t.Errorf("Fajr shift = %v, want -2m", got)
	}
	if moved.Dhuhr != plain.Dhuhr {
		t.Errorf("Dhuhr moved without an adjustment")
	}
}

func TestCompute_Rounding(t *testing.T) {
	d := CalendarDate{2024, 2, 10}
	for _, r := range []Rounding{RoundNearest, RoundUp} {
		times := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague).WithRounding(r))
		for _, p := range times.Prayers() {
			if !p.Time.Truncate(time.Minute).Equal(p.Time) {
				t.Errorf("rounding %d: %s = %v is not on a whole minute", r, p.Name, p.Time)
			}
		}
	}

	exact := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague).WithRounding(RoundNone))
	nearest := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague))
	up := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague).WithRounding(RoundUp))
	if diff := nearest.Asr.Sub(exact.Asr); diff < -30*time.Second || diff > 30*time.Second {
		t.Errorf("nearest rounding moved Asr by %v", diff)
	}
	if up.Asr.Before(exact.Asr) {
		t.Errorf("RoundUp Asr %v before exact %v", up.Asr, exact.Asr)
	}
}

func TestCompute_MaghribAngle(t *testing.T) {
	d := CalendarDate{2024, 3, 1}
	tehran := mustCompute(t, mecca, d, mustMethod(t, Tehran))
	plain := mustCompute(t, mecca, d, NewParams(17.7, 14))

	if gap := tehran.Maghrib.Sub(plain.Maghrib); gap < 10*time.Minute || gap > 30*time.Minute {
		t.Errorf("Maghrib at 4.5 degrees is %v after sunset, want 10 to 30 minutes", gap)
	}
}

func TestCompute_MethodAdjustmentsApplied(t *testing.T) {
	d := CalendarDate{2024, 5, 5}
	raw := mustCompute(t, mecca, d, NewParams(18, 17))
	mwl := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague))
	if got := mwl.Dhuhr.Sub(raw.Dhuhr); got != time.Minute {
		t.Errorf("MWL Dhuhr offset = %v, want 1m", got)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestCompute_InvalidDate(t *testing.T) {
	_, err := Compute(mecca, CalendarDate{2023, 2, 29}, mustMethod(t, MuslimWorldLeague))
	var dateErr *InvalidDateError
	if !errors.As(err, &dateErr) {
		t.Fatalf("err = %v, want InvalidDateError", err)
	}
	if dateErr.Year != 2023 || dateErr.Month != 2 || dateErr.Day != 29 {
		t.Errorf("InvalidDateError fields = %+v", dateErr)
	}
}

func TestCompute_InvalidCoordinate(t *testing.T) {
	_, err := Compute(Coordinate{Latitude: 95}, CalendarDate{2024, 1, 1}, mustMethod(t, MuslimWorldLeague))
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("err = %v, want ErrInvalidCoordinate", err)
	}
}

func TestCompute_UnsolvableTwilight(t *testing.T) {
	_, err := Compute(arctic, CalendarDate{2024, 7, 15}, mustMethod(t, MuslimWorldLeague))
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.Is(err, ErrUnsolvableTime) {
		t.Errorf("err = %v, want ErrUnsolvableTime", err)
	}

	var u *UnsolvableTimeError
	if !errors.As(err, &u) {
		t.Fatalf("errors.As failed for %v", err)
	}
	if u.Date != (CalendarDate{2024, 7, 15}) || u.Latitude != 66 {
		t.Errorf("UnsolvableTimeError fields = %+v", u)
	}

	names := unsolvableNames(err)
	if !names[Fajr] || !names[Isha] {
		t.Errorf("unsolvable prayers = %v, want Fajr and Isha", names)
	}
	if names[Sunrise] || names[Maghrib] {
		t.Errorf("sunrise and sunset exist at 66N in mid July, got %v", names)
	}
}

func TestCompute_NoSunrise(t *testing.T) {
	_, err := Compute(Coordinate{Latitude: 70, Longitude: 19}, CalendarDate{2024, 6, 21},
		mustMethod(t, MuslimWorldLeague).WithHighLatitudeRule(MiddleOfTheNight))

	var u *UnsolvableTimeError
	if !errors.As(err, &u) {
		t.Fatalf("err = %v, want UnsolvableTimeError", err)
	}
	if names := unsolvableNames(err); !names[Sunrise] || !names[Maghrib] {
		t.Errorf("unsolvable prayers = %v, want Sunrise and Maghrib", names)
	}
}

func TestCompute_MidsummerArcticCircle(t *testing.T) {
	rules := []HighLatitudeRule{HighLatitudeNone, MiddleOfTheNight}
	for _, rule := range rules {
		t.Run(rule.String(), func(t *testing.T) {
			_, err := Compute(arctic, CalendarDate{2024, 6, 21},
				mustMethod(t, MuslimWorldLeague).WithHighLatitudeRule(rule))
			if !errors.Is(err, ErrUnsolvableTime) {
				t.Fatalf("err = %v, want ErrUnsolvableTime", err)
			}
			names := unsolvableNames(err)
			for _, name := range []string{Fajr, Sunrise, Isha} {
				if !names[name] {
					t.Errorf("%s not reported unsolvable, got %v", name, names)
				}
			}
			if names[Dhuhr] || names[Asr] {
				t.Errorf("Dhuhr and Asr exist at 66N, got %v", names)
			}
		})
	}
}

func TestCompute_NoSunriseIntervalIsha(t *testing.T) {
	_, err := Compute(arctic, CalendarDate{2024, 6, 21}, mustMethod(t, UmmAlQura))
	names := unsolvableNames(err)
	if !names[Sunrise] || !names[Fajr] {
		t.Errorf("unsolvable prayers = %v, want Fajr and Sunrise", names)
	}
	if names[Isha] {
		t.Error("interval Isha reported unsolvable")
	}
}

func TestCompute_HighLatitudeFallback(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		date  CalendarDate
	}{
		{"arctic July", arctic, CalendarDate{2024, 7, 15}},
		{"London solstice", london, CalendarDate{2024, 6, 21}},
	}
	rules := []HighLatitudeRule{MiddleOfTheNight, SeventhOfTheNight, TwilightAngle}

	for _, tt := range tests {
		for _, rule := range rules {
			t.Run(tt.name+"/"+rule.String(), func(t *testing.T) {
				p := mustMethod(t, MuslimWorldLeague).WithHighLatitudeRule(rule)
				times := mustCompute(t, tt.coord, tt.date, p)
				if !times.Fajr.Before(times.Sunrise) {
					t.Errorf("Fajr %v not before Sunrise %v", times.Fajr, times.Sunrise)
				}
				if !times.Maghrib.Before(times.Isha) {
					t.Errorf("Isha %v not after Maghrib %v", times.Isha, times.Maghrib)
				}
			})
		}
	}
}

func TestCompute_FallbackOnlyWhenUnsolvable(t *testing.T) {
	d := CalendarDate{2024, 6, 15}
	plain := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague))
	ruled := mustCompute(t, mecca, d, mustMethod(t, MuslimWorldLeague).WithHighLatitudeRule(SeventhOfTheNight))
	if plain.Fajr != ruled.Fajr || plain.Isha != ruled.Isha {
		t.Errorf("rule changed solvable twilight: %v/%v vs %v/%v", plain.Fajr, plain.Isha, ruled.Fajr, ruled.Isha)
	}
}

func TestCompute_SeventhOfNightPortion(t *testing.T) {
	d := CalendarDate{2024, 6, 21}
	times := mustCompute(t, london, d, mustMethod(t, MuslimWorldLeague).
		WithHighLatitudeRule(SeventhOfTheNight).WithRounding(RoundNone))
	next := mustCompute(t, london, d.AddDays(1), NewParams(10, 10).WithRounding(RoundNone))

	night := next.Sunrise.Sub(times.Maghrib)
	want := night / 7
	got := times.Isha.Sub(times.Maghrib)
	if diff := got - want; diff < -time.Second || diff > time.Second {
		t.Errorf("Isha offset = %v, want night/7 = %v", got, want)
	}
}
