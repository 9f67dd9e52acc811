package reference

import (
	"testing"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

func TestResponse_Prayers(t *testing.T) {
	resp := sampleResponse()
	ps, err := resp.Prayers(meccaDate)
	if err != nil {
		t.Fatalf("Prayers error: %v", err)
	}
	if len(ps) != len(prayer.AllPrayerNames) {
		t.Fatalf("got %d prayers, want %d", len(ps), len(prayer.AllPrayerNames))
	}

	riyadh := time.FixedZone("+03", 3*60*60)
	want := map[string]time.Time{
		prayer.Fajr:      time.Date(2024, 6, 15, 4, 11, 0, 0, riyadh),
		prayer.Isha:      time.Date(2024, 6, 15, 20, 35, 0, 0, riyadh),
		prayer.Midnight:  time.Date(2024, 6, 15, 23, 38, 0, 0, riyadh),
		prayer.Lastthird: time.Date(2024, 6, 16, 1, 8, 0, 0, riyadh),
	}
	for _, p := range ps {
		if w, ok := want[p.Name]; ok && !p.Time.Equal(w) {
			t.Errorf("%s = %v, want %v", p.Name, p.Time, w)
		}
	}
}

func TestResponse_PrayersBadInput(t *testing.T) {
	resp := sampleResponse()
	resp.Data.Timings.Asr = "3pm"
	if _, err := resp.Prayers(meccaDate); err == nil {
		t.Error("expected parse error for malformed time")
	}

	resp = sampleResponse()
	resp.Data.Meta.Timezone = "Nowhere/Town"
	if _, err := resp.Prayers(meccaDate); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestParseClock(t *testing.T) {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"05:17", time.Date(2024, 6, 15, 5, 17, 0, 0, time.UTC), false},
		{"19:10 (BST)", time.Date(2024, 6, 15, 19, 10, 0, 0, time.UTC), false},
		{" 00:00 ", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"25:00", time.Time{}, true},
		{"noon", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.raw, day, time.UTC)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClock(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseClock(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	local := prayer.Day{
		Date: meccaDate,
		Prayers: []prayer.Prayer{
			{Name: prayer.Dhuhr, Time: base},
			{Name: prayer.Asr, Time: base.Add(3 * time.Hour)},
		},
	}
	remote := []prayer.Prayer{
		{Name: prayer.Dhuhr, Time: base.Add(-2 * time.Minute)},
		{Name: prayer.Asr, Time: base.Add(3*time.Hour + time.Minute)},
		{Name: "Imsak", Time: base},
	}

	devs := Compare(local, remote)
	if len(devs) != 2 {
		t.Fatalf("got %d deviations, want 2", len(devs))
	}
	if devs[0].Name != prayer.Dhuhr || devs[0].Delta != 2*time.Minute {
		t.Errorf("Dhuhr deviation = %+v", devs[0])
	}
	if devs[1].Delta != -time.Minute {
		t.Errorf("Asr delta = %v, want -1m", devs[1].Delta)
	}
	if devs[0].Date != meccaDate {
		t.Errorf("Date = %v, want %v", devs[0].Date, meccaDate)
	}
}

func TestSummarize(t *testing.T) {
	devs := []Deviation{
		{Name: prayer.Asr, Delta: 2 * time.Minute},
		{Name: prayer.Fajr, Delta: time.Minute},
		{Name: prayer.Fajr, Delta: -time.Minute},
		{Name: prayer.Fajr, Delta: 3 * time.Minute},
	}

	stats := Summarize(devs)
	if len(stats) != 2 {
		t.Fatalf("got %d groups, want 2", len(stats))
	}
	if stats[0].Name != prayer.Fajr || stats[1].Name != prayer.Asr {
		t.Errorf("groups out of order: %s, %s", stats[0].Name, stats[1].Name)
	}

	fajr := stats[0]
	if fajr.Count != 3 {
		t.Errorf("Count = %d, want 3", fajr.Count)
	}
	if fajr.Mean != time.Minute {
		t.Errorf("Mean = %v, want 1m", fajr.Mean)
	}
	if fajr.MaxAbs != 3*time.Minute {
		t.Errorf("MaxAbs = %v, want 3m", fajr.MaxAbs)
	}
	if fajr.Within1 != 2 {
		t.Errorf("Within1 = %d, want 2", fajr.Within1)
	}
	// Sample standard deviation of {60, -60, 180} seconds is 120s.
	if fajr.StdDev != 2*time.Minute {
		t.Errorf("StdDev = %v, want 2m", fajr.StdDev)
	}

	if stats[1].StdDev != 0 {
		t.Errorf("single-sample StdDev = %v, want 0", stats[1].StdDev)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil); len(got) != 0 {
		t.Errorf("Summarize(nil) = %v, want empty", got)
	}
}

func TestCompare_AgainstLocalSchedule(t *testing.T) {
	s, err := prayer.NewSchedule(mecca, meccaDate, mwl(t), prayer.LastThirdOfNight)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	resp := sampleResponse()
	remote, err := resp.Prayers(meccaDate)
	if err != nil {
		t.Fatalf("Prayers: %v", err)
	}

	for _, d := range Compare(s.Day(), remote) {
		switch d.Name {
		case prayer.Dhuhr, prayer.Sunrise, prayer.Maghrib:
			if d.Delta < -5*time.Minute || d.Delta > 5*time.Minute {
				t.Errorf("%s differs from the reference by %v", d.Name, d.Delta)
			}
		}
	}
}
