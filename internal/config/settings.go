package config

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// Settings is a fully resolved configuration ready for calculation.
type Settings struct {
	Coordinate  *prayer.Coordinate // nil when no coordinates are configured
	City        string
	Country     string
	Location    *time.Location
	Params      prayer.Params
	IshaEnd     prayer.IshaEnd
	ClockLayout string
	Prayers     []string
	CacheDir    string
}

// Resolve validates c and converts it into Settings. Unset fields fall back
// to Defaults. A missing timezone resolves to time.Local.
func (c Config) Resolve() (*Settings, error) {
	c = Defaults().Merge(c)

	s := &Settings{
		City:        c.City,
		Country:     c.Country,
		Location:    time.Local,
		ClockLayout: prayer.ClockLayout(c.TimeFormat),
		Prayers:     prayer.DefaultPrayerNames,
		CacheDir:    c.CacheDir,
	}

	if (c.Latitude == nil) != (c.Longitude == nil) {
		return nil, fmt.Errorf("latitude and longitude must be set together")
	}
	if c.Latitude != nil {
		coord := prayer.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}
		if err := coord.Validate(); err != nil {
			return nil, err
		}
		s.Coordinate = &coord
	}

	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
		s.Location = loc
	}

	params, err := prayer.LookupMethod(c.Method)
	if err != nil {
		return nil, err
	}
	madhab, err := prayer.ParseMadhab(c.Madhab)
	if err != nil {
		return nil, err
	}
	rule, err := prayer.ParseHighLatitudeRule(c.HighLatitude)
	if err != nil {
		return nil, err
	}
	adj, err := ParseAdjustments(c.Adjustments)
	if err != nil {
		return nil, err
	}
	s.Params = params.WithMadhab(madhab).WithHighLatitudeRule(rule).WithAdjustments(adj)

	if s.IshaEnd, err = prayer.ParseIshaEnd(c.IshaEnd); err != nil {
		return nil, err
	}

	if c.Prayers != "" {
		if s.Prayers, err = prayer.ParseNames(c.Prayers); err != nil {
			return nil, err
		}
	}

	return s, nil
}
