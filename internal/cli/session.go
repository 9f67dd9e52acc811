package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salat/internal/cache"
	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/geo"
	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

// Schedules not written for this long are removed from the cache.
const scheduleRetention = 7 * 24 * time.Hour

// Replaced in tests.
var (
	nowFunc     = time.Now
	newDetector = func() geo.Provider { return geo.NewIPDetector() }
)

// session is everything a command needs to compute and render schedules:
// resolved settings, the location, the display zone and the reference date.
type session struct {
	settings *config.Settings
	cache    *cache.Cache // nil when caching is disabled
	place    geo.Location
	loc      *time.Location
	now      time.Time
	date     prayer.CalendarDate
}

// newSession resolves the effective configuration and the location.
// Priority for the location: flags/env/config coordinates, then the cached
// geolocation, then IP geolocation.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg := effectiveConfig(cmd)
	settings, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	s := &session{settings: settings, loc: settings.Location}

	if !FlagNoCache {
		c, err := cache.New(settings.CacheDir)
		if err != nil {
			// Cache init failure is non-fatal; we just skip caching.
			log.Warnf("cache disabled: %v", err)
		} else {
			s.cache = c
			if n, err := c.Prune(time.Now().Add(-scheduleRetention)); err != nil {
				log.Warnf("failed to prune cache: %v", err)
			} else if n > 0 {
				log.Infof("pruned %d cached schedules", n)
			}
		}
	}

	place, err := s.locate(cmd.Context())
	if err != nil {
		return nil, err
	}
	s.place = *place
	log.Debugw("location resolved", "label", place.Label(), "timezone", place.Timezone)

	// A detected timezone applies only when none was configured.
	if cfg.Timezone == "" && place.Timezone != "" {
		tz, err := time.LoadLocation(place.Timezone)
		if err != nil {
			log.Warnw("ignoring detected timezone", "timezone", place.Timezone, "error", err)
		} else {
			s.loc = tz
		}
	}

	s.now = nowFunc().In(s.loc)
	s.date = prayer.DateOf(s.now)
	if flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), "date") {
		if s.date, err = prayer.ParseCalendarDate(FlagDate); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *session) locate(ctx context.Context) (*geo.Location, error) {
	if c := s.settings.Coordinate; c != nil {
		return geo.Static{Location: geo.Location{
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			City:      s.settings.City,
			Country:   s.settings.Country,
		}}.Locate(ctx)
	}

	detector := newDetector()
	if s.cache != nil {
		detector = cache.GeoProvider{Cache: s.cache, Next: detector}
	}
	return geo.Chain{detector}.Locate(ctx)
}

// isToday reports whether the session date is the current civil date.
func (s *session) isToday() bool {
	return s.date == prayer.DateOf(s.now)
}

// day returns the computed schedule for date, from the cache when possible.
func (s *session) day(date prayer.CalendarDate) (prayer.Day, error) {
	coord := s.place.Coordinate()
	key := cache.ScheduleKey(date, coord, s.settings.Params, s.settings.IshaEnd)

	if s.cache != nil {
		if entry := s.cache.LoadSchedule(key); entry != nil {
			log.Debugw("schedule cache hit", "date", date, "key", key)
			return entry.Day, nil
		}
	}

	sched, err := prayer.NewSchedule(coord, date, s.settings.Params, s.settings.IshaEnd)
	if err != nil {
		return prayer.Day{}, fmt.Errorf("%s: %w", date, err)
	}
	day := sched.Day()

	if s.cache != nil {
		if err := s.cache.SaveSchedule(key, day); err != nil {
			log.Warnf("failed to cache schedule: %v", err)
		}
	}
	return day, nil
}

// days returns n consecutive schedules starting at the session date.
func (s *session) days(n int) ([]prayer.Day, error) {
	out := make([]prayer.Day, 0, n)
	for i := 0; i < n; i++ {
		d, err := s.day(s.date.AddDays(i))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// clock formats t in the display zone.
func (s *session) clock(t time.Time) string {
	return s.clockIn(s.loc, t)
}

func (s *session) clockIn(loc *time.Location, t time.Time) string {
	return t.In(loc).Format(s.settings.ClockLayout)
}

// methodName returns the display name of the configured method.
func (s *session) methodName() string {
	return methodName(s.settings.Params.Method())
}

func methodName(id string) string {
	for _, m := range prayer.Methods() {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

// zoneName names the display zone, e.g. "Asia/Riyadh".
func (s *session) zoneName() string {
	return zoneName(s.loc, s.now)
}

func zoneName(loc *time.Location, now time.Time) string {
	if name := loc.String(); name != "Local" {
		return name
	}
	abbr, _ := now.In(loc).Zone()
	return abbr
}

// parseDays accepts a positive integer, "week" or "month".
func parseDays(v string) (int, error) {
	switch v {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days: %q (must be a positive integer, 'week', or 'month')", v)
	}
	return n, nil
}
