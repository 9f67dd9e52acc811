// Package cache stores geolocation results and computed schedules as JSON
// files so repeated invocations (a tmux status line polls every few seconds)
// skip the network and the solar math.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/salat/internal/geo"
	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

const (
	scheduleCacheFile = "schedule_%s.json" // keyed by hash
	lastScheduleFile  = "last.json"
	geoCacheFile      = "geolocation.json"
	geoTTL            = 24 * time.Hour
)

// Cache provides file-based caching for schedules and geolocation data.
type Cache struct {
	dir string
}

// ScheduleEntry stores one computed day along with the key it was built for.
type ScheduleEntry struct {
	Key     string     `json:"key"`
	Day     prayer.Day `json:"day"`
	SavedAt time.Time  `json:"saved_at"`
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to $XDG_CACHE_HOME/salat or ~/.cache/salat.
func New(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("cannot determine home directory: %w", err)
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "salat")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// Dir returns the directory the cache writes to.
func (c *Cache) Dir() string {
	return c.dir
}

// ScheduleKey builds a deterministic hash from every input that affects a
// schedule, so different locations or settings get separate files.
func ScheduleKey(date prayer.CalendarDate, coord prayer.Coordinate, params prayer.Params, end prayer.IshaEnd) string {
	adj := params.Adjustments()
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%g|%g|%d|%g|%s|%s|%d|%d,%d,%d,%d,%d,%d|%s",
		date, coord.Latitude, coord.Longitude,
		params.Method(), params.FajrAngle(), params.IshaAngle(), int(params.IshaInterval()/time.Minute),
		params.MaghribAngle(), params.Madhab(), params.HighLatitudeRule(), params.Rounding(),
		adj.Fajr, adj.Sunrise, adj.Dhuhr, adj.Asr, adj.Maghrib, adj.Isha,
		end)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}

// LoadSchedule attempts to read a cached day for key.
// Returns nil if the cache is missing, unreadable or built for another key.
func (c *Cache) LoadSchedule(key string) *ScheduleEntry {
	data, err := os.ReadFile(c.schedulePath(key))
	if err != nil {
		return nil
	}

	var entry ScheduleEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Debugw("discarding unreadable schedule cache", "key", key, "error", err)
		return nil
	}
	if entry.Key != key {
		return nil
	}

	return &entry
}

// SaveSchedule writes a computed day to the cache.
func (c *Cache) SaveSchedule(key string, day prayer.Day) error {
	entry := ScheduleEntry{
		Key:     key,
		Day:     day,
		SavedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(c.schedulePath(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// LastEntry is the last schedule that was displayed, together with the
// place and settings it was computed for.
type LastEntry struct {
	Day      prayer.Day   `json:"day"`
	Location geo.Location `json:"location"` // Timezone holds the display zone name
	Method   string       `json:"method"`
	Madhab   string       `json:"madhab"`
	IshaEnd  string       `json:"isha_end"`
	SavedAt  time.Time    `json:"saved_at"`
}

// SaveLast replaces the last displayed schedule.
func (c *Cache) SaveLast(entry LastEntry) error {
	if entry.SavedAt.IsZero() {
		entry.SavedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(filepath.Join(c.dir, lastScheduleFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// LoadLast returns the schedule stored by SaveLast, or nil if there is none.
func (c *Cache) LoadLast() *LastEntry {
	data, err := os.ReadFile(filepath.Join(c.dir, lastScheduleFile))
	if err != nil {
		return nil
	}

	var entry LastEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Debugw("discarding unreadable last schedule", "error", err)
		return nil
	}
	if len(entry.Day.Intervals) == 0 {
		return nil
	}
	return &entry
}

// Prune removes schedule files last written before cutoff.
func (c *Cache) Prune(cutoff time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, fmt.Sprintf(scheduleCacheFile, "*")))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range matches {
		fi, err := os.Stat(path)
		if err != nil || !fi.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) schedulePath(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf(scheduleCacheFile, key))
}

// LoadGeo attempts to read a cached geolocation result.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadGeo() *geo.Location {
	path := filepath.Join(c.dir, geoCacheFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entry GeoCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	if time.Since(entry.CachedAt) > geoTTL {
		return nil
	}

	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	path := filepath.Join(c.dir, geoCacheFile)

	entry := GeoCacheEntry{
		Location: *loc,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal geo cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write geo cache: %w", err)
	}

	return nil
}

// GeoProvider answers from the geolocation cache and falls back to Next,
// caching whatever Next returns.
type GeoProvider struct {
	Cache *Cache
	Next  geo.Provider
}

func (p GeoProvider) Locate(ctx context.Context) (*geo.Location, error) {
	if loc := p.Cache.LoadGeo(); loc != nil {
		log.Debugw("using cached location", "city", loc.City, "lat", loc.Latitude, "lon", loc.Longitude)
		return loc, nil
	}

	loc, err := p.Next.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.SaveGeo(loc); err != nil {
		log.Warnf("failed to cache location: %v", err)
	}
	return loc, nil
}
