// Package config provides persistent configuration for the salat CLI.
//
// Configuration is stored as JSON at ~/.config/salat/config.json
// (XDG-compliant). SALAT_* environment variables, optionally loaded from a
// .env file, override the file. The merge priority is:
// CLI flags > environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve without system zoneinfo

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

const (
	configDirName  = "salat"
	configFileName = "config.json"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"latitude", "longitude",
	"city", "country",
	"timezone",
	"method", "madhab",
	"isha_end", "high_latitude",
	"adjustments",
	"time_format",
	"prayers",
	"cache_dir",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	Latitude     *float64 `json:"latitude,omitempty"` // pointer so the equator is distinguishable from "not set"
	Longitude    *float64 `json:"longitude,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	Timezone     string   `json:"timezone,omitempty"`
	Method       string   `json:"method,omitempty"`
	Madhab       string   `json:"madhab,omitempty"`
	IshaEnd      string   `json:"isha_end,omitempty"`
	HighLatitude string   `json:"high_latitude,omitempty"`
	Adjustments  string   `json:"adjustments,omitempty"` // e.g. "isha=30,fajr=-2"
	TimeFormat   string   `json:"time_format,omitempty"` // "12h" or "24h"
	Prayers      string   `json:"prayers,omitempty"`     // comma-separated list
	CacheDir     string   `json:"cache_dir,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Method:       prayer.MuslimWorldLeague,
		Madhab:       prayer.Standard.String(),
		IshaEnd:      prayer.LastThirdOfNight.String(),
		HighLatitude: prayer.MiddleOfTheNight.String(),
		TimeFormat:   "24h",
	}
}

// Merge returns c with every field that is set in over replaced.
func (c Config) Merge(over Config) Config {
	if over.Latitude != nil {
		c.Latitude = over.Latitude
	}
	if over.Longitude != nil {
		c.Longitude = over.Longitude
	}
	for _, f := range []struct{ dst, src *string }{
		{&c.City, &over.City},
		{&c.Country, &over.Country},
		{&c.Timezone, &over.Timezone},
		{&c.Method, &over.Method},
		{&c.Madhab, &over.Madhab},
		{&c.IshaEnd, &over.IshaEnd},
		{&c.HighLatitude, &over.HighLatitude},
		{&c.Adjustments, &over.Adjustments},
		{&c.TimeFormat, &over.TimeFormat},
		{&c.Prayers, &over.Prayers},
		{&c.CacheDir, &over.CacheDir},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	return c
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "latitude":
		v, err := parseDegrees("latitude", value, 90)
		if err != nil {
			return err
		}
		c.Latitude = &v
	case "longitude":
		v, err := parseDegrees("longitude", value, 180)
		if err != nil {
			return err
		}
		c.Longitude = &v
	case "city":
		c.City = value
	case "country":
		c.Country = value
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "method":
		if _, err := prayer.LookupMethod(value); err != nil {
			return fmt.Errorf("invalid method %q: must be one of %s", value, strings.Join(prayer.MethodIDs(), ", "))
		}
		c.Method = value
	case "madhab":
		m, err := prayer.ParseMadhab(value)
		if err != nil {
			return err
		}
		c.Madhab = m.String()
	case "isha_end":
		e, err := prayer.ParseIshaEnd(value)
		if err != nil {
			return err
		}
		c.IshaEnd = e.String()
	case "high_latitude":
		r, err := prayer.ParseHighLatitudeRule(value)
		if err != nil {
			return err
		}
		c.HighLatitude = r.String()
	case "adjustments":
		if _, err := ParseAdjustments(value); err != nil {
			return err
		}
		c.Adjustments = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "prayers":
		names, err := prayer.ParseNames(value)
		if err != nil {
			return fmt.Errorf("invalid prayers list: %w", err)
		}
		c.Prayers = strings.Join(names, ",")
	case "cache_dir":
		c.CacheDir = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "latitude":
		return formatDegrees(c.Latitude), nil
	case "longitude":
		return formatDegrees(c.Longitude), nil
	case "city":
		return c.City, nil
	case "country":
		return c.Country, nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		return c.Method, nil
	case "madhab":
		return c.Madhab, nil
	case "isha_end":
		return c.IshaEnd, nil
	case "high_latitude":
		return c.HighLatitude, nil
	case "adjustments":
		return c.Adjustments, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "cache_dir":
		return c.CacheDir, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func parseDegrees(key, value string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, value)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s %q: must be between %g and %g", key, value, -limit, limit)
	}
	return v, nil
}

func formatDegrees(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ParseAdjustments parses "name=minutes" pairs such as "isha=30,fajr=-2".
// An empty string yields no adjustments.
func ParseAdjustments(s string) (prayer.Adjustments, error) {
	var adj prayer.Adjustments
	if strings.TrimSpace(s) == "" {
		return adj, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return adj, fmt.Errorf("invalid adjustment %q: want name=minutes", pair)
		}
		mins, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return adj, fmt.Errorf("invalid adjustment %q: minutes must be an integer", pair)
		}
		canonical, err := prayer.NormalizeName(name)
		if err != nil {
			return adj, err
		}
		switch canonical {
		case prayer.Fajr:
			adj.Fajr = mins
		case prayer.Sunrise:
			adj.Sunrise = mins
		case prayer.Dhuhr:
			adj.Dhuhr = mins
		case prayer.Asr:
			adj.Asr = mins
		case prayer.Maghrib:
			adj.Maghrib = mins
		case prayer.Isha:
			adj.Isha = mins
		default:
			return adj, fmt.Errorf("invalid adjustment %q: %s cannot be adjusted", pair, canonical)
		}
	}
	return adj, nil
}
