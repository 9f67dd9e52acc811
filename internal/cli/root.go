package cli

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags shared across all subcommands.
var (
	FlagLatitude     float64
	FlagLongitude    float64
	FlagTimezone     string
	FlagDate         string
	FlagMethod       string
	FlagMadhab       string
	FlagIshaEnd      string
	FlagHighLatitude string
	FlagAdjust       string
	FlagTimeFormat   string
	FlagPrayers      string
	FlagJSON         bool
	FlagCacheDir     string
	FlagNoCache      bool
	FlagDebug        bool
)

// dotenvFile is read from the working directory when present.
const dotenvFile = ".env"

// loadedConfig holds the config file merged with the environment, loaded
// during PersistentPreRunE. Available to all subcommand handlers.
var loadedConfig *config.Config

// NewRootCmd creates the root command for the salat CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "salat",
		Short: "Islamic prayer times, calculated locally",
		Long: "Compute the five daily prayer times, sunrise and the night divisions from\n" +
			"the sun's position. No network access is needed once a location is known.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(FlagDebug); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			env, err := config.FromEnv(dotenvFile)
			if err != nil {
				return err
			}
			merged := cfg.Merge(*env)
			loadedConfig = &merged
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude in degrees, north positive")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude in degrees, east positive")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone for display (default: detected or local)")
	pf.StringVar(&FlagDate, "date", "", "Date to calculate, YYYY-MM-DD (default: today)")
	pf.StringVar(&FlagMethod, "method", "", "Calculation method (see 'salat methods')")
	pf.StringVar(&FlagMadhab, "madhab", "", "Asr convention: standard or hanafi")
	pf.StringVar(&FlagIshaEnd, "isha-end", "", "End of the Isha window: "+strings.Join(prayer.IshaEndConventions(), ", "))
	pf.StringVar(&FlagHighLatitude, "high-latitude", "", "High-latitude rule: "+strings.Join(prayer.HighLatitudeRules(), ", "))
	pf.StringVar(&FlagAdjust, "adjust", "", "Minute offsets, e.g. isha=30,fajr=-2")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagPrayers, "prayers", "", "Comma-separated list of prayers to show")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/salat/)")
	pf.BoolVar(&FlagNoCache, "no-cache", false, "Do not read or write the cache")
	pf.BoolVar(&FlagDebug, "debug", false, "Log debug output to stderr")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newNightCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file.
// Defaults are applied later by config.Resolve.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) config.Config {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	var over config.Config
	if flagWasSet(flags, root, "latitude") {
		lat := FlagLatitude
		over.Latitude = &lat
	}
	if flagWasSet(flags, root, "longitude") {
		lon := FlagLongitude
		over.Longitude = &lon
	}
	for _, f := range []struct {
		name string
		dst  *string
		src  string
	}{
		{"timezone", &over.Timezone, FlagTimezone},
		{"method", &over.Method, FlagMethod},
		{"madhab", &over.Madhab, FlagMadhab},
		{"isha-end", &over.IshaEnd, FlagIshaEnd},
		{"high-latitude", &over.HighLatitude, FlagHighLatitude},
		{"adjust", &over.Adjustments, FlagAdjust},
		{"time-format", &over.TimeFormat, FlagTimeFormat},
		{"prayers", &over.Prayers, FlagPrayers},
		{"cache-dir", &over.CacheDir, FlagCacheDir},
	} {
		if flagWasSet(flags, root, f.name) {
			*f.dst = f.src
		}
	}

	return cfg.Merge(over)
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
