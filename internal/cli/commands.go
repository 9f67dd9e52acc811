package cli

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  salat config set latitude 21.4225\n  salat config set longitude 39.8262\n  salat config set method umm-al-qura\n  salat config set isha_end middle\n  salat config set adjustments isha=30,fajr=-2\n  salat config set prayers Fajr,Dhuhr,Asr,Maghrib,Isha",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the stored configuration next to the defaults.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	defaults := config.Defaults()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		if shown == "" {
			shown = display.Dim("(not set)")
			if def, _ := defaults.Get(key); def != "" {
				shown = display.Dim(fmt.Sprintf("(default: %s)", def))
			}
		} else if key == "method" {
			shown = formatMethodValue(val)
		}
		fmt.Fprintf(w, "  %-14s %s\n", key, shown)
	}

	fmt.Fprintf(w, "\n  %s\n", display.Gray("Environment overrides: "+config.EnvName("<key>")))
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	val, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to the identifier.
func formatMethodValue(val string) string {
	for _, m := range prayer.Methods() {
		if m.ID == val {
			return fmt.Sprintf("%s (%s)", val, m.Name)
		}
	}
	return val
}

// describeIsha renders a method's Isha rule: an angle or a fixed interval.
func describeIsha(p prayer.Params) string {
	if d := p.IshaInterval(); d > 0 {
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
	return fmt.Sprintf("%g°", p.IshaAngle())
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of built-in calculation methods and their twilight angles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			methods := prayer.Methods()

			if FlagJSON {
				type methodJSON struct {
					ID           string  `json:"id"`
					Name         string  `json:"name"`
					FajrAngle    float64 `json:"fajr_angle"`
					IshaAngle    float64 `json:"isha_angle,omitempty"`
					IshaInterval int     `json:"isha_interval,omitempty"`
				}
				out := make([]methodJSON, len(methods))
				for i, m := range methods {
					out[i] = methodJSON{
						ID:           m.ID,
						Name:         m.Name,
						FajrAngle:    m.Params.FajrAngle(),
						IshaAngle:    m.Params.IshaAngle(),
						IshaInterval: int(m.Params.IshaInterval().Minutes()),
					}
				}
				return writeJSON(w, out)
			}

			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			tbl := display.NewTable([]string{"ID", "Name", "Fajr", "Isha"})
			for _, m := range methods {
				tbl.AddRow([]string{m.ID, m.Name, fmt.Sprintf("%g°", m.Params.FajrAngle()), describeIsha(m.Params)})
			}
			fmt.Fprint(w, tbl.Render())
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Use --method <ID> to select a calculation method (default: %s).\n", prayer.MuslimWorldLeague)
			return nil
		},
	}
}
