package cli

import (
	"fmt"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

func newNightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "night",
		Short: "Show the middle and last third of the night",
		Long: "Divide the night between tonight's Maghrib and tomorrow's Fajr and show\n" +
			"its middle and the start of its last third.",
		Args: cobra.NoArgs,
		RunE: runNight,
	}
}

type nightJSON struct {
	Date      string `json:"date"`
	Maghrib   string `json:"maghrib"`
	Midnight  string `json:"midnight"`
	Lastthird string `json:"lastthird"`
	Fajr      string `json:"fajr"`
	Length    string `json:"length"`
}

func runNight(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	tonight, err := s.day(s.date)
	if err != nil {
		return err
	}
	tomorrow, err := s.day(s.date.AddDays(1))
	if err != nil {
		return err
	}

	maghrib, _ := tonight.Lookup(prayer.Maghrib)
	middle, _ := tonight.Lookup(prayer.Midnight)
	third, _ := tonight.Lookup(prayer.Lastthird)
	fajr, _ := tomorrow.Lookup(prayer.Fajr)
	length := prayer.FormatRemaining(fajr.Sub(maghrib))

	w := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(w, nightJSON{
			Date:      tonight.Date.String(),
			Maghrib:   s.clock(maghrib),
			Midnight:  s.clock(middle),
			Lastthird: s.clock(third),
			Fajr:      s.clock(fajr),
			Length:    length,
		})
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Night of "+tonight.Date.Time(s.loc).Format("Mon 02 Jan 2006")))
	fmt.Fprintf(w, "  %s\n", s.place.Label())
	fmt.Fprintln(w)
	fmt.Fprint(w, display.KeyValue([][2]string{
		{"Maghrib", s.clock(maghrib)},
		{nightLabel(prayer.Midnight), s.clock(middle)},
		{nightLabel(prayer.Lastthird), s.clock(third)},
		{"Fajr", s.clock(fajr)},
		{"Night length", length},
	}))
	fmt.Fprintln(w)
	return nil
}
