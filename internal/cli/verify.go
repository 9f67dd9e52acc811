package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/reference"
	"github.com/spf13/cobra"
)

var (
	flagVerifyDays      string
	flagVerifyURL       string
	flagVerifyTolerance int
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare calculated times with the Al Adhan API",
		Long: "Fetch the same days from the Al Adhan web service and report how far the\n" +
			"local calculation deviates, per prayer, in minutes.",
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	cmd.Flags().StringVar(&flagVerifyDays, "days", "1", "Number of days to compare (or 'week'/'month')")
	cmd.Flags().StringVar(&flagVerifyURL, "url", "", "Reference API base URL")
	cmd.Flags().IntVar(&flagVerifyTolerance, "tolerance", 0, "Fail when any deviation exceeds this many minutes (0 disables)")
	_ = cmd.Flags().MarkHidden("url")

	return cmd
}

type verifyJSON struct {
	Deviations []reference.Deviation `json:"deviations"`
	Summary    []reference.Stats     `json:"summary"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	days, err := parseDays(flagVerifyDays)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	client := reference.NewClient()
	if flagVerifyURL != "" {
		client.BaseURL = flagVerifyURL
	}
	tz := ""
	if name := s.loc.String(); name != "Local" {
		tz = name
	}

	var (
		devs  []reference.Deviation
		hijri string
	)
	for i := 0; i < days; i++ {
		date := s.date.AddDays(i)
		local, err := s.day(date)
		if err != nil {
			return err
		}

		resp, err := client.FetchTimings(cmd.Context(), reference.Request{
			Date:       date,
			Coordinate: s.place.Coordinate(),
			Params:     s.settings.Params,
			Timezone:   tz,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch reference times for %s: %w", date, err)
		}
		if i == 0 {
			hijri = resp.Data.Date.Hijri.Format()
		}
		remote, err := resp.Prayers(date)
		if err != nil {
			return err
		}
		devs = append(devs, reference.Compare(local, remote)...)
	}
	log.Infow("reference comparison done", "days", days, "samples", len(devs))

	summary := reference.Summarize(devs)
	w := cmd.OutOrStdout()
	if FlagJSON {
		if err := writeJSON(w, verifyJSON{Deviations: devs, Summary: summary}); err != nil {
			return err
		}
	} else {
		printVerify(w, s, days, hijri, summary)
	}

	if flagVerifyTolerance > 0 {
		limit := time.Duration(flagVerifyTolerance) * time.Minute
		for _, st := range summary {
			if st.MaxAbs > limit {
				return fmt.Errorf("%s deviates by up to %s (tolerance %s)", st.Name, st.MaxAbs, limit)
			}
		}
	}
	return nil
}

func printVerify(w io.Writer, s *session, days int, hijri string, summary []reference.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("Deviation from Al Adhan, %d Days", days)))
	fmt.Fprintf(w, "  %s, %s\n", s.place.Label(), s.methodName())
	if hijri != "" {
		fmt.Fprintf(w, "  %s %s\n", s.date.Time(s.loc).Format("02 Jan 2006"), display.Dim("("+hijri+")"))
	}
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Prayer", "Mean", "Std dev", "Max", "Within 1m"})
	var worst time.Duration
	for _, st := range summary {
		if st.MaxAbs > worst {
			worst = st.MaxAbs
		}
		tbl.AddRow([]string{
			st.Name,
			minutes(st.Mean),
			fmt.Sprintf("%.1f", st.StdDev.Minutes()),
			fmt.Sprintf("%.1f", st.MaxAbs.Minutes()),
			fmt.Sprintf("%d/%d", st.Within1, st.Count),
		})
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", severity(worst))
}

func minutes(d time.Duration) string {
	return fmt.Sprintf("%+.1f", d.Minutes())
}

// severity summarizes the largest deviation: green up to a minute, yellow
// up to three, red beyond.
func severity(d time.Duration) string {
	text := fmt.Sprintf("Largest deviation %.1f min", d.Minutes())
	switch {
	case d <= time.Minute:
		return display.Green(text)
	case d <= 3*time.Minute:
		return display.Yellow(text)
	default:
		return display.Red(text)
	}
}
