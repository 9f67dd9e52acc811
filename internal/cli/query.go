package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: " +
			strings.Join(prayer.AllPrayerNames, ", "),
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

type queryJSONEntry struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type queryJSONOutput struct {
	Prayer   string            `json:"prayer"`
	Location todayJSONLocation `json:"location"`
	Times    []queryJSONEntry  `json:"times"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := prayer.NormalizeName(args[0])
	if err != nil {
		return err
	}

	days := 1
	if cmd.Flags().Changed("days") {
		if days, err = parseDays(flagQueryDays); err != nil {
			return err
		}
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	list, err := s.days(days)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if FlagJSON {
		out := queryJSONOutput{Prayer: strings.ToLower(name), Location: jsonLocation(s)}
		for _, day := range list {
			at, _ := day.Lookup(name)
			out.Times = append(out.Times, queryJSONEntry{Date: day.Date.String(), Time: s.clock(at)})
		}
		return writeJSON(w, out)
	}

	if days == 1 {
		return printQuerySingle(w, s, list[0], name)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("%s, %d Days", name, days)))
	fmt.Fprintln(w)
	tbl := display.NewTable([]string{"Date", name})
	today := prayer.DateOf(s.now)
	for _, day := range list {
		at, _ := day.Lookup(name)
		style := display.RowNormal
		if day.Date == today {
			style = display.RowActive
		}
		tbl.AddStyledRow([]string{day.Date.Time(s.loc).Format("Mon 02 Jan"), s.clock(at)}, style)
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

func printQuerySingle(w io.Writer, s *session, day prayer.Day, name string) error {
	at, ok := day.Lookup(name)
	if !ok {
		return fmt.Errorf("no timing found for %s", name)
	}

	line := fmt.Sprintf("%s %s", name, s.clock(at))
	if s.isToday() && at.After(s.now) {
		remaining := prayer.FormatRemaining(at.Sub(s.now))
		line += " " + display.Dim(fmt.Sprintf("(in %s)", remaining))
	}
	fmt.Fprintln(w, line)
	return nil
}
