package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7) starting today or at --date.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) > 0 {
				n, err := parseDays(args[0])
				if err != nil {
					return err
				}
				days = n
			}
			return runList(cmd, days)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'. Display a grid of prayer times for 7 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'. Display a grid of prayer times for 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 30)
		},
	}
}

// runList is the handler shared by list, week and month.
func runList(cmd *cobra.Command, days int) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	list, err := s.days(days)
	if err != nil {
		return err
	}

	if FlagJSON {
		return printListJSON(cmd.OutOrStdout(), s, list)
	}
	return printListRich(cmd.OutOrStdout(), s, list)
}

func printListRich(w io.Writer, s *session, list []prayer.Day) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("Prayer Times, %d Days", len(list)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.place.Label())
	fmt.Fprintf(w, "  %s\n", s.zoneName())
	fmt.Fprintln(w)

	headers := append([]string{"Date"}, s.settings.Prayers...)
	tbl := display.NewTable(headers)
	today := prayer.DateOf(s.now)

	for _, day := range list {
		selected, err := day.Select(s.settings.Prayers)
		if err != nil {
			return err
		}
		row := []string{day.Date.Time(s.loc).Format("Mon 02 Jan")}
		for _, p := range selected {
			row = append(row, s.clock(p.Time))
		}

		// Highlight today's row.
		style := display.RowNormal
		if day.Date == today {
			style = display.RowActive
		}
		tbl.AddStyledRow(row, style)
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Timings map[string]string `json:"timings"`
}

func printListJSON(w io.Writer, s *session, list []prayer.Day) error {
	out := listJSONOutput{Location: jsonLocation(s)}

	for _, day := range list {
		selected, err := day.Select(s.settings.Prayers)
		if err != nil {
			return err
		}
		timings := make(map[string]string, len(selected))
		for _, p := range selected {
			timings[strings.ToLower(p.Name)] = s.clock(p.Time)
		}
		out.Days = append(out.Days, listJSONDay{Date: day.Date.String(), Timings: timings})
	}

	return writeJSON(w, out)
}
