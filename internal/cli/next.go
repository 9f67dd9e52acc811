package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nSuited to status lines such as tmux.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	next, err := upcoming(s, s.now)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatOutput(*next, s.now, flagFormat, s.settings.ClockLayout))
	return nil
}

// upcoming finds the first selected prayer after now, looking at tomorrow
// once today's have all passed.
func upcoming(s *session, now time.Time) (*prayer.Prayer, error) {
	for _, date := range []prayer.CalendarDate{s.date, s.date.AddDays(1)} {
		day, err := s.day(date)
		if err != nil {
			return nil, err
		}
		selected, err := day.Select(s.settings.Prayers)
		if err != nil {
			return nil, err
		}
		// Night divisions fall after midnight, so the selection is not
		// necessarily chronological.
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Time.Before(selected[j].Time)
		})
		if next := prayer.NextPrayer(selected, now); next != nil {
			return next, nil
		}
	}
	return nil, fmt.Errorf("could not determine next prayer")
}
