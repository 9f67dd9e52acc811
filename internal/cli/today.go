package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salat/internal/cache"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/geo"
	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/spf13/cobra"
)

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	day, err := s.day(s.date)
	if err != nil {
		// Show the last displayed schedule, marked stale, before failing.
		if last := s.lastSnapshot(); last != nil {
			if FlagJSON {
				_ = printTodayJSON(out, s, *last)
			} else {
				printTodayRich(out, s, *last)
			}
		}
		return err
	}

	snap := s.snapshot(day)
	if s.cache != nil {
		if err := s.cache.SaveLast(snap.entry()); err != nil {
			log.Warnf("failed to cache last schedule: %v", err)
		}
	}

	if FlagJSON {
		return printTodayJSON(out, s, snap)
	}
	printTodayRich(out, s, snap)
	return nil
}

// snapshot is a day together with the place and settings it was computed
// for, so a stale copy renders with its own header.
type snapshot struct {
	day     prayer.Day
	place   geo.Location
	loc     *time.Location
	method  string
	madhab  string
	ishaEnd string
	stale   bool
}

func (s *session) snapshot(day prayer.Day) snapshot {
	return snapshot{
		day:     day,
		place:   s.place,
		loc:     s.loc,
		method:  s.settings.Params.Method(),
		madhab:  s.settings.Params.Madhab().String(),
		ishaEnd: s.settings.IshaEnd.String(),
	}
}

func (v snapshot) entry() cache.LastEntry {
	place := v.place
	place.Timezone = v.loc.String()
	return cache.LastEntry{
		Day:      v.day,
		Location: place,
		Method:   v.method,
		Madhab:   v.madhab,
		IshaEnd:  v.ishaEnd,
	}
}

// lastSnapshot restores the schedule saved by the last successful run,
// or nil when there is none.
func (s *session) lastSnapshot() *snapshot {
	if s.cache == nil {
		return nil
	}
	last := s.cache.LoadLast()
	if last == nil {
		return nil
	}
	loc, err := time.LoadLocation(last.Location.Timezone)
	if err != nil {
		log.Warnw("ignoring last schedule", "timezone", last.Location.Timezone, "error", err)
		return nil
	}
	log.Debugw("rendering stale schedule", "date", last.Day.Date, "place", last.Location.Label(), "saved_at", last.SavedAt)
	return &snapshot{
		day:     last.Day,
		place:   last.Location,
		loc:     loc,
		method:  last.Method,
		madhab:  last.Madhab,
		ishaEnd: last.IshaEnd,
		stale:   true,
	}
}

// current reports whether v is the live schedule for the session date.
func (v snapshot) current(s *session) bool {
	return !v.stale && s.isToday() && v.day.Date == s.date
}

// rowStyles classifies each interval as past, active or upcoming.
// Only a schedule for the current date has past or active rows.
func rowStyles(day prayer.Day, now time.Time, today bool) []display.RowStyle {
	styles := make([]display.RowStyle, len(day.Intervals))
	if !today {
		return styles
	}
	active := day.Active(now)
	for i, iv := range day.Intervals {
		switch {
		case i == active:
			styles[i] = display.RowActive
		case !iv.End.After(now):
			styles[i] = display.RowPast
		}
	}
	return styles
}

// printTodayRich renders the colored terminal output for one day's schedule.
func printTodayRich(w io.Writer, s *session, v snapshot) {
	today := v.current(s)
	clock := func(t time.Time) string { return s.clockIn(v.loc, t) }

	fmt.Fprintln(w)
	title := display.Bold("Prayer Times")
	if v.stale {
		title += "  " + display.Yellow("(stale: last computed schedule)")
	}
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", display.Cyan(v.place.Label()))
	fmt.Fprintf(w, "  %s\n", zoneName(v.loc, s.now))
	fmt.Fprintf(w, "  %s\n", v.day.Date.Time(v.loc).Format("Mon 02 Jan 2006"))
	fmt.Fprintf(w, "  %s\n", display.Dim(fmt.Sprintf("%s, %s", methodName(v.method), v.madhab)))
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Prayer", "Start", "End"})
	for i, style := range rowStyles(v.day, s.now, today) {
		iv := v.day.Intervals[i]
		tbl.AddStyledRow([]string{iv.Name, clock(iv.Start), clock(iv.End)}, style)
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	var night [][2]string
	for _, name := range []string{prayer.Midnight, prayer.Lastthird} {
		if at, ok := v.day.Lookup(name); ok {
			night = append(night, [2]string{nightLabel(name), clock(at)})
		}
	}
	fmt.Fprint(w, display.KeyValue(night))

	if today {
		if next := nextInDay(v.day, s.now); next != nil {
			remaining := prayer.FormatRemaining(prayer.TimeRemaining(*next, s.now))
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  %s\n", display.Accent(fmt.Sprintf("%s in %s", next.Name, remaining)))
		}
	}

	fmt.Fprintln(w)
}

// nextInDay returns the next interval start after now, or nil.
func nextInDay(day prayer.Day, now time.Time) *prayer.Prayer {
	starts := make([]prayer.Prayer, len(day.Intervals))
	for i, iv := range day.Intervals {
		starts[i] = prayer.Prayer{Name: iv.Name, Time: iv.Start}
	}
	return prayer.NextPrayer(starts, now)
}

func nightLabel(name string) string {
	switch name {
	case prayer.Midnight:
		return "Middle of the night"
	case prayer.Lastthird:
		return "Last third of the night"
	}
	return name
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location  todayJSONLocation   `json:"location"`
	Date      string              `json:"date"`
	Method    string              `json:"method"`
	Madhab    string              `json:"madhab"`
	IshaEnd   string              `json:"isha_end"`
	Timings   map[string]string   `json:"timings"`
	Intervals []todayJSONInterval `json:"intervals"`
	Current   string              `json:"current,omitempty"`
	Next      *todayJSONNext      `json:"next,omitempty"`
	Stale     bool                `json:"stale,omitempty"`
}

type todayJSONLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type todayJSONInterval struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

func jsonLocation(s *session) todayJSONLocation {
	return placeJSON(s.place, zoneName(s.loc, s.now))
}

func placeJSON(place geo.Location, zone string) todayJSONLocation {
	return todayJSONLocation{
		City:      place.City,
		Country:   place.Country,
		Timezone:  zone,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
	}
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, s *session, v snapshot) error {
	out := todayJSON{
		Location: placeJSON(v.place, zoneName(v.loc, s.now)),
		Date:     v.day.Date.String(),
		Method:   v.method,
		Madhab:   v.madhab,
		IshaEnd:  v.ishaEnd,
		Timings:  make(map[string]string),
		Stale:    v.stale,
	}

	selected, err := v.day.Select(s.settings.Prayers)
	if err != nil {
		return err
	}
	for _, p := range selected {
		out.Timings[strings.ToLower(p.Name)] = s.clockIn(v.loc, p.Time)
	}
	for _, iv := range v.day.Intervals {
		out.Intervals = append(out.Intervals, todayJSONInterval{
			Name:  strings.ToLower(iv.Name),
			Start: iv.Start.In(v.loc).Format(time.RFC3339),
			End:   iv.End.In(v.loc).Format(time.RFC3339),
		})
	}

	if v.current(s) {
		if i := v.day.Active(s.now); i >= 0 {
			out.Current = strings.ToLower(v.day.Intervals[i].Name)
		}
		if next := nextInDay(v.day, s.now); next != nil {
			out.Next = &todayJSONNext{
				Prayer:    strings.ToLower(next.Name),
				Time:      s.clock(next.Time),
				Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*next, s.now)),
			}
		}
	}

	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
