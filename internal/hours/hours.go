// Package hours evaluates free-form weekly opening-hours lines such as
// "Mon-Sat: 10:30 - 19:00" against the business's operating timezone.
package hours

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	sferrors "storefront/internal/errors"
)

// DefaultTimezone is the single timezone all shops operate in.
const DefaultTimezone = "Europe/Brussels"

var (
	rejectPhrases = []string{"coming soon", "temporarily closed"}
	timeRange     = regexp.MustCompile(`\d\s*-\s*\d`)
	remark        = regexp.MustCompile(`\([^)]*\)`)
	dashReplacer  = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// Mon=1 .. Sun=7.
var dayIndex = map[string]int{
	"mon": 1,
	"tue": 2,
	"wed": 3,
	"thu": 4,
	"fri": 5,
	"sat": 6,
	"sun": 7,
}

var dayNames = [...]string{"", "mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Window is one opening window in minutes since midnight, half-open: the
// shop is open at Start and closed at End.
type Window struct {
	Start int
	End   int
}

// Contains reports whether minute falls inside [Start, End).
func (w Window) Contains(minute int) bool {
	return minute >= w.Start && minute < w.End
}

func (w Window) String() string {
	return clock(w.Start) + "-" + clock(w.End)
}

// MarshalJSON renders the window as {"opens":"10:30","closes":"19:00"}.
func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Opens  string `json:"opens"`
		Closes string `json:"closes"`
	}{clock(w.Start), clock(w.End)})
}

// Status is the evaluated state of a schedule at one instant.
type Status struct {
	Open     bool     `json:"open"`
	Today    []Window `json:"today"`
	ClosesAt string   `json:"closes_at,omitempty"`
}

// Evaluator answers open/closed questions in a fixed location, whatever the
// location of the time values it is given.
type Evaluator struct {
	loc *time.Location
}

// New returns an evaluator for the named IANA timezone. An empty name
// selects DefaultTimezone.
func New(tz string) (*Evaluator, error) {
	if strings.TrimSpace(tz) == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", sferrors.ErrInvalidTimezone, tz, err)
	}
	return &Evaluator{loc: loc}, nil
}

// Location returns the evaluator's operating timezone.
func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// IsOpen reports whether a shop with the given schedule is open at now.
func (e *Evaluator) IsOpen(schedule []string, now time.Time) bool {
	return e.Status(schedule, now).Open
}

// Status evaluates schedule at now. Anything ambiguous or malformed evaluates
// to closed.
func (e *Evaluator) Status(schedule []string, now time.Time) Status {
	status := Status{Today: []Window{}}
	if rejected(schedule) {
		return status
	}

	local := now.In(e.loc)
	day := isoWeekday(local.Weekday())
	line, ok := lineFor(schedule, day)
	if !ok {
		return status
	}
	windows := parseWindows(line)
	status.Today = windows

	minute := local.Hour()*60 + local.Minute()
	for _, window := range windows {
		if window.Contains(minute) {
			status.Open = true
			status.ClosesAt = clock(window.End)
			break
		}
	}
	return status
}

func rejected(schedule []string) bool {
	var text strings.Builder
	for _, line := range schedule {
		if strings.TrimSpace(line) == "" {
			continue
		}
		text.WriteString(strings.ToLower(dashReplacer.Replace(line)))
		text.WriteByte('\n')
	}
	joined := text.String()
	if joined == "" {
		return true
	}
	for _, phrase := range rejectPhrases {
		if strings.Contains(joined, phrase) {
			return true
		}
	}
	return strings.Contains(joined, "closed") && !timeRange.MatchString(joined)
}

// lineFor returns the time portion of the line covering day. Lines naming
// the day directly win over day ranges.
func lineFor(schedule []string, day int) (string, bool) {
	type split struct{ days, times string }
	lines := make([]split, 0, len(schedule))
	for _, raw := range schedule {
		line := dashReplacer.Replace(raw)
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		lines = append(lines, split{
			days:  strings.ToLower(strings.TrimSpace(line[:colon])),
			times: strings.TrimSpace(line[colon+1:]),
		})
	}

	name := shortName(day)
	for _, line := range lines {
		if strings.Contains(line.days, name) {
			return line.times, true
		}
	}
	for _, line := range lines {
		if inRange(line.days, day) {
			return line.times, true
		}
	}
	return "", false
}

func inRange(days string, day int) bool {
	parts := strings.Split(days, "-")
	if len(parts) != 2 {
		return false
	}
	from, okFrom := dayNumber(parts[0])
	to, okTo := dayNumber(parts[1])
	if !okFrom || !okTo {
		return false
	}
	if from <= to {
		return day >= from && day <= to
	}
	return day >= from || day <= to
}

func dayNumber(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, false
	}
	n, ok := dayIndex[name[:3]]
	return n, ok
}

// parseWindows reads the comma or ampersand separated ranges of a time
// portion. Parenthesized remarks are ignored and a part that says "closed"
// contributes no window; the day is closed only when nothing parses.
func parseWindows(times string) []Window {
	windows := []Window{}
	times = remark.ReplaceAllString(times, " ")
	for _, part := range strings.FieldsFunc(times, func(r rune) bool { return r == ',' || r == '&' }) {
		if strings.Contains(strings.ToLower(part), "closed") {
			continue
		}
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			continue
		}
		start, okStart := parseClock(lastField(bounds[0]))
		end, okEnd := parseClock(firstField(bounds[1]))
		if !okStart || !okEnd || end <= start {
			continue
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows
}

func firstField(text string) string {
	if fields := strings.Fields(text); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func lastField(text string) string {
	if fields := strings.Fields(text); len(fields) > 0 {
		return fields[len(fields)-1]
	}
	return ""
}

// parseClock accepts "H:MM" or "H" and returns minutes since midnight.
func parseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	hourText, minuteText, hasMinutes := strings.Cut(value, ":")
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 0 || hour > 24 {
		return 0, false
	}
	minute := 0
	if hasMinutes {
		if len(minuteText) != 2 {
			return 0, false
		}
		minute, err = strconv.Atoi(minuteText)
		if err != nil || minute < 0 || minute > 59 {
			return 0, false
		}
	}
	total := hour*60 + minute
	if total > 24*60 {
		return 0, false
	}
	return total, true
}

func isoWeekday(day time.Weekday) int {
	if day == time.Sunday {
		return 7
	}
	return int(day)
}

func shortName(day int) string {
	if day < 1 || day >= len(dayNames) {
		return ""
	}
	return dayNames[day]
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
