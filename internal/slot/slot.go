// Package slot holds the naive, day-local date and time values used for
// bookings. Nothing here is timezone aware: a booking for "2025-03-01 10:00"
// means ten o'clock on the court's own wall clock.
package slot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage and wire format of a calendar date.
const DateLayout = "2006-01-02"

// EndOfDay is the only clock value allowed past 23:59.
const EndOfDay Clock = 24 * 60

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Clock is a wall-clock time expressed in minutes since midnight.
type Clock int

// ParseClock parses HH:MM. "24:00" is accepted as the end of the day.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if !digits(hh) || len(hh) > 2 || !digits(mm) || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

// digits reports whether s is non-empty and made of ASCII digits only.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats the clock as zero padded HH:MM, so stored values compare
// correctly as strings.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Range is a half-open [Start, End) time range within one day.
type Range struct {
	Start Clock
	End   Clock
}

// NewRange parses start and end and requires end to be after start.
func NewRange(start, end string) (Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Range{}, err
	}
	if s == EndOfDay {
		return Range{}, fmt.Errorf("start time cannot be 24:00")
	}
	if e <= s {
		return Range{}, fmt.Errorf("end time %s must be after start time %s", e, s)
	}
	return Range{Start: s, End: e}, nil
}

// Overlaps reports whether the two ranges share any minute.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Contains reports whether o lies entirely within r.
func (r Range) Contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Minutes is the length of the range.
func (r Range) Minutes() int {
	return int(r.End - r.Start)
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

type rangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeJSON{Start: r.Start.String(), End: r.End.String()})
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var raw rangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ValidateWindows checks that no two windows of the same day overlap and
// returns them sorted by start time.
func ValidateWindows(windows []Range) ([]Range, error) {
	sorted := make([]Range, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, w := range sorted {
		if w.End <= w.Start {
			return nil, fmt.Errorf("window %s ends before it starts", w)
		}
		if i > 0 && sorted[i-1].Overlaps(w) {
			return nil, fmt.Errorf("window %s overlaps %s", w, sorted[i-1])
		}
	}
	return sorted, nil
}
