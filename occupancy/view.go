package occupancy

import (
	"fmt"
	"strings"
)

// Day selects which precomputed series is displayed
type Day int

const (
	Today Day = iota
	Tomorrow
)

func (d Day) String() string {
	if d == Tomorrow {
		return "tomorrow"
	}
	return "today"
}

// ParseDay accepts "today" or "tomorrow"; empty means today
func ParseDay(s string) (Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return Today, nil
	case "tomorrow":
		return Tomorrow, nil
	}
	return Today, fmt.Errorf("unknown day %q", s)
}

// Level is the colour band of an occupancy value
type Level int

const (
	Low Level = iota
	Medium
	High
)

// LevelOf bands n: up to 50 is low, up to 80 medium, above that high
func LevelOf(n int) Level {
	switch {
	case n <= 50:
		return Low
	case n <= 80:
		return Medium
	}
	return High
}

func (l Level) String() string {
	switch l {
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return "low"
}

// MarshalText renders the level name
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Selection is the single area whose comparison line is shown, or none
type Selection struct {
	area AreaID
}

// Select shows only a
func Select(a AreaID) Selection { return Selection{area: a} }

// Toggle hides a if it is shown, otherwise shows only a
func (s Selection) Toggle(a AreaID) Selection {
	if s.area == a {
		return Selection{}
	}
	return Selection{area: a}
}

// Visible returns the shown area
func (s Selection) Visible() (AreaID, bool) {
	return s.area, s.area != ""
}

// Effective is the shown area, falling back to Main when none is shown
func (s Selection) Effective() AreaID {
	if s.area == "" {
		return Main
	}
	return s.area
}
