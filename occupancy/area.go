package occupancy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AreaID names one of the library areas
type AreaID string

const (
	Main      AreaID = "main"
	SouthEast AreaID = "southEast"
	North     AreaID = "north"
	South     AreaID = "south"
	Angdomen  AreaID = "angdomen"
	Newton    AreaID = "newton"
)

// AreaCount is the size of the fixed area set
const AreaCount = 6

var areas = [AreaCount]AreaID{Main, SouthEast, North, South, Angdomen, Newton}

var labels = [AreaCount]string{"Main", "SouthEast", "North", "South", "Angdomen", "Newton"}

// Areas returns the area set in display order
func Areas() []AreaID {
	out := make([]AreaID, AreaCount)
	copy(out, areas[:])
	return out
}

// Index returns the position of a in Areas, or -1 for an unknown area
func (a AreaID) Index() int {
	for i, v := range areas {
		if v == a {
			return i
		}
	}
	return -1
}

// Valid reports whether a is one of the six areas
func (a AreaID) Valid() bool { return a.Index() >= 0 }

// Label is the human readable area name
func (a AreaID) Label() string {
	if i := a.Index(); i >= 0 {
		return labels[i]
	}
	return string(a)
}

// ParseArea resolves an area name case-insensitively
func ParseArea(s string) (AreaID, error) {
	s = strings.TrimSpace(s)
	for _, a := range areas {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown area %q", s)
}

// Values holds one integer occupancy percentage per area
type Values [AreaCount]int

// Get returns the value for a; unknown areas read as 0
func (v Values) Get(a AreaID) int {
	if i := a.Index(); i >= 0 {
		return v[i]
	}
	return 0
}

// With returns a copy of v with a set to n
func (v Values) With(a AreaID, n int) Values {
	if i := a.Index(); i >= 0 {
		v[i] = n
	}
	return v
}

// Map returns the values keyed by area name
func (v Values) Map() map[AreaID]int {
	m := make(map[AreaID]int, AreaCount)
	for i, a := range areas {
		m[a] = v[i]
	}
	return m
}

// MarshalJSON writes the values as an object in area order
func (v Values) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, a := range areas {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(string(a)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(v[i]))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON accepts an object keyed by area name; missing areas become 0
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValuesFromMap(raw)
	return nil
}

// ValuesFromMap normalises a loosely typed record. Missing, null or
// non-numeric fields read as 0; floats are truncated.
func ValuesFromMap(raw map[string]any) Values {
	var v Values
	for i, a := range areas {
		v[i] = toPercent(raw[string(a)])
	}
	return v
}

func toPercent(x any) int {
	switch t := x.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float32:
		return truncFinite(float64(t))
	case float64:
		return truncFinite(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return truncFinite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return truncFinite(f)
	}
	return 0
}

// Percent truncates a feed value to an integer percentage. NaN and Inf read
// as 0; magnitudes beyond int32 are clamped.
func Percent(f float64) int { return truncFinite(f) }

func truncFinite(f float64) int {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(f))
}
