package bucket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PerDay is the number of buckets in one day
const PerDay = 48

// Width is the duration covered by one bucket
const Width = 30 * time.Minute

// Key identifies a 30-minute bucket as HH:MM
type Key string

// Relation is the position of a bucket relative to the current bucket
type Relation int

const (
	Past Relation = iota
	Current
	Future
)

func (r Relation) String() string {
	switch r {
	case Past:
		return "past"
	case Current:
		return "current"
	case Future:
		return "future"
	default:
		return "unknown"
	}
}

// MarshalText renders the relation as its lowercase name
func (r Relation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ErrInvalidKey is returned by Parse for values that are not a time of day
var ErrInvalidKey = errors.New("invalid bucket time")

// Of returns the bucket containing t, in t's own location
func Of(t time.Time) Key {
	return fromParts(t.Hour(), t.Minute())
}

func fromParts(hour, minute int) Key {
	m := "00"
	if minute >= 30 {
		m = "30"
	}
	return Key(fmt.Sprintf("%02d:%s", hour, m))
}

// Parse accepts H:MM, HH:MM or HH:MM:SS and snaps the value to its bucket
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
	}
	return fromParts(hour, minute), nil
}

// MustParse is Parse for literals; it panics on malformed input
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Hour returns the hour component, or -1 for a malformed key
func (k Key) Hour() int {
	if len(k) != 5 {
		return -1
	}
	h, err := strconv.Atoi(string(k[:2]))
	if err != nil {
		return -1
	}
	return h
}

// Half returns 0 for an :00 bucket and 1 for a :30 bucket
func (k Key) Half() int {
	if len(k) == 5 && k[3:] == "30" {
		return 1
	}
	return 0
}

// Index returns the position of the key in the day, 0..47, or -1 if malformed
func (k Key) Index() int {
	h := k.Hour()
	if h < 0 || h > 23 {
		return -1
	}
	return h*2 + k.Half()
}

// Valid reports whether k is one of the 48 keys of a day
func (k Key) Valid() bool {
	if k.Index() < 0 {
		return false
	}
	m := string(k[3:])
	return k[2] == ':' && (m == "00" || m == "30")
}

func (k Key) String() string { return string(k) }

// Start returns the instant the bucket begins on the day of ref, in ref's location
func (k Key) Start(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, k.Hour(), k.Half()*30, 0, 0, ref.Location())
}

// Compare orders keys by hour then minute bucket
func Compare(a, b Key) int {
	ah, bh := a.Hour(), b.Hour()
	if ah != bh {
		if ah < bh {
			return -1
		}
		return 1
	}
	ah, bh = a.Half(), b.Half()
	switch {
	case ah < bh:
		return -1
	case ah > bh:
		return 1
	}
	return 0
}

// Classify relates b to now: equal is Current, earlier Past, later Future.
// There is no wraparound across midnight.
func Classify(b, now Key) Relation {
	switch c := Compare(b, now); {
	case c < 0:
		return Past
	case c > 0:
		return Future
	}
	return Current
}

// All returns the 48 keys of a day in order
func All() []Key {
	keys := make([]Key, 0, PerDay)
	for h := 0; h < 24; h++ {
		keys = append(keys, fromParts(h, 0), fromParts(h, 30))
	}
	return keys
}
