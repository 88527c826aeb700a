package reconcile

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// Live is the snapshot provider, normally a *livefeed.Client
type Live interface {
	Current() (occupancy.Snapshot, occupancy.Origin)
}

// Feed names one of the loaded feeds
type Feed string

const (
	FeedToday      Feed = "today"
	FeedTomorrow   Feed = "tomorrow"
	FeedComparison Feed = "comparison"
)

// Feeds lists the feeds in load order
func Feeds() []Feed { return []Feed{FeedToday, FeedTomorrow, FeedComparison} }

// FeedState is the outcome of the latest load of a feed
type FeedState struct {
	Loaded    bool      `json:"loaded"`
	Rows      int       `json:"rows"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// ColorHint classifies a bucket for display. Level is set for the current bucket only.
type ColorHint struct {
	Relation bucket.Relation  `json:"relation"`
	Level    *occupancy.Level `json:"level,omitempty"`
}

// Engine holds the most recent series and answers reconciliation queries
type Engine struct {
	live  Live
	clock func() time.Time
	loc   *time.Location

	today      atomic.Pointer[occupancy.Series]
	tomorrow   atomic.Pointer[occupancy.Series]
	comparison atomic.Pointer[occupancy.Comparison]

	mu    sync.RWMutex
	feeds map[Feed]FeedState
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock replaces time.Now
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithLocation sets the zone buckets are computed in
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) { e.loc = loc }
}

// NewEngine creates an engine. live may be nil when no live feed is configured.
func NewEngine(live Live, opts ...EngineOption) *Engine {
	e := &Engine{
		live:  live,
		clock: time.Now,
		loc:   time.Local,
		feeds: make(map[Feed]FeedState, 3),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Now is the engine clock in the engine's location
func (e *Engine) Now() time.Time {
	return e.clock().In(e.loc)
}

// Location returns the zone buckets are computed in
func (e *Engine) Location() *time.Location { return e.loc }

// SetSeries replaces the series for day
func (e *Engine) SetSeries(day occupancy.Day, s occupancy.Series) {
	if day == occupancy.Tomorrow {
		e.tomorrow.Store(&s)
		return
	}
	e.today.Store(&s)
}

// Series returns the raw loaded series for day
func (e *Engine) Series(day occupancy.Day) occupancy.Series {
	p := e.today.Load()
	if day == occupancy.Tomorrow {
		p = e.tomorrow.Load()
	}
	if p == nil {
		return occupancy.Series{}
	}
	return *p
}

// SetComparison replaces the comparison data
func (e *Engine) SetComparison(c occupancy.Comparison) {
	e.comparison.Store(&c)
}

// Comparison returns the comparison data; false before the first successful load
func (e *Engine) Comparison() (occupancy.Comparison, bool) {
	p := e.comparison.Load()
	if p == nil {
		return occupancy.Comparison{}, false
	}
	return *p, true
}

// RecordLoad stores the outcome of a feed load. A failed load keeps the
// previous rows and load time.
func (e *Engine) RecordLoad(feed Feed, rows int, at time.Time, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.feeds[feed]
	if err != nil {
		st.LastError = err.Error()
	} else {
		st = FeedState{Loaded: true, Rows: rows, LoadedAt: at}
	}
	e.feeds[feed] = st
}

// FeedStatus returns the state of every feed
func (e *Engine) FeedStatus() map[Feed]FeedState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[Feed]FeedState, len(e.feeds))
	for _, f := range Feeds() {
		out[f] = e.feeds[f]
	}
	return out
}

// At captures everything a reconciliation pass needs at instant now
func (e *Engine) At(now time.Time) View {
	v := View{
		now:      now.In(e.loc),
		today:    e.Series(occupancy.Today),
		tomorrow: e.Series(occupancy.Tomorrow),
	}
	v.bucket = bucket.Of(v.now)
	if e.live != nil {
		v.snap, v.origin = e.live.Current()
	}
	return v
}

// Current captures a View at the engine clock
func (e *Engine) Current() View { return e.At(e.Now()) }

// CurrentOccupancy is the live value for a, else the cached one, else 0
func (e *Engine) CurrentOccupancy(a occupancy.AreaID) int {
	return e.Current().CurrentOccupancy(a)
}

// SeriesFor returns the display series for a on day
func (e *Engine) SeriesFor(a occupancy.AreaID, day occupancy.Day) []occupancy.Point {
	return e.Current().SeriesFor(a, day)
}

// ColorClass classifies today's bucket b for area a
func (e *Engine) ColorClass(b bucket.Key, a occupancy.AreaID) ColorHint {
	return e.Current().ColorClass(b, a)
}
