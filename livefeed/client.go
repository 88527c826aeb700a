package livefeed

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/library-occupancy/metrics"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
	"github.com/theoremus-urban-solutions/library-occupancy/store"
)

// State of the live subscription
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Degraded
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Degraded:
		return "degraded"
	default:
		return "disconnected"
	}
}

// MarshalText renders the state name
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Status is a point-in-time view of the client
type Status struct {
	State     State  `json:"state"`
	Degraded  bool   `json:"degraded"`
	Attempt   int    `json:"attempt"`
	LastError string `json:"lastError,omitempty"`
}

// Defaults used when Options fields are zero
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// Options configures a Client
type Options struct {
	Path       string
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Client keeps the latest occupancy snapshot from a Source
type Client struct {
	source Source
	store  *store.SnapshotStore
	opts   Options
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	attempt     int
	lastErr     error
	gen         int
	started     bool
	closed      bool
	live        *occupancy.Snapshot
	cached      *occupancy.Snapshot
	sub         Subscription
	retry       *time.Timer
	subscribers []func(occupancy.Snapshot)

	// deliverMu serialises cache writes and subscriber calls
	deliverMu sync.Mutex
}

// NewClient creates a client for source. snapshots may be nil, in which
// case nothing is read from or written to durable storage. A nil source
// never connects and only serves the cached snapshot.
func NewClient(source Source, snapshots *store.SnapshotStore, opts Options) *Client {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		source: source,
		store:  snapshots,
		opts:   opts,
		logger: opts.Logger.With("component", "livefeed"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnSnapshot registers fn to receive every delivered snapshot in arrival order.
// It must be called before Start.
func (c *Client) OnSnapshot(fn func(occupancy.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Start restores the cached snapshot and opens the first subscription.
// Connection failures are not returned; they drive the retry schedule.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	c.restore(ctx)
	c.connect()
	return nil
}

func (c *Client) restore(ctx context.Context) {
	if c.store == nil {
		return
	}
	snap, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to read cached snapshot", "key", c.store.Key(), "error", err)
		return
	}
	if !ok {
		c.logger.Debug("no cached snapshot", "key", c.store.Key())
		return
	}
	c.mu.Lock()
	c.cached = &snap
	c.mu.Unlock()
	c.logger.Info("restored cached snapshot", "key", c.store.Key(), "received_at", snap.ReceivedAt)
}

func (c *Client) connect() {
	if c.source == nil {
		return
	}
	c.mu.Lock()
	if c.closed || c.state == Degraded {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.setState(Connecting)
	c.mu.Unlock()

	sub, err := c.source.Subscribe(c.ctx, c.opts.Path,
		func(raw map[string]any) { c.deliver(gen, raw) },
		func(err error) { c.transportError(gen, err) },
	)
	if err != nil {
		c.fail(gen, err)
		return
	}

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		_ = sub.Unsubscribe()
		return
	}
	c.sub = sub
	if c.state == Connecting {
		c.setState(Connected)
	}
	c.mu.Unlock()
	c.logger.Info("subscribed to live feed", "path", c.opts.Path)
}

func (c *Client) transportError(gen int, err error) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		_ = sub.Unsubscribe()
	}
	c.fail(gen, err)
}

// fail records a failed attempt and either schedules the next one or degrades
func (c *Client) fail(gen int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	// invalidate callbacks of the failed subscription
	c.gen++

	c.attempt++
	c.lastErr = &ConnectionError{Attempt: c.attempt, Err: err}

	if c.attempt > c.opts.MaxRetries {
		c.setState(Degraded)
		c.logger.Error("live feed degraded, giving up", "attempts", c.attempt, "error", err)
		return
	}

	delay := time.Duration(c.attempt) * c.opts.BaseDelay
	c.setState(Connecting)
	c.logger.Warn("live feed connection failed, retrying", "attempt", c.attempt, "delay", delay, "error", err)
	c.retry = time.AfterFunc(delay, c.reconnect)
}

func (c *Client) reconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.retry = nil
	c.mu.Unlock()

	c.opts.Metrics.IncrementReconnectAttempts()
	c.connect()
}

// deliver ignores a nil record so the cached snapshot survives a cleared path
func (c *Client) deliver(gen int, raw map[string]any) {
	if raw == nil {
		c.logger.Debug("ignoring empty live record")
		return
	}
	snap := occupancy.NewSnapshot(raw, c.opts.Now())

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.live = &snap
	c.attempt = 0
	if c.state != Connected {
		c.setState(Connected)
	}
	subscribers := slices.Clone(c.subscribers)
	c.mu.Unlock()

	c.opts.Metrics.IncrementSnapshots()
	c.logger.Debug("live snapshot received", "values", snap.Values.Map())

	if c.store != nil {
		if err := c.store.Save(c.ctx, snap); err != nil {
			c.opts.Metrics.IncrementCacheWriteFailures()
			c.logger.Warn("failed to persist snapshot", "key", c.store.Key(), "error", err)
		}
	}

	for _, fn := range subscribers {
		fn(snap)
	}
}

// setState must be called with mu held
func (c *Client) setState(s State) {
	c.state = s
	c.opts.Metrics.UpdateLiveState(int(s), s == Degraded)
}

// Current returns the session snapshot, else the cached one, else zero values
func (c *Client) Current() (occupancy.Snapshot, occupancy.Origin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live != nil {
		return *c.live, occupancy.OriginLive
	}
	if c.cached != nil {
		return *c.cached, occupancy.OriginCache
	}
	return occupancy.Snapshot{}, occupancy.OriginNone
}

// Status reports the connection state
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		State:    c.state,
		Degraded: c.state == Degraded,
		Attempt:  c.attempt,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

// Close stops any pending retry and releases the current subscription.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	sub := c.sub
	c.sub = nil
	if c.state != Degraded {
		c.setState(Disconnected)
	}
	c.mu.Unlock()

	c.cancel()
	if sub != nil {
		return sub.Unsubscribe()
	}
	return nil
}
