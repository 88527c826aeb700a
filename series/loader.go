package series

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// Loader fetches feeds from URLs or local files and parses them
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.httpClient = c }
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.httpClient.Timeout = d }
}

// WithLogger sets the logger
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// NewLoader creates a feed loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	l.logger = l.logger.With("component", "series")
	return l
}

// fetch returns the raw payload of source. Blank payloads are a FetchError.
func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, &FetchError{Source: source, Err: errors.New("no source configured")}
	}
	var (
		data []byte
		err  error
	)
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err = os.ReadFile(source)
	} else {
		data, err = l.get(ctx, source)
	}
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &FetchError{Source: source, Err: ErrEmptyPayload}
	}
	return data, nil
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// Load fetches and parses a today or tomorrow feed
func (l *Loader) Load(ctx context.Context, source string) (occupancy.Series, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return occupancy.Series{}, err
	}
	s, stats, err := Parse(bytes.NewReader(data))
	if err != nil {
		return occupancy.Series{}, &FetchError{Source: source, Err: err}
	}
	l.logStats(source, stats)
	return s, nil
}

// LoadComparison fetches and parses the real-vs-predicted feed
func (l *Loader) LoadComparison(ctx context.Context, source string) (occupancy.Comparison, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return occupancy.Comparison{}, err
	}
	c, stats, err := ParseComparison(bytes.NewReader(data))
	if err != nil {
		return occupancy.Comparison{}, &FetchError{Source: source, Err: err}
	}
	l.logStats(source, stats)
	return c, nil
}

func (l *Loader) logStats(source string, stats ParseStats) {
	if stats.BadCells > 0 || stats.DroppedRows > 0 {
		l.logger.Warn("feed parsed with defaults",
			"source", source,
			"rows", stats.Rows,
			"bad_cells", stats.BadCells,
			"dropped_rows", stats.DroppedRows)
		return
	}
	l.logger.Debug("feed parsed", "source", source, "rows", stats.Rows)
}
