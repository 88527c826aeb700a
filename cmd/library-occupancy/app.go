package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theoremus-urban-solutions/library-occupancy/accuracy"
	"github.com/theoremus-urban-solutions/library-occupancy/api"
	"github.com/theoremus-urban-solutions/library-occupancy/config"
	"github.com/theoremus-urban-solutions/library-occupancy/livefeed"
	"github.com/theoremus-urban-solutions/library-occupancy/metrics"
	"github.com/theoremus-urban-solutions/library-occupancy/reconcile"
	"github.com/theoremus-urban-solutions/library-occupancy/series"
	"github.com/theoremus-urban-solutions/library-occupancy/store"
)

// app holds the wired components of one process
type app struct {
	cfg       config.AppConfig
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cache     store.Cache
	live      *livefeed.Client
	engine    *reconcile.Engine
	refresher *reconcile.Refresher
	reporter  *accuracy.Reporter
}

func newApp(cfg config.AppConfig) (*app, error) {
	logger := slog.Default()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	m, err := metrics.New()
	if err != nil {
		return nil, err
	}

	location, err := cacheLocation(cfg.Cache)
	if err != nil {
		return nil, err
	}
	cache, err := store.Open(cfg.Cache.Backend, location)
	if err != nil {
		return nil, err
	}

	live := livefeed.NewClient(liveSource(cfg.Live, logger), store.NewSnapshotStore(cache, cfg.Cache.Key), livefeed.Options{
		Path:       cfg.Live.Path,
		MaxRetries: cfg.Live.MaxRetries,
		BaseDelay:  cfg.BaseDelay(),
		Logger:     logger,
		Metrics:    m,
	})

	engine := reconcile.NewEngine(live, reconcile.WithLocation(loc))
	loader := series.NewLoader(series.WithTimeout(cfg.FeedTimeout()), series.WithLogger(logger))
	refresher := reconcile.NewRefresher(engine, loader, reconcile.Sources{
		Today:      cfg.Feeds.TodayURL,
		Tomorrow:   cfg.Feeds.TomorrowURL,
		Comparison: cfg.Feeds.ComparisonURL,
	}, m, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		cache:     cache,
		live:      live,
		engine:    engine,
		refresher: refresher,
		reporter:  accuracy.NewReporter(engine),
	}, nil
}

// liveSource returns nil for the "none" transport
func liveSource(cfg config.LiveConfig, logger *slog.Logger) livefeed.Source {
	switch cfg.Transport {
	case "mqtt":
		return livefeed.NewMQTTSource(livefeed.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			QoS:      byte(cfg.MQTT.QoS),
		}, logger)
	case "kafka":
		return livefeed.NewKafkaSource(livefeed.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
		}, logger)
	}
	return nil
}

// cacheLocation resolves the backend location; a sqlite location without
// an extension is treated as a directory holding cache.db
func cacheLocation(cfg config.CacheConfig) (string, error) {
	if cfg.Backend != store.BackendSQLite {
		return cfg.Location, nil
	}
	loc := cfg.Location
	if loc == "" {
		loc = "."
	}
	if filepath.Ext(loc) == "" {
		loc = filepath.Join(loc, "cache.db")
	}
	if err := os.MkdirAll(filepath.Dir(loc), 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	return loc, nil
}

func (a *app) server() *api.Server {
	router := api.NewRouter(api.Deps{
		Engine:   a.engine,
		Reporter: a.reporter,
		Live:     a.live,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
	return api.NewServer(a.cfg.Server.Port, router, a.logger)
}

// Close releases the live subscription and the cache
func (a *app) Close() {
	if err := a.live.Close(); err != nil {
		a.logger.Warn("failed to close live feed", "error", err)
	}
	if err := store.Close(a.cache); err != nil {
		a.logger.Warn("failed to close cache", "error", err)
	}
}
