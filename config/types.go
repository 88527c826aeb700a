package config

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// FeedsConfig contains the locations of the delimited feeds. Each may be
// an http(s) URL or a local file path.
type FeedsConfig struct {
	TodayURL          string `yaml:"todayURL"`
	TomorrowURL       string `yaml:"tomorrowURL"`
	ComparisonURL     string `yaml:"comparisonURL"`
	TimeoutMS         int    `yaml:"timeoutMS" validate:"gte=0"`
	RefreshIntervalMS int    `yaml:"refreshIntervalMS" validate:"gte=0"`
}

// MQTTConfig contains the MQTT live transport settings
type MQTTConfig struct {
	Broker   string `yaml:"broker" validate:"omitempty,url"`
	ClientID string `yaml:"clientID"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos" validate:"gte=0,lte=2"`
}

// KafkaConfig contains the Kafka live transport settings
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" validate:"dive,hostname_port"`
	GroupID string   `yaml:"groupID"`
}

// LiveConfig contains the live feed client settings
type LiveConfig struct {
	Transport   string      `yaml:"transport" validate:"oneof=mqtt kafka none"`
	Path        string      `yaml:"path" validate:"required"`
	MaxRetries  int         `yaml:"maxRetries" validate:"gte=1"`
	BaseDelayMS int         `yaml:"baseDelayMS" validate:"gt=0"`
	MQTT        MQTTConfig  `yaml:"mqtt"`
	Kafka       KafkaConfig `yaml:"kafka"`
}

// CacheConfig contains the durable snapshot cache settings
type CacheConfig struct {
	Backend  string `yaml:"backend" validate:"oneof=file sqlite memory"`
	Location string `yaml:"location"`
	Key      string `yaml:"key" validate:"required"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig  `yaml:"server" validate:"required"`
	Feeds    FeedsConfig   `yaml:"feeds"`
	Live     LiveConfig    `yaml:"live"`
	Cache    CacheConfig   `yaml:"cache"`
	Logging  LoggingConfig `yaml:"logging"`
	Timezone string        `yaml:"timezone" validate:"required"`
}

// Defaults returns the configuration used for every field a file leaves unset
func Defaults() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 16181},
		Feeds: FeedsConfig{
			TimeoutMS:         30000,
			RefreshIntervalMS: 30 * 60 * 1000,
		},
		Live: LiveConfig{
			Transport:   "mqtt",
			Path:        "current-occupancy",
			MaxRetries:  3,
			BaseDelayMS: 2000,
			MQTT:        MQTTConfig{Broker: "tcp://localhost:1883", ClientID: "library-occupancy", QoS: 1},
			Kafka:       KafkaConfig{GroupID: "library-occupancy"},
		},
		Cache: CacheConfig{
			Backend:  "file",
			Location: "./data",
			Key:      "libraryOccupancy",
		},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Timezone: "Europe/Stockholm",
	}
}

// BaseDelay is the live reconnect backoff unit
func (c AppConfig) BaseDelay() time.Duration {
	return time.Duration(c.Live.BaseDelayMS) * time.Millisecond
}

// FeedTimeout is the HTTP timeout of a feed load
func (c AppConfig) FeedTimeout() time.Duration {
	return time.Duration(c.Feeds.TimeoutMS) * time.Millisecond
}

// RefreshInterval is the period between feed reloads; 0 loads once
func (c AppConfig) RefreshInterval() time.Duration {
	return time.Duration(c.Feeds.RefreshIntervalMS) * time.Millisecond
}

// Location loads the configured timezone
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
