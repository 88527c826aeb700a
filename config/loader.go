package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// SearchPaths are tried in order when no explicit path is given
var SearchPaths = []string{"config.yml", "./config/config.yml"}

// EnvPrefix prefixes every environment override
const EnvPrefix = "LIBOCC_"

// LoadAppConfig loads, overrides and validates the configuration into Config.
// An empty path searches SearchPaths; when none exists the defaults are used.
func LoadAppConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// Load reads the configuration without touching the global
func Load(path string) (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	data, err := readConfigFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data, os.Getenv)
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return data, nil
	}
	for _, p := range SearchPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil, nil
}

// Parse overlays data on the defaults, applies environment overrides read
// through getenv and validates the result
func Parse(data []byte, getenv func(string) string) (AppConfig, error) {
	cfg := Defaults()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if getenv != nil {
		applyEnv(&cfg, getenv)
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and cross-field rules
func Validate(cfg AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch cfg.Live.Transport {
	case "mqtt":
		if cfg.Live.MQTT.Broker == "" {
			return errors.New("invalid config: live.mqtt.broker is required for the mqtt transport")
		}
	case "kafka":
		if len(cfg.Live.Kafka.Brokers) == 0 {
			return errors.New("invalid config: live.kafka.brokers is required for the kafka transport")
		}
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(EnvPrefix + key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	num("PORT", &cfg.Server.Port)
	str("TODAY_URL", &cfg.Feeds.TodayURL)
	str("TOMORROW_URL", &cfg.Feeds.TomorrowURL)
	str("COMPARISON_URL", &cfg.Feeds.ComparisonURL)
	str("LIVE_TRANSPORT", &cfg.Live.Transport)
	str("LIVE_PATH", &cfg.Live.Path)
	str("MQTT_BROKER", &cfg.Live.MQTT.Broker)
	str("MQTT_USERNAME", &cfg.Live.MQTT.Username)
	str("MQTT_PASSWORD", &cfg.Live.MQTT.Password)
	if v := strings.TrimSpace(getenv(EnvPrefix + "KAFKA_BROKERS")); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		cfg.Live.Kafka.Brokers = brokers
	}
	str("CACHE_BACKEND", &cfg.Cache.Backend)
	str("CACHE_LOCATION", &cfg.Cache.Location)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	str("TIMEZONE", &cfg.Timezone)
}
