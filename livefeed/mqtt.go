package livefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTConfig describes the broker carrying the live record
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTSource subscribes to the live topic on an MQTT broker. Each
// subscription owns its own broker connection; reconnection is left to the
// Client so the retry budget applies.
type MQTTSource struct {
	config MQTTConfig
	logger *slog.Logger
}

// NewMQTTSource creates an MQTT source
func NewMQTTSource(cfg MQTTConfig, logger *slog.Logger) *MQTTSource {
	if cfg.ClientID == "" {
		cfg.ClientID = "library-occupancy"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTSource{config: cfg, logger: logger.With("component", "livefeed.mqtt")}
}

// Subscribe connects to the broker and subscribes to topic path
func (s *MQTTSource) Subscribe(ctx context.Context, path string, onValue func(map[string]any), onError func(error)) (Subscription, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.config.Broker)
	// unique per connection so a stale session never kicks the new one
	opts.SetClientID(fmt.Sprintf("%s-%s", s.config.ClientID, uuid.NewString()[:8]))
	opts.SetUsername(s.config.Username)
	opts.SetPassword(s.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetOrderMatters(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("connection to MQTT broker lost", "broker", s.config.Broker, "error", err)
		onError(err)
	})

	client := mqtt.NewClient(opts)
	if err := waitToken(ctx, client.Connect(), s.config.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		raw, err := decodeRecord(msg.Payload())
		if err != nil {
			s.logger.Warn("dropping live message", "topic", msg.Topic(), "error", err)
			return
		}
		if raw == nil {
			s.logger.Debug("ignoring empty live record", "topic", msg.Topic())
			return
		}
		onValue(raw)
	}
	if err := waitToken(ctx, client.Subscribe(path, s.config.QoS, handler), s.config.ConnectTimeout); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	return subscriptionFunc(func() error {
		if client.IsConnected() {
			client.Unsubscribe(path).WaitTimeout(time.Second)
		}
		client.Disconnect(250)
		return nil
	}), nil
}

func waitToken(ctx context.Context, t mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("timeout waiting for broker")
	}
}
