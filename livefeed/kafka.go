package livefeed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig describes the cluster carrying the live record
type KafkaConfig struct {
	Brokers []string
	GroupID string
	MaxWait time.Duration
}

// MessageReader is the subset of *kafka.Reader used by KafkaSource
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaSource reads the live record from a Kafka topic
type KafkaSource struct {
	config    KafkaConfig
	logger    *slog.Logger
	newReader func(topic string) MessageReader
}

// NewKafkaSource creates a Kafka source
func NewKafkaSource(cfg KafkaConfig, logger *slog.Logger) *KafkaSource {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &KafkaSource{config: cfg, logger: logger.With("component", "livefeed.kafka")}
	s.newReader = func(topic string) MessageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: s.config.Brokers,
			GroupID: s.config.GroupID,
			Topic:   topic,
			MaxWait: s.config.MaxWait,
		})
	}
	return s
}

// Subscribe starts reading topic path until the subscription is cancelled
func (s *KafkaSource) Subscribe(ctx context.Context, path string, onValue func(map[string]any), onError func(error)) (Subscription, error) {
	if len(s.config.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	reader := s.newReader(path)
	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		err := s.consume(subCtx, reader, onValue)
		close(done)
		if err != nil && subCtx.Err() == nil {
			onError(err)
		}
	}()

	var once sync.Once
	return subscriptionFunc(func() error {
		var err error
		once.Do(func() {
			cancel()
			<-done
			err = reader.Close()
		})
		return err
	}), nil
}

func (s *KafkaSource) consume(ctx context.Context, reader MessageReader, onValue func(map[string]any)) error {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		raw, err := decodeRecord(msg.Value)
		if err != nil {
			s.logger.Warn("dropping live message", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			continue
		}
		if raw == nil {
			s.logger.Debug("ignoring empty live record", "topic", msg.Topic, "offset", msg.Offset)
			continue
		}
		onValue(raw)
	}
}
