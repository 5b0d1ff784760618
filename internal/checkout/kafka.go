package checkout

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaPublisher writes handoffs to a topic keyed by session id.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.SugaredLogger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zap.SugaredLogger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// ProducerConfig is the sarama configuration used for handoffs.
func ProducerConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	return cfg
}

// DialKafka connects a sync producer to brokers.
func DialKafka(brokers []string, topic string, logger *zap.SugaredLogger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, ProducerConfig("storefront"))
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return NewKafkaPublisher(producer, topic, logger), nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, h Handoff) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encode(h)
	if err != nil {
		return err
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(h.SessionID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		p.logger.Errorw("checkout: publish failed", "session", h.SessionID, "topic", p.topic, "error", err)
		return fmt.Errorf("publish handoff: %w", err)
	}
	p.logger.Infow("checkout: published handoff",
		"session", h.SessionID, "topic", p.topic, "partition", partition, "offset", offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
