package kafka

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer синхронный Kafka producer одного топика
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

// SaramaConfig общие настройки клиента, включая SASL/TLS
func SaramaConfig(cfg *Config) *sarama.Config {
	config := sarama.NewConfig()

	if cfg.SecurityProtocol == "SASL_SSL" || cfg.SecurityProtocol == "SASL_PLAINTEXT" {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if cfg.SASLMechanism == "SCRAM-SHA-256" {
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		config.Net.SASL.User = cfg.SASLUsername
		config.Net.SASL.Password = cfg.SASLPassword
		// TLS только для SASL_SSL
		if cfg.SecurityProtocol == "SASL_SSL" {
			config.Net.TLS.Enable = true
		}
	}
	return config
}

// NewProducer создаёт новый Kafka producer
func NewProducer(cfg *Config, log *slog.Logger) (*Producer, error) {
	config := SaramaConfig(cfg)
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.GetBrokers(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return NewProducerWith(producer, cfg.Topic, log), nil
}

// NewProducerWith producer поверх готового sarama.SyncProducer
func NewProducerWith(producer sarama.SyncProducer, topic string, log *slog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

// Send отправляет сообщение; message_id в заголовке для дедупликации на стороне потребителя
func (p *Producer) Send(ctx context.Context, key string, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("message_id"), Value: []byte(uuid.NewString())},
			{Key: []byte("content_type"), Value: []byte("application/json")},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Debug("kafka send failed",
			"error", err,
			"topic", p.topic,
			"key", key,
		)
		return fmt.Errorf("kafka send failed [topic=%s, key=%s]: %w", p.topic, key, err)
	}

	p.log.Debug("message sent to kafka",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"key", key,
	)

	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	p.log.Info("kafka producer closed")
	return nil
}
