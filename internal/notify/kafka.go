package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the mailer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMailer publishes mail requests to a topic consumed by the mail service.
type KafkaMailer struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaMailer creates a mailer writing to topic on brokers.
func NewKafkaMailer(brokers []string, topic string, logger zerolog.Logger) *KafkaMailer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaMailer(writer, logger)
}

func newKafkaMailer(writer messageWriter, logger zerolog.Logger) *KafkaMailer {
	return &KafkaMailer{
		writer: writer,
		logger: logger.With().Str("component", "kafka-mailer").Logger(),
	}
}

// SendQRCodesReady publishes msg keyed by restaurant, so one restaurant's
// mails stay ordered within a partition.
func (m *KafkaMailer) SendQRCodesReady(ctx context.Context, msg QRCodesReadyMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}

	err = m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.RestaurantID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("qr_codes_ready")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}

	return nil
}

// Close flushes and closes the writer.
func (m *KafkaMailer) Close() error {
	return m.writer.Close()
}
