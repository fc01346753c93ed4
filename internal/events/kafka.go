package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// KafkaPublisher sends each event to topicPrefix+event.Type, keyed by event.Key.
type KafkaPublisher struct {
	writer      messageWriter
	topicPrefix string
}

const publishBatchTimeout = 10 * time.Millisecond

// NewKafkaPublisher returns a publisher whose writes never wait on the broker.
// Delivery failures surface in the log through the writer's completion hook.
func NewKafkaPublisher(brokers []string, topicPrefix string) *KafkaPublisher {
	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           publishBatchTimeout,
		Async:                  true,
		Completion:             logDeliveryFailure,
	}
	return &KafkaPublisher{writer: w, topicPrefix: topicPrefix}
}

func logDeliveryFailure(messages []kafkaGo.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		log.Error().Err(err).Str("topic", m.Topic).Str("key", string(m.Key)).Msg("events: kafka delivery failed")
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	topic := p.topicPrefix + event.Type
	err = p.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(event.Key),
		Value: payload,
	})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", event.Key).Msg("events: kafka write failed")
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
