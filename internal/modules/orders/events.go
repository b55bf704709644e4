package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"homechef-delivery/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher announces committed orders to downstream consumers (kitchen
// display, notifications).
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, evt models.OrderPlacedEvent) error
}

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// PublishOrderPlaced keys messages by chef so one kitchen's orders stay ordered.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, evt models.OrderPlacedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.ChefID, 10)),
		Value: payload,
	})
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, models.OrderPlacedEvent) error { return nil }
