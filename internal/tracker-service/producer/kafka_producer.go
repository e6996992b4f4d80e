package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/high-roller-tracker-poc/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// PublishHighRollerDetected publica o evento chaveado pelo bet_id,
// garantindo ordem por aposta dentro da partição
func (p *KafkaPublisher) PublishHighRollerDetected(ctx context.Context, e events.HighRollerDetected) error {
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.BetID),
		Value: b,
	})
}
