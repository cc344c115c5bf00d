package events

import (
	"context"

	"vetsched/pkg/kafka"
	"vetsched/pkg/model"
)

const source = "appointments"

// KafkaPublisher emits appointment lifecycle events keyed by appointment id,
// so consumers see each appointment's history in order.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(brokers, topic)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, appt *model.Appointment) error {
	msg, err := kafka.NewEventMessage(eventType, source, appt.ID, appt)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
