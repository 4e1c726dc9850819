// Package events publishes domain events to a message broker after the
// state change they describe has been committed.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	UserRegistered      = "user.registered"
	InvitationCreated   = "invitation.created"
	InvitationAccepted  = "invitation.accepted"
	InvitationCancelled = "invitation.cancelled"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	// Key orders events of the same entity on partitioned brokers.
	Key     string `json:"-"`
	Payload any    `json:"payload"`
}

func New(typ, key string, payload any) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC(), Key: key, Payload: payload}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type Config struct {
	Broker        string // none, kafka or rabbitmq
	KafkaBrokers  []string
	KafkaTopic    string
	RabbitMQURL   string
	RabbitMQQueue string
}

func NewPublisher(cfg Config, logger *slog.Logger) (Publisher, error) {
	switch cfg.Broker {
	case "", "none":
		return Nop{}, nil
	case "kafka":
		logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "rabbitmq":
		logger.Info("publishing events to rabbitmq", "queue", cfg.RabbitMQQueue)
		return NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
	}
}
