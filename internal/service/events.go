package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/client"
	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/util"
)

type EventPublisherInterface interface {
	PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error
}

// KafkaEventPublisher writes auth events to the audit topic. Publishing is
// best effort: callers log the failure and keep going, an audit gap must
// never fail a login.
type KafkaEventPublisher struct {
	producer *client.KafkaProducer
	topic    string
}

var _ EventPublisherInterface = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer *client.KafkaProducer, cfg *config.Config) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    cfg.Kafka.AuthEventsTopic,
	}
}

func (p *KafkaEventPublisher) PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}

	if err := p.producer.Publish(ctx, p.topic, []byte(event.UserID), payload); err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}

	util.Debug("Auth event published",
		zap.String("event_type", event.EventType),
		zap.String("user_id", event.UserID))
	return nil
}

// publishEvent is the fire-and-forget wrapper services use.
func publishEvent(ctx context.Context, publisher EventPublisherInterface, event *models.AuthEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishAuthEvent(ctx, event); err != nil {
		util.Warn("Auth event dropped",
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}
