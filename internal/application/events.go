package application

import (
	"context"
	"errors"
	"time"

	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/platform/kafka"
	"go.uber.org/zap"
)

// ServiceName is the CloudEvents source of every published event.
const ServiceName = "service-travel"

const publishTimeout = 5 * time.Second

var errPublishingDisabled = errors.New("event publishing disabled")

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// eventPublisher wraps an optional EventPublisher. Failures are logged and
// returned so callers that need a fallback can act on them.
type eventPublisher struct {
	producer EventPublisher
	logger   *zap.Logger
}

func (p eventPublisher) publish(ctx context.Context, eventType, subject string, data interface{}) error {
	if p.producer == nil {
		return errPublishingDisabled
	}

	ce, err := kafka.NewCloudEvent(ServiceName, eventType, data)
	if err != nil {
		p.logger.Error("failed to build cloud event", zap.String("type", eventType), zap.Error(err))
		return err
	}
	ce.Subject = subject

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.producer.PublishEvent(ctx, travelagent.TopicTravelEvents, ce); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("type", eventType),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	return nil
}
