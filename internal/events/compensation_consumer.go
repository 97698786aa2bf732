package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/platform/kafka"
	"go.uber.org/zap"
)

// CompensationRecorder stores the resources a failed compensation left behind.
// *application.OrphanService satisfies it.
type CompensationRecorder interface {
	RecordCompensationFailure(ctx context.Context, evt travelagent.CompensationFailedEvent) error
}

var _ CompensationRecorder = (*application.OrphanService)(nil)

// CompensationEventConsumer listens to travel events and writes failed
// compensations to the orphan ledger.
type CompensationEventConsumer struct {
	consumer *kafka.Consumer
	recorder CompensationRecorder
	logger   *zap.Logger
}

// NewCompensationEventConsumer creates a new CompensationEventConsumer.
func NewCompensationEventConsumer(
	brokers []string,
	groupID string,
	recorder CompensationRecorder,
	logger *zap.Logger,
) *CompensationEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, travelagent.TopicTravelEvents, logger)
	return &CompensationEventConsumer{
		consumer: consumer,
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins consuming travel events. This blocks until the context is cancelled.
func (c *CompensationEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CompensationEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CompensationEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from travel topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case travelagent.TripCompensationFailed:
		return c.handleCompensationFailed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled travel event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CompensationEventConsumer) handleCompensationFailed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt travelagent.CompensationFailedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse CompensationFailedEvent data",
			zap.Error(err),
		)
		return nil
	}

	c.logger.Info("processing compensation failed event",
		zap.String("saga_id", evt.SagaID),
		zap.Int("resources", len(evt.Resources)),
	)

	if err := c.recorder.RecordCompensationFailure(ctx, evt); err != nil {
		if domain.IsValidation(err) {
			c.logger.Error("dropping compensation failed event with invalid resources",
				zap.String("saga_id", evt.SagaID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to record orphaned resources",
			zap.String("saga_id", evt.SagaID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
