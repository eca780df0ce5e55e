package dispatch

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/events"
	"github.com/intu-mobility/service-ride/internal/platform/kafka"
)

// DispatchEventConsumer listens to dispatch events and advances trips when a
// driver is assigned.
type DispatchEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.TripService
	logger   *zap.Logger
}

// NewDispatchEventConsumer creates a new DispatchEventConsumer.
func NewDispatchEventConsumer(
	brokers []string,
	groupID string,
	service *application.TripService,
	logger *zap.Logger,
) *DispatchEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicDispatchEvents, logger)
	return &DispatchEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming dispatch events. This blocks until the context is
// cancelled.
func (c *DispatchEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *DispatchEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *DispatchEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from dispatch topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.DriverAssigned:
		return c.handleDriverAssigned(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled dispatch event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *DispatchEventConsumer) handleDriverAssigned(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.DriverAssignedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse DriverAssignedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing driver assigned event",
		zap.String("trip_id", evt.TripID.String()),
		zap.String("driver_id", evt.DriverID.String()),
	)

	if _, err := c.service.AssignDriver(ctx, evt.TripID, evt.DriverID); err != nil {
		c.logger.Error("failed to assign driver to trip",
			zap.String("trip_id", evt.TripID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("driver assigned to trip",
		zap.String("trip_id", evt.TripID.String()),
	)
	return nil
}
