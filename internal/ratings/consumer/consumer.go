package consumer

import (
	"context"

	"buslane/internal/ratings/service"
	"buslane/pkg/events"
	"buslane/pkg/kafka"
	kafka_config "buslane/pkg/kafka/config"
	kafka_middleware "buslane/pkg/kafka/middleware"
	"buslane/pkg/logger"
)

const consumerGroupID = "ratings-worker"

// NewRatingConsumer builds the consumer for the rating events topic.
// Undecodable payloads are permanent failures and land in the DLQ.
func NewRatingConsumer(kafkaCfg *kafka_config.Config, svc service.RatingService, log *logger.Logger) (*kafka.Consumer, error) {
	handler := func(ctx context.Context, msg kafka.Message) error {
		var event events.RatingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode rating event", err)
		}
		return svc.Apply(ctx, event)
	}

	c, err := kafka.NewConsumer(
		kafkaCfg,
		events.TopicRatingEvents,
		consumerGroupID,
		events.TopicRatingEventsDLQ,
		handler,
	)
	if err != nil {
		return nil, err
	}

	c.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	return c, nil
}
