package cmd

import (
	"context"
	"errors"
	"fmt"

	"resort-booking/internal/adaptor"
	"resort-booking/internal/usecase"
	"resort-booking/pkg/stream"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

// SyncConsumer feeds channel events from Kafka into the sync ingestor. The
// message headers carry the same event type and signature as the webhook.
func SyncConsumer(ctx context.Context, sync usecase.SyncService, cfg utils.KafkaConfig, logger *zap.Logger) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	consumer := stream.NewConsumer(cfg.Brokers, cfg.GroupID, cfg.SyncTopic, logger)
	defer consumer.Close()

	logger.Info("Starting channel sync consumer",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.SyncTopic),
		zap.String("group_id", cfg.GroupID),
	)

	err := consumer.Consume(ctx, ChannelMessageHandler(sync))
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume %s: %w", cfg.SyncTopic, err)
	}
	return nil
}

// ChannelMessageHandler adapts one Kafka message to SyncService.ApplyEvent.
// Rejections that a redelivery cannot fix are marked permanent so the
// consumer commits past them.
func ChannelMessageHandler(sync usecase.SyncService) stream.Handler {
	return func(ctx context.Context, msg stream.Message) error {
		err := sync.ApplyEvent(ctx,
			msg.Headers[adaptor.ChannelEventHeader],
			msg.Value,
			msg.Headers[adaptor.ChannelSignatureHeader],
		)
		if err == nil {
			return nil
		}

		if errors.Is(err, usecase.ErrInvalidSignature) ||
			errors.Is(err, usecase.ErrValidation) ||
			errors.Is(err, usecase.ErrUnknownEventType) {
			return stream.MarkPermanent(err)
		}
		return err
	}
}
