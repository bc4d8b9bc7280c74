package producer

import (
	"context"
	"time"

	"go-payouts/internal/messaging/kafka"
	"go-payouts/internal/shared/metrics"

	"go.uber.org/zap"
)

const batchSize = 50

func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := ProcessPending(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
			if n, err := repo.Backlog(ctx); err == nil {
				metrics.OutboxBacklog.Set(float64(n))
			}
		}
	}
}

// ProcessPending claims one batch of due events, publishes them and reports
// how many were sent. A failed publish marks that event for retry and moves on.
func ProcessPending(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) (int, error) {
	events, err := repo.ClaimDue(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		fields := []zap.Field{
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		}
		if event.RequestID != "" {
			fields = append(fields, zap.String("request_id", event.RequestID))
		}

		if err := publishEvent(ctx, writer, event); err != nil {
			metrics.OutboxPublished.WithLabelValues("failed").Inc()
			if event.RetryCount+1 >= kafka.MaxOutboxAttempts {
				fields = append(fields, zap.Bool("dead", true))
			}
			logger.Error("publish outbox event failed", append(fields, zap.Error(err))...)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", append(fields, zap.Error(markErr))...)
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed", append(fields, zap.Error(err))...)
			continue
		}

		sent++
		metrics.OutboxPublished.WithLabelValues("sent").Inc()
		logger.Info("outbox event sent", fields...)
	}

	return sent, nil
}
