package consumer

import (
	"context"
	"encoding/json"

	"go-payouts/internal/events"
	"go-payouts/internal/period"
	"go-payouts/internal/shared/contextutil"

	"go.uber.org/zap"
)

// Archiver renders and stores the payouts document of a period.
type Archiver interface {
	Archive(ctx context.Context, p period.Period) (string, error)
}

// ConsumePayoutsSaved archives the payouts document of every period that
// reports a successful save. Undecodable messages and failed saves are
// committed and skipped; archive failures are left uncommitted so the
// message is redelivered.
func ConsumePayoutsSaved(
	ctx context.Context,
	reader MessageReader,
	archiver Archiver,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payouts_saved")
	log.Info("payouts saved consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payouts saved consumer stopped")
				return
			}
			log.Error("fetch payouts saved message failed", zap.Error(err))
			continue
		}

		var event events.PayoutsPeriodSavedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payouts saved event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		p, err := period.Parse(event.Period)
		if err != nil || event.Status != events.SaveStatusSucceeded {
			log.Warn("skipping payouts saved event",
				zap.String("period", event.Period),
				zap.String("status", event.Status),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := ctx
		if rid := header(msg, "request_id"); rid != "" {
			msgCtx = contextutil.WithRequestID(ctx, rid)
		}

		path, err := archiver.Archive(msgCtx, p)
		if err != nil {
			log.Error("archive payouts document failed",
				append(contextutil.LogFields(msgCtx),
					zap.String("period", event.Period),
					zap.String("run_id", event.RunID),
					zap.Error(err),
				)...,
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payouts saved message failed", zap.Error(err))
			continue
		}

		log.Info("payouts document archived",
			append(contextutil.LogFields(msgCtx),
				zap.String("period", event.Period),
				zap.String("run_id", event.RunID),
				zap.String("path", path),
			)...,
		)
	}
}
