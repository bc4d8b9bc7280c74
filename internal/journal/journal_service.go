// Package journal records every save run of a period in postgres and queues
// the matching outbox event in the same transaction.
package journal

import (
	"context"
	"database/sql"
	"errors"

	"go-payouts/internal/events"
	journalerrors "go-payouts/internal/journal/errors"
	"go-payouts/internal/messaging/kafka"
	"go-payouts/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultListLimit = 50

type Service interface {
	Record(ctx context.Context, run Run) (Run, error)
	List(ctx context.Context, period string, limit int) ([]Run, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("journal.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("journal.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, logger: l}
}

// Record stores run and its PayoutsPeriodSaved event atomically. A run whose
// request id was already journaled is acknowledged without writing twice.
func (s *service) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" && run.RequestID == nil {
		run.RequestID = &rid
	}

	requestID := ""
	if run.RequestID != nil {
		requestID = *run.RequestID
	}

	event, err := kafka.NewOutboxEvent(
		events.PayoutsPeriodSavedTopic,
		events.PayoutsPeriodSavedType,
		events.PayoutsAggregateType,
		run.Period,
		requestID,
		events.PayoutsPeriodSavedEvent{
			EventType:     events.PayoutsPeriodSavedType,
			RunID:         run.ID,
			RequestID:     requestID,
			Period:        run.Period,
			Status:        run.Status,
			Total:         run.Total,
			FundDelta:     run.FundDelta,
			Upserts:       run.Upserts,
			FailedUpserts: run.FailedUpserts,
			Reconcile:     run.Reconcile,
			OccurredAt:    run.FinishedAt,
		},
	)
	if err != nil {
		return run, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, &run); err != nil {
		if errors.Is(err, journalerrors.ErrDuplicateRequest) {
			s.logger.Warn("save run already journaled, skipping",
				append(contextutil.LogFields(ctx), zap.String("period", run.Period))...,
			)
			return run, nil
		}
		return run, err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return run, err
	}

	if err := tx.Commit(); err != nil {
		return run, err
	}

	s.logger.Info("save run journaled",
		append(contextutil.LogFields(ctx),
			zap.String("run_id", run.ID),
			zap.String("period", run.Period),
			zap.String("status", run.Status),
			zap.String("outbox_id", event.ID),
		)...,
	)
	return run, nil
}

func (s *service) List(ctx context.Context, period string, limit int) ([]Run, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.FindByPeriod(ctx, period, limit)
}
