package journal_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payouts/internal/events"
	"go-payouts/internal/journal"
	journalerrors "go-payouts/internal/journal/errors"
	"go-payouts/internal/messaging/kafka"
	"go-payouts/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	createFn func(ctx context.Context, run *journal.Run) error
	findFn   func(ctx context.Context, period string, limit int) ([]journal.Run, error)
	tx       *sql.Tx
}

func (f *fakeRepo) WithTx(tx *sql.Tx) journal.Repository {
	f.tx = tx
	return f
}

func (f *fakeRepo) Create(ctx context.Context, run *journal.Run) error {
	return f.createFn(ctx, run)
}

func (f *fakeRepo) FindByPeriod(ctx context.Context, period string, limit int) ([]journal.Run, error) {
	return f.findFn(ctx, period, limit)
}

type fakeOutbox struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	tx       *sql.Tx
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	f.tx = tx
	return f
}

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	return f.createFn(ctx, event)
}

func (f *fakeOutbox) ClaimDue(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) Backlog(context.Context) (int, error) { return 0, nil }

func (f *fakeOutbox) MarkSent(context.Context, string) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, string, string) error { return nil }

func TestService_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var stored journal.Run
	repo := &fakeRepo{createFn: func(_ context.Context, run *journal.Run) error {
		stored = *run
		return nil
	}}
	var queued kafka.OutboxEvent
	outbox := &fakeOutbox{createFn: func(_ context.Context, event kafka.OutboxEvent) error {
		queued = event
		return nil
	}}
	svc := journal.NewService(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	run, err := svc.Record(ctx, journal.Run{
		Period:     "2025-03",
		Status:     events.SaveStatusSucceeded,
		Total:      1500,
		FinishedAt: time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, run.ID, stored.ID)
	require.NotNil(t, stored.RequestID)
	assert.Equal(t, "rid-1", *stored.RequestID)
	assert.NotNil(t, repo.tx)
	assert.Same(t, repo.tx, outbox.tx)

	assert.Equal(t, events.PayoutsPeriodSavedTopic, queued.Topic)
	assert.Equal(t, "2025-03", queued.AggregateID)
	assert.Equal(t, "rid-1", queued.RequestID)

	var payload events.PayoutsPeriodSavedEvent
	require.NoError(t, json.Unmarshal(queued.Payload, &payload))
	assert.Equal(t, run.ID, payload.RunID)
	assert.Equal(t, int64(1500), payload.Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Record_DuplicateRequestIsAcknowledged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakeRepo{createFn: func(context.Context, *journal.Run) error {
		return journalerrors.ErrDuplicateRequest
	}}
	outbox := &fakeOutbox{createFn: func(context.Context, kafka.OutboxEvent) error {
		t.Fatal("outbox must not be written for a duplicate run")
		return nil
	}}
	svc := journal.NewService(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = svc.Record(context.Background(), journal.Run{Period: "2025-03", Status: events.SaveStatusSucceeded})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Record_OutboxFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &fakeRepo{createFn: func(context.Context, *journal.Run) error { return nil }}
	outbox := &fakeOutbox{createFn: func(context.Context, kafka.OutboxEvent) error {
		return errors.New("insert failed")
	}}
	svc := journal.NewService(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = svc.Record(context.Background(), journal.Run{Period: "2025-03", Status: events.SaveStatusFailed})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_List_CapsLimit(t *testing.T) {
	repo := &fakeRepo{findFn: func(_ context.Context, period string, limit int) ([]journal.Run, error) {
		assert.Equal(t, "2025-03", period)
		assert.Equal(t, 50, limit)
		return []journal.Run{{ID: "r1"}}, nil
	}}
	svc := journal.NewService(nil, repo, &fakeOutbox{})

	runs, err := svc.List(context.Background(), "2025-03", 1000)

	assert.NoError(t, err)
	assert.Len(t, runs, 1)
}
