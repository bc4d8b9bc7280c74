package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go-payouts/internal/events"
	"go-payouts/internal/messaging/kafka/consumer"
	"go-payouts/internal/period"
	"go-payouts/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeReader serves queued messages and cancels the consumer once drained.
type fakeReader struct {
	queue     []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.queue) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.queue[0]
	f.queue = f.queue[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

type fakeArchiver struct {
	fn    func(ctx context.Context, p period.Period) (string, error)
	calls []period.Period
}

func (f *fakeArchiver) Archive(ctx context.Context, p period.Period) (string, error) {
	f.calls = append(f.calls, p)
	return f.fn(ctx, p)
}

func savedMessage(t *testing.T, offset int64, p, status string) kafkago.Message {
	t.Helper()
	raw, err := json.Marshal(events.PayoutsPeriodSavedEvent{
		EventType: events.PayoutsPeriodSavedType,
		RunID:     "run",
		Period:    p,
		Status:    status,
	})
	assert.NoError(t, err)
	return kafkago.Message{
		Offset:  offset,
		Value:   raw,
		Headers: []kafkago.Header{{Key: "request_id", Value: []byte("rid-9")}},
	}
}

func TestConsumePayoutsSaved(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		queue: []kafkago.Message{
			savedMessage(t, 1, "2025-03", "succeeded"),
			{Offset: 2, Value: []byte("not json")},
			savedMessage(t, 3, "2025-04", "failed"),
			savedMessage(t, 4, "2025-05", "succeeded"),
		},
	}
	archiver := &fakeArchiver{fn: func(ctx context.Context, p period.Period) (string, error) {
		assert.Equal(t, "rid-9", contextutil.GetRequestID(ctx))
		if p.String() == "2025-05" {
			return "", errors.New("disk full")
		}
		return "storage/payouts/" + p.String() + ".pdf", nil
	}}

	consumer.ConsumePayoutsSaved(ctx, reader, archiver, zap.NewNop())

	assert.Len(t, archiver.calls, 2)

	var offsets []int64
	for _, m := range reader.committed {
		offsets = append(offsets, m.Offset)
	}
	assert.Equal(t, []int64{1, 2, 3}, offsets)
}
