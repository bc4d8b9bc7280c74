package events

import "time"

const (
	PayoutsPeriodSavedTopic = "payouts.period.saved.v1"
	PayoutsPeriodSavedType  = "payouts.period.saved"
	PayoutsAggregateType    = "payout_period"

	SaveStatusSucceeded = "succeeded"
	SaveStatusFailed    = "failed"
)

// PayoutsPeriodSavedEvent is published once per save run of a period.
type PayoutsPeriodSavedEvent struct {
	EventType     string    `json:"event_type"`
	RunID         string    `json:"run_id"`
	RequestID     string    `json:"request_id,omitempty"`
	Period        string    `json:"period"`
	Status        string    `json:"status"`
	Total         int64     `json:"total"`
	FundDelta     int64     `json:"fund_delta"`
	Upserts       int       `json:"upserts"`
	FailedUpserts int       `json:"failed_upserts"`
	Reconcile     string    `json:"reconcile"`
	OccurredAt    time.Time `json:"occurred_at"`
}
