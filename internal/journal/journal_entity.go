package journal

import (
	"time"
)

// Run is one save of a period as written to payout_save_runs.
type Run struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RequestID     *string   `gorm:"column:request_id;uniqueIndex" json:"request_id,omitempty"`
	Period        string    `gorm:"column:period;index" json:"period"`
	Status        string    `gorm:"column:status" json:"status"`
	ErrorMessage  string    `gorm:"column:error_message" json:"error_message,omitempty"`
	Upserts       int       `gorm:"column:upserts" json:"upserts"`
	FailedUpserts int       `gorm:"column:failed_upserts" json:"failed_upserts"`
	Total         int64     `gorm:"column:total" json:"total"`
	FundDelta     int64     `gorm:"column:fund_delta" json:"fund_delta"`
	Reconcile     string    `gorm:"column:reconcile" json:"reconcile"`
	StartedAt     time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt    time.Time `gorm:"column:finished_at" json:"finished_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Run) TableName() string {
	return "payout_save_runs"
}
