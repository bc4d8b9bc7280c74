// Package fund keeps the per-period history record of the payout fund: what
// the fund was before the latest save, what it is now, and the difference.
package fund

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go-payouts/internal/period"
	"go-payouts/internal/remote"
	"go-payouts/internal/shared/jsonx"

	"github.com/shopspring/decimal"
)

// Change is the fund movement written for a period.
type Change struct {
	Period   period.Period `json:"period"`
	RecordID string        `json:"record_id,omitempty"`
	OldTotal int64         `json:"old_total"`
	NewTotal int64         `json:"new_total"`
	Delta    int64         `json:"delta"`
}

type Recorder interface {
	Record(ctx context.Context, p period.Period, newTotal int64) (Change, error)
}

type recorder struct {
	backend  remote.Backend
	path     string
	scanSize int
}

func NewRecorder(backend remote.Backend, path string, scanSize int) Recorder {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return &recorder{backend: backend, path: path, scanSize: scanSize}
}

type remoteRecord struct {
	ID           jsonx.Text `json:"id"`
	Period       jsonx.Text `json:"period"`
	OldTotalFund jsonx.Text `json:"old_total_fund"`
	NewTotalFund jsonx.Text `json:"new_total_fund"`
	CreatedAt    jsonx.Text `json:"created_at"`
	UpdatedAt    jsonx.Text `json:"updated_at"`
}

func (r remoteRecord) stamp() string {
	return jsonx.FirstNonEmpty(r.CreatedAt, r.UpdatedAt).Trimmed()
}

type payload struct {
	Period       string `json:"period"`
	OldTotalFund string `json:"old_total_fund"`
	NewTotalFund string `json:"new_total_fund"`
	Total        string `json:"total"`
}

// Record writes the fund change of p. The previous fund is the latest
// record's new_total_fund (or old_total_fund, or zero); that record is
// overwritten when it exists, otherwise a new one is created.
func (r *recorder) Record(ctx context.Context, p period.Period, newTotal int64) (Change, error) {
	latest, found, err := r.latest(ctx, p)
	if err != nil {
		return Change{}, err
	}

	change := Change{Period: p, NewTotal: newTotal}
	if found {
		change.RecordID = latest.ID.Trimmed()
		prev := jsonx.FirstNonEmpty(latest.NewTotalFund, latest.OldTotalFund)
		change.OldTotal = jsonx.Decimal(prev).Round(0).IntPart()
	}
	change.Delta = change.NewTotal - change.OldTotal

	body := payload{
		Period:       p.String(),
		OldTotalFund: money(change.OldTotal),
		NewTotalFund: money(change.NewTotal),
		Total:        money(change.Delta),
	}

	var resp remoteRecord
	if change.RecordID != "" {
		err = r.backend.Put(ctx, r.path+url.PathEscape(change.RecordID)+"/", body, &resp)
	} else {
		err = r.backend.Post(ctx, r.path, body, &resp)
	}
	if err != nil {
		return change, fmt.Errorf("write fund change for %s: %w", p, err)
	}
	if id := resp.ID.Trimmed(); id != "" {
		change.RecordID = id
	}
	return change, nil
}

// latest returns the most recent record of exactly period p, ordered by
// creation (or update) stamp and then id.
func (r *recorder) latest(ctx context.Context, p period.Period) (remoteRecord, bool, error) {
	target, err := r.backend.URL(r.path, url.Values{
		"period":    {p.String()},
		"page_size": {strconv.Itoa(r.scanSize)},
	})
	if err != nil {
		return remoteRecord{}, false, err
	}
	page, err := r.backend.FetchPage(ctx, target)
	if err != nil {
		return remoteRecord{}, false, fmt.Errorf("load fund history for %s: %w", p, err)
	}

	var items []remoteRecord
	for _, raw := range page.Items {
		var rec remoteRecord
		if json.Unmarshal(raw, &rec) != nil {
			continue
		}
		if rec.Period.Trimmed() != p.String() {
			continue
		}
		items = append(items, rec)
	}
	if len(items) == 0 {
		return remoteRecord{}, false, nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].stamp(), items[j].stamp()
		if a != "" && b != "" && a != b {
			return a < b
		}
		return items[i].ID.Trimmed() < items[j].ID.Trimmed()
	})
	return items[len(items)-1], true, nil
}

func money(n int64) string {
	return decimal.NewFromInt(n).StringFixed(2)
}
