package cashflow

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"go-payouts/internal/period"
	"go-payouts/internal/remote"
	"go-payouts/internal/shared/jsonx"
)

// LedgerFinder locates the entry that already represents a period's payroll.
type LedgerFinder interface {
	FindExisting(ctx context.Context, p period.Period) (Entry, bool, error)
}

// LabelFinder scans the most recent ledger entries for one whose text
// contains the period label and that reads as an expense. The ledger has no
// stable key for payroll entries, so the label is their only identity.
type LabelFinder struct {
	backend  remote.Backend
	path     string
	prefix   string
	scanSize int
}

func NewLabelFinder(backend remote.Backend, path, prefix string, scanSize int) *LabelFinder {
	return &LabelFinder{backend: backend, path: path, prefix: prefix, scanSize: scanSize}
}

func (f *LabelFinder) FindExisting(ctx context.Context, p period.Period) (Entry, bool, error) {
	items, err := fetchRecent(ctx, f.backend, f.path, f.scanSize)
	if err != nil {
		return Entry{}, false, err
	}

	label := Label(f.prefix, p)
	for _, raw := range items {
		var re remoteEntry
		if json.Unmarshal(raw, &re) != nil {
			continue
		}
		e := re.entry()
		if e.ID == "" {
			continue
		}
		if strings.Contains(e.Description, label) && e.IsExpense() {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// CashboxPolicy picks the cashbox a payroll expense is booked against. An
// empty id means "no cashbox".
type CashboxPolicy interface {
	Pick(ctx context.Context) (string, error)
}

// FirstCashbox books against the first cashbox the backend lists.
type FirstCashbox struct {
	backend  remote.Backend
	path     string
	scanSize int
}

func NewFirstCashbox(backend remote.Backend, path string, scanSize int) *FirstCashbox {
	return &FirstCashbox{backend: backend, path: path, scanSize: scanSize}
}

func (c *FirstCashbox) Pick(ctx context.Context) (string, error) {
	items, err := fetchRecent(ctx, c.backend, c.path, c.scanSize)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}

	var box struct {
		ID   jsonx.Text `json:"id"`
		UUID jsonx.Text `json:"uuid"`
	}
	if err := json.Unmarshal(items[0], &box); err != nil {
		return "", nil
	}
	return jsonx.FirstNonEmpty(box.ID, box.UUID).Trimmed(), nil
}

// fetchRecent reads a single page of at most size items.
func fetchRecent(ctx context.Context, backend remote.Backend, path string, size int) ([]json.RawMessage, error) {
	target, err := backend.URL(path, url.Values{"page_size": {strconv.Itoa(size)}})
	if err != nil {
		return nil, err
	}
	page, err := backend.FetchPage(ctx, target)
	if err != nil {
		return nil, err
	}
	if size > 0 && len(page.Items) > size {
		return page.Items[:size], nil
	}
	return page.Items, nil
}
