package payoutrate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go-payouts/internal/period"
	"go-payouts/internal/remote"
	"go-payouts/internal/shared/jsonx"
)

type Repository interface {
	FindByPeriod(ctx context.Context, p period.Period) (PeriodRates, error)
	Upsert(ctx context.Context, rec Record) (Record, error)
}

type repository struct {
	backend  remote.Backend
	path     string
	pageSize int
}

// NewRepository serves rate records from the backend collection at path
// (for example "/barbershop/payouts/").
func NewRepository(backend remote.Backend, path string, pageSize int) Repository {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return &repository{backend: backend, path: path, pageSize: pageSize}
}

type remoteRate struct {
	ID                jsonx.Text `json:"id"`
	Barber            jsonx.Text `json:"barber"`
	BarberID          jsonx.Text `json:"barber_id"`
	Period            jsonx.Text `json:"period"`
	Mode              jsonx.Text `json:"mode"`
	Rate              jsonx.Text `json:"rate"`
	Amount            jsonx.Text `json:"amount"`
	AppointmentsCount jsonx.Text `json:"appointments_count"`
	TotalRevenue      jsonx.Text `json:"total_revenue"`
	PayoutAmount      jsonx.Text `json:"payout_amount"`
}

type upsertPayload struct {
	Barber string `json:"barber"`
	Period string `json:"period"`
	Mode   Mode   `json:"mode"`
	Rate   string `json:"rate"`
}

func (r *repository) FindByPeriod(ctx context.Context, p period.Period) (PeriodRates, error) {
	start, err := r.backend.URL(r.path, url.Values{
		"period":    {p.String()},
		"page_size": {strconv.Itoa(r.pageSize)},
	})
	if err != nil {
		return nil, err
	}

	items, err := remote.LoadAll[remoteRate](ctx, r.backend, start)
	if err != nil {
		return nil, fmt.Errorf("load rates for %s: %w", p, err)
	}

	return groupRates(items, p), nil
}

// groupRates folds rate rows into per-employee slots. Rows of another period,
// rows without an employee and rows of an unknown mode are ignored. The
// first row of an employee supplies the backend's count/revenue/payout.
func groupRates(items []remoteRate, p period.Period) PeriodRates {
	out := make(PeriodRates)
	for _, it := range items {
		emp := jsonx.FirstNonEmpty(it.Barber, it.BarberID).Trimmed()
		if emp == "" {
			continue
		}
		if pk := it.Period.Trimmed(); pk != "" && pk != p.String() {
			continue
		}

		rates, seen := out[emp]
		if !seen {
			rates.EmployeeID = emp
			if n, err := strconv.Atoi(it.AppointmentsCount.Trimmed()); err == nil {
				rates.Completed = n
			}
			rates.Revenue = jsonx.Decimal(it.TotalRevenue)
			rates.Payout = jsonx.Decimal(it.PayoutAmount)
		}

		if mode, err := ParseMode(it.Mode.String()); err == nil {
			rates.setSlot(mode, Slot{
				ID:    it.ID.Trimmed(),
				Value: serverValue(jsonx.FirstNonEmpty(it.Rate, it.Amount).String()),
			})
		}
		out[emp] = rates
	}
	return out
}

// Upsert updates the record in place when its id is known and creates it
// otherwise. The returned record carries the id the backend answered with.
func (r *repository) Upsert(ctx context.Context, rec Record) (Record, error) {
	payload := upsertPayload{
		Barber: rec.EmployeeID,
		Period: rec.Period.String(),
		Mode:   rec.Mode,
		Rate:   strconv.FormatInt(rec.Rate, 10),
	}

	var resp remoteRate
	var err error
	if rec.ID != "" {
		err = r.backend.Put(ctx, r.path+url.PathEscape(rec.ID)+"/", payload, &resp)
	} else {
		err = r.backend.Post(ctx, r.path, payload, &resp)
	}
	if err != nil {
		return rec, fmt.Errorf("upsert %s rate of %s: %w", rec.Mode, rec.EmployeeID, err)
	}

	if id := resp.ID.Trimmed(); id != "" {
		rec.ID = id
	}
	return rec, nil
}
