// Package cashflow keeps the cash ledger's payroll expense for a period in
// line with the computed payout fund.
package cashflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go-payouts/internal/period"
	"go-payouts/internal/remote"
	"go-payouts/internal/shared/contextutil"
	"go-payouts/internal/shared/metrics"

	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

var ErrNoEncoder = errors.New("cashflow: no entry encoder configured")

type Reconciler struct {
	backend   remote.Backend
	path      string
	prefix    string
	finder    LedgerFinder
	cashboxes CashboxPolicy
	encoders  []EntryEncoder
	logger    *zap.Logger
}

type Option func(*Reconciler)

func WithFinder(f LedgerFinder) Option {
	return func(r *Reconciler) { r.finder = f }
}

func WithCashboxPolicy(p CashboxPolicy) Option {
	return func(r *Reconciler) { r.cashboxes = p }
}

func WithEncoders(encoders ...EntryEncoder) Option {
	return func(r *Reconciler) { r.encoders = encoders }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l.Named("cashflow.reconciler")
		}
	}
}

type Config struct {
	CashflowsPath string
	CashboxesPath string
	LabelPrefix   string
	ScanSize      int
}

// NewReconciler wires the default label finder, first-cashbox policy and
// both ledger schemas. Options replace any of them.
func NewReconciler(backend remote.Backend, cfg Config, opts ...Option) *Reconciler {
	path := cfg.CashflowsPath
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	r := &Reconciler{
		backend:   backend,
		path:      path,
		prefix:    cfg.LabelPrefix,
		finder:    NewLabelFinder(backend, path, cfg.LabelPrefix, cfg.ScanSize),
		cashboxes: NewFirstCashbox(backend, cfg.CashboxesPath, cfg.ScanSize),
		encoders:  DefaultEncoders(),
		logger:    zap.L().Named("cashflow.reconciler"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile makes the ledger hold exactly one payroll expense of total for
// p: the existing entry is overwritten in place, otherwise one is created.
// A total of zero or less is left alone without touching the network.
//
// Cashbox and lookup failures degrade (no cashbox, not found). Encoders are
// tried in order until one is accepted; if none is, their errors are
// returned joined.
func (r *Reconciler) Reconcile(ctx context.Context, p period.Period, total int64) (Outcome, error) {
	if total <= 0 {
		metrics.Reconciles.WithLabelValues(string(OutcomeSkipped)).Inc()
		return OutcomeSkipped, nil
	}
	if len(r.encoders) == 0 {
		return OutcomeFailed, ErrNoEncoder
	}

	log := r.logger.With(append(contextutil.LogFields(ctx), zap.String("period", p.String()))...)

	cashbox, err := r.cashboxes.Pick(ctx)
	if err != nil {
		log.Warn("cashbox lookup failed, booking without cashbox", zap.Error(err))
		cashbox = ""
	}

	existing, found, err := r.finder.FindExisting(ctx, p)
	if err != nil {
		log.Warn("ledger lookup failed, treating as absent", zap.Error(err))
		found = false
	}

	expense := Expense{
		Period:  p,
		Label:   Label(r.prefix, p),
		Amount:  total,
		Cashbox: cashbox,
	}

	var errs []error
	for _, enc := range r.encoders {
		payload := enc.Encode(expense)

		if found {
			err = r.backend.Put(ctx, r.path+url.PathEscape(existing.ID)+"/", payload, nil)
		} else {
			err = r.backend.Post(ctx, r.path, payload, nil)
		}
		if err == nil {
			outcome := OutcomeCreated
			if found {
				outcome = OutcomeUpdated
			}
			metrics.Reconciles.WithLabelValues(string(outcome)).Inc()
			log.Info("payroll expense reconciled",
				zap.String("outcome", string(outcome)),
				zap.String("schema", enc.Name()),
				zap.Int64("amount", total),
				zap.String("entry_id", existing.ID),
			)
			return outcome, nil
		}

		log.Warn("ledger rejected payload", zap.String("schema", enc.Name()), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s schema: %w", enc.Name(), err))
	}

	metrics.Reconciles.WithLabelValues(string(OutcomeFailed)).Inc()
	return OutcomeFailed, errors.Join(errs...)
}
