// Package payroll orchestrates the payouts console of one or more periods:
// loading, rate edits, saving with reload and ledger reconciliation, and the
// drill-down and report views built on top of them.
package payroll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go-payouts/internal/appointment"
	"go-payouts/internal/cashflow"
	"go-payouts/internal/employee"
	"go-payouts/internal/events"
	"go-payouts/internal/fund"
	"go-payouts/internal/journal"
	journalerrors "go-payouts/internal/journal/errors"
	"go-payouts/internal/payoutrate"
	payrollerrors "go-payouts/internal/payroll/errors"
	"go-payouts/internal/period"
	"go-payouts/internal/productsale"
	"go-payouts/internal/report"
	"go-payouts/internal/shared/contextutil"
	"go-payouts/internal/shared/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const saveLockPrefix = "payouts:save:"

// SaveLockReleaseScript deletes the save lock only while it still holds the
// caller's token, so an expired lock taken over by another replica survives.
const SaveLockReleaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type Service interface {
	Load(ctx context.Context, p period.Period) View
	View(ctx context.Context, p period.Period) View
	EditRate(ctx context.Context, p period.Period, employeeID, mode, raw string) (EditResult, error)
	Save(ctx context.Context, p period.Period) (View, error)
	Days(ctx context.Context, p period.Period, employeeID string) (DayBreakdown, error)
	Report(ctx context.Context, end period.Date, weeks int) (report.RangeReport, error)
	Document(ctx context.Context, p period.Period) (report.Document, error)
	Journal(ctx context.Context, p period.Period, limit int) ([]journal.Run, error)
	ProductSaleRecorded(ctx context.Context, sale productsale.Sale)
}

// Reconciler is the ledger side of a save.
type Reconciler interface {
	Reconcile(ctx context.Context, p period.Period, total int64) (cashflow.Outcome, error)
}

// ProductTotals sums the product sale commissions of a month per employee.
type ProductTotals interface {
	MonthTotals(ctx context.Context, p period.Period) (map[string]int64, error)
}

// Dependencies wires the orchestrator. Fund, Journal, ProductSales and Redis
// are optional.
type Dependencies struct {
	Employees    employee.Service
	Appointments appointment.Repository
	Rates        payoutrate.Repository
	Ledger       Reconciler
	Fund         fund.Recorder
	Journal      journal.Service
	ProductSales ProductTotals
	Redis        *redis.Client
	SaveLockTTL  time.Duration
	LockToken    func() string
}

// workspace is the in-memory state of one period. mu guards every field but
// saving and is never held across backend calls. gen moves on every save so
// a load that was in flight across it can tell its snapshot is stale.
type workspace struct {
	mu        sync.Mutex
	saving    atomic.Bool
	gen       uint64
	loaded    bool
	employees []employee.Employee
	services  []appointment.Service
	agg       appointment.Aggregates
	store     *payoutrate.Store
	products  map[string]int64
	state     State
	lastErr   string
	loadedAt  time.Time
}

type service struct {
	deps   Dependencies
	now    func() time.Time
	loads  singleflight.Group
	logger *zap.Logger

	mu         sync.Mutex
	workspaces map[period.Period]*workspace
}

func NewService(deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if deps.SaveLockTTL <= 0 {
		deps.SaveLockTTL = 2 * time.Minute
	}
	if deps.LockToken == nil {
		deps.LockToken = uuid.NewString
	}
	return &service{
		deps:       deps,
		now:        time.Now,
		logger:     l,
		workspaces: make(map[period.Period]*workspace),
	}
}

func (s *service) workspace(p period.Period) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[p]
	if !ok {
		ws = &workspace{state: StateIdle, store: payoutrate.NewStore(p, nil)}
		s.workspaces[p] = ws
	}
	return ws
}

func (s *service) loadedWorkspace(p period.Period) (*workspace, error) {
	ws := s.workspace(p)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.loaded {
		return nil, payrollerrors.ErrPeriodNotLoaded
	}
	return ws, nil
}

type snapshot struct {
	employees []employee.Employee
	services  []appointment.Service
	apps      []appointment.Appointment
	rates     payoutrate.PeriodRates
	products  map[string]int64
}

func (s *service) fetch(ctx context.Context, p period.Period) (snapshot, error) {
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emps, err := s.deps.Employees.GetAll(gctx)
		snap.employees = emps
		return err
	})
	g.Go(func() error {
		svcs, err := s.deps.Appointments.FindServices(gctx)
		snap.services = svcs
		return err
	})
	g.Go(func() error {
		apps, err := s.deps.Appointments.FindAll(gctx)
		snap.apps = apps
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	rates, err := s.deps.Rates.FindByPeriod(ctx, p)
	if err != nil {
		return snapshot{}, err
	}
	snap.rates = rates
	snap.products = s.productTotals(ctx, p)
	return snap, nil
}

// productTotals is best effort: without them the period still loads, just
// without product lines.
func (s *service) productTotals(ctx context.Context, p period.Period) map[string]int64 {
	if s.deps.ProductSales == nil {
		return map[string]int64{}
	}
	totals, err := s.deps.ProductSales.MonthTotals(ctx, p)
	if err != nil {
		s.logger.Warn("product sales unavailable, continuing without them",
			append(contextutil.LogFields(ctx), zap.String("period", p.String()), zap.Error(err))...,
		)
		return map[string]int64{}
	}
	return totals
}

// Load is a forced reload: the employee directory cache is dropped before
// the period is fetched again.
func (s *service) Load(ctx context.Context, p period.Period) View {
	if ws := s.workspace(p); ws.saving.Load() {
		return s.render(ws, p)
	}
	if err := s.deps.Employees.Invalidate(ctx); err != nil {
		s.logger.Warn("employee directory not invalidated", zap.Error(err))
	}
	return s.load(ctx, p)
}

func (s *service) load(ctx context.Context, p period.Period) View {
	s.refresh(ctx, p)
	return s.render(s.workspace(p), p)
}

// refresh fetches everything a period needs and replaces its workspace. A
// failure leaves an empty workspace whose next view carries the error. A
// refresh that starts while the period is saving does nothing, and one that
// was overtaken by a save drops its snapshot.
func (s *service) refresh(ctx context.Context, p period.Period) {
	ws := s.workspace(p)

	_, _, _ = s.loads.Do(p.String(), func() (any, error) {
		ws.mu.Lock()
		gen := ws.gen
		ws.mu.Unlock()
		if ws.saving.Load() {
			return nil, nil
		}

		snap, err := s.fetch(ctx, p)

		ws.mu.Lock()
		defer ws.mu.Unlock()

		if ws.saving.Load() || ws.gen != gen {
			s.logger.Debug("load overtaken by a save, snapshot dropped",
				append(contextutil.LogFields(ctx), zap.String("period", p.String()))...,
			)
			return nil, nil
		}

		ws.loaded = true
		ws.loadedAt = s.now()
		ws.state = StateIdle
		if err != nil {
			s.logger.Error("failed to load period",
				append(contextutil.LogFields(ctx), zap.String("period", p.String()), zap.Error(err))...,
			)
			ws.employees = nil
			ws.services = nil
			ws.agg = appointment.Aggregate(nil, p)
			ws.store = payoutrate.NewStore(p, nil)
			ws.products = map[string]int64{}
			ws.lastErr = msgLoadFailed
			return nil, err
		}

		ws.employees = snap.employees
		ws.services = snap.services
		ws.agg = appointment.Aggregate(snap.apps, p)
		ws.store = payoutrate.NewStore(p, snap.rates)
		ws.products = snap.products
		ws.lastErr = ""

		s.logger.Info("period loaded",
			append(contextutil.LogFields(ctx),
				zap.String("period", p.String()),
				zap.Int("employees", len(snap.employees)),
				zap.Int("appointments", len(snap.apps)),
				zap.Int("rated_employees", len(snap.rates)),
				zap.Int("product_sellers", len(snap.products)),
			)...,
		)
		return nil, nil
	})
}

func (ws *workspace) isLoaded() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.loaded
}

// View renders a period, loading it on first access.
func (s *service) View(ctx context.Context, p period.Period) View {
	ws := s.workspace(p)
	if !ws.isLoaded() {
		return s.load(ctx, p)
	}
	return s.render(ws, p)
}

// render builds the view of ws. A pending error is shown and then cleared,
// so it surfaces exactly once.
func (s *service) render(ws *workspace, p period.Period) View {
	return s.view(ws, p, true)
}

func (s *service) view(ws *workspace, p period.Period, consume bool) View {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	rows := ws.rows()
	stats := ws.agg.Total()

	v := View{
		Period:       p,
		Rows:         rows,
		Total:        payoutrate.Total(rows),
		ProductTotal: productTotal(rows),
		Completed:    stats.Completed,
		Revenue:      stats.Revenue,
		Employees:    len(ws.employees),
		Services:     len(ws.services),
		Unsaved:      len(ws.store.Dirty()),
		State:        ws.state,
		Error:        ws.lastErr,
		LoadedAt:     ws.loadedAt,
	}
	if consume && ws.lastErr != "" {
		ws.lastErr = ""
		if ws.state == StateError {
			ws.state = StateIdle
		}
	}
	return v
}

// rows builds the payout rows with each employee's product commissions.
// Callers hold mu.
func (ws *workspace) rows() []payoutrate.PayoutRow {
	rows := payoutrate.BuildPayoutRows(ws.employees, ws.store, ws.agg)
	for i := range rows {
		rows[i].Product = ws.products[rows[i].EmployeeID]
	}
	return rows
}

func productTotal(rows []payoutrate.PayoutRow) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.Product
	}
	return sum
}

func (s *service) EditRate(ctx context.Context, p period.Period, employeeID, mode, raw string) (EditResult, error) {
	m, err := payoutrate.ParseMode(mode)
	if err != nil {
		return EditResult{}, payrollerrors.ErrInvalidMode
	}

	ws, err := s.loadedWorkspace(p)
	if err != nil {
		return EditResult{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	// Save takes its pending set under mu after raising saving; an edit
	// accepted now would miss that set and then be replaced by the reload.
	if ws.saving.Load() {
		return EditResult{}, payrollerrors.ErrSaveInProgress
	}

	emp, ok := employee.Index(ws.employees)[employeeID]
	if !ok {
		return EditResult{}, payrollerrors.ErrEmployeeNotFound
	}

	v, err := ws.store.SetEditedValue(employeeID, m, raw)
	if err != nil {
		return EditResult{}, payrollerrors.ErrInvalidMode
	}
	ws.lastErr = ""
	if ws.state == StateError {
		ws.state = StateIdle
	}

	s.logger.Debug("rate edited",
		append(contextutil.LogFields(ctx),
			zap.String("period", p.String()),
			zap.String("employee_id", employeeID),
			zap.String("mode", string(m)),
			zap.Stringer("kind", v.Kind()),
		)...,
	)

	row := payoutrate.BuildPayoutRow(emp, ws.store, ws.agg)
	row.Product = ws.products[employeeID]
	return EditResult{
		Value: v,
		Row:   row,
		Total: payoutrate.Total(payoutrate.BuildPayoutRows(ws.employees, ws.store, ws.agg)),
	}, nil
}

// Save persists every pending edit of the period, reloads the canonical
// rates and pushes the new fund to the fund history and the cash ledger.
// Upsert, fund and ledger failures are logged and counted; only a failed
// reload puts the period into the error state.
func (s *service) Save(ctx context.Context, p period.Period) (View, error) {
	ws, err := s.loadedWorkspace(p)
	if err != nil {
		return View{}, err
	}

	if !ws.saving.CompareAndSwap(false, true) {
		return View{}, payrollerrors.ErrSaveInProgress
	}
	defer ws.saving.Store(false)

	unlock, err := s.lock(ctx, p)
	if err != nil {
		return View{}, err
	}
	defer unlock()

	timer := prometheus.NewTimer(metrics.SaveDuration)
	defer timer.ObserveDuration()

	log := s.logger.With(append(contextutil.LogFields(ctx), zap.String("period", p.String()))...)
	run := journal.Run{Period: p.String(), StartedAt: s.now()}

	ws.mu.Lock()
	ws.gen++
	ws.state = StateSaving
	ws.lastErr = ""
	pending := ws.store.Pending()
	ws.mu.Unlock()

	run.Upserts, run.FailedUpserts = s.persist(ctx, log, pending)

	rates, err := s.deps.Rates.FindByPeriod(ctx, p)
	if err != nil {
		log.Error("failed to reload rates after save", zap.Error(err))

		ws.mu.Lock()
		ws.state = StateError
		ws.lastErr = msgReloadFailed
		ws.mu.Unlock()

		metrics.Saves.WithLabelValues(events.SaveStatusFailed).Inc()
		run.Status = events.SaveStatusFailed
		run.ErrorMessage = err.Error()
		s.journal(ctx, log, run)
		return s.render(ws, p), nil
	}

	ws.mu.Lock()
	ws.store.Replace(rates)
	total := payoutrate.Total(payoutrate.BuildPayoutRows(ws.employees, ws.store, ws.agg))
	ws.mu.Unlock()
	run.Total = total

	if s.deps.Fund != nil {
		change, err := s.deps.Fund.Record(ctx, p, total)
		if err != nil {
			log.Warn("failed to record fund history", zap.Error(err))
		} else {
			run.FundDelta = change.Delta
		}
	}

	outcome, err := s.deps.Ledger.Reconcile(ctx, p, total)
	if err != nil {
		log.Error("cash ledger reconciliation failed", zap.Int64("total", total), zap.Error(err))
	}
	run.Reconcile = string(outcome)

	ws.mu.Lock()
	ws.state = StateIdle
	ws.mu.Unlock()

	metrics.Saves.WithLabelValues(events.SaveStatusSucceeded).Inc()
	run.Status = events.SaveStatusSucceeded
	s.journal(ctx, log, run)

	log.Info("period saved",
		zap.Int("upserts", run.Upserts),
		zap.Int("failed_upserts", run.FailedUpserts),
		zap.Int64("total", total),
		zap.String("reconcile", run.Reconcile),
	)
	return s.render(ws, p), nil
}

// persist issues the upserts concurrently and waits for all of them. Nothing
// is retried; the reload that follows shows what actually stuck.
func (s *service) persist(ctx context.Context, log *zap.Logger, pending []payoutrate.Record) (attempted, failed int) {
	var (
		wg     sync.WaitGroup
		nFails atomic.Int64
	)
	for _, rec := range pending {
		wg.Add(1)
		go func(rec payoutrate.Record) {
			defer wg.Done()
			if _, err := s.deps.Rates.Upsert(ctx, rec); err != nil {
				nFails.Add(1)
				metrics.Upserts.WithLabelValues(string(rec.Mode), "failed").Inc()
				log.Warn("rate upsert failed",
					zap.String("employee_id", rec.EmployeeID),
					zap.String("mode", string(rec.Mode)),
					zap.Error(err),
				)
				return
			}
			metrics.Upserts.WithLabelValues(string(rec.Mode), "succeeded").Inc()
		}(rec)
	}
	wg.Wait()
	return len(pending), int(nFails.Load())
}

// lock takes the cross-replica save lock of p. Without redis, or when redis
// is unreachable, only the in-process busy flag applies.
func (s *service) lock(ctx context.Context, p period.Period) (func(), error) {
	noop := func() {}
	if s.deps.Redis == nil {
		return noop, nil
	}

	key := saveLockPrefix + p.String()
	token := s.deps.LockToken()
	ok, err := s.deps.Redis.SetNX(ctx, key, token, s.deps.SaveLockTTL).Result()
	if err != nil {
		s.logger.Warn("save lock unavailable, continuing without it",
			zap.String("period", p.String()), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, payrollerrors.ErrSaveInProgress
	}
	return func() {
		err := s.deps.Redis.Eval(context.WithoutCancel(ctx), SaveLockReleaseScript, []string{key}, token).Err()
		if err != nil {
			s.logger.Warn("failed to release save lock", zap.String("period", p.String()), zap.Error(err))
		}
	}, nil
}

func (s *service) journal(ctx context.Context, log *zap.Logger, run journal.Run) {
	if s.deps.Journal == nil {
		return
	}
	run.FinishedAt = s.now()
	if _, err := s.deps.Journal.Record(ctx, run); err != nil {
		log.Error("failed to journal save run", zap.Error(err))
	}
}

func (s *service) Days(ctx context.Context, p period.Period, employeeID string) (DayBreakdown, error) {
	ws, err := s.loadedWorkspace(p)
	if err != nil {
		return DayBreakdown{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	name := employee.NoName
	if emp, ok := employee.Index(ws.employees)[employeeID]; ok {
		name = emp.Name
	} else if ws.agg.For(employeeID).IsZero() {
		return DayBreakdown{}, payrollerrors.ErrEmployeeNotFound
	}

	rates := ws.store.Rates(employeeID)
	out := DayBreakdown{Period: p, EmployeeID: employeeID, Name: name, Rates: rates}

	total := DayLine{Kind: LineTotal, Label: totalLineLabel}
	for _, d := range ws.agg.Days(employeeID) {
		date := d.Date
		line := DayLine{
			Kind:      LineDay,
			Label:     d.Date.String(),
			Date:      &date,
			Completed: d.Completed,
			Revenue:   d.Revenue,
			Payout:    rates.Variable(d.Completed, d.Revenue),
		}
		out.Lines = append(out.Lines, line)

		total.Completed += line.Completed
		total.Revenue = total.Revenue.Add(line.Revenue)
		total.Payout += line.Payout
	}

	product := ws.products[employeeID]
	out.Lines = append(out.Lines,
		DayLine{Kind: LineFixed, Label: fixedLineLabel, Payout: rates.Fixed},
		DayLine{Kind: LineProduct, Label: productLineLabel, Payout: product},
	)
	total.Payout += rates.Fixed + product
	out.Lines = append(out.Lines, total)

	return out, nil
}

// Report builds the range report ending on end. Fixed rates and product
// commissions come from the month end falls in; a loaded workspace of that
// month is used as is, unsaved edits included.
func (s *service) Report(ctx context.Context, end period.Date, weeks int) (report.RangeReport, error) {
	from, to, err := report.Span(end, weeks)
	if err != nil {
		return report.RangeReport{}, payrollerrors.ErrInvalidWeeks
	}

	var (
		emps []employee.Employee
		apps []appointment.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		emps, err = s.deps.Employees.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		apps, err = s.deps.Appointments.FindAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load report data", append(contextutil.LogFields(ctx), zap.Error(err))...)
		return report.RangeReport{}, errors.Join(payrollerrors.ErrLoadFailed, err)
	}

	month := to.Period()
	ws := s.workspace(month)
	ws.mu.Lock()
	store := ws.store
	products := ws.products
	loaded := ws.loaded
	ws.mu.Unlock()

	if !loaded {
		rates, err := s.deps.Rates.FindByPeriod(ctx, month)
		if err != nil {
			s.logger.Warn("report rates unavailable, reporting without them",
				append(contextutil.LogFields(ctx), zap.String("period", month.String()), zap.Error(err))...,
			)
		}
		store = payoutrate.NewStore(month, rates)
		products = s.productTotals(ctx, month)
	}

	ratesFor := func(id string) payoutrate.Rates {
		if loaded {
			ws.mu.Lock()
			defer ws.mu.Unlock()
		}
		return store.Rates(id)
	}
	productsFor := func(id string) int64 {
		if loaded {
			ws.mu.Lock()
			defer ws.mu.Unlock()
		}
		return products[id]
	}

	return report.BuildRange(emps, apps, ratesFor, productsFor, from, to)
}

// Document is the export of a period, loading it on first access. It leaves
// a pending error in place for the next view.
func (s *service) Document(ctx context.Context, p period.Period) (report.Document, error) {
	ws := s.workspace(p)
	if !ws.isLoaded() {
		s.refresh(ctx, p)
	}
	v := s.view(ws, p, false)
	if v.Error != "" && len(v.Rows) == 0 {
		return report.Document{}, payrollerrors.ErrLoadFailed
	}
	return report.NewDocument(p, v.Rows, s.now()), nil
}

func (s *service) Journal(ctx context.Context, p period.Period, limit int) ([]journal.Run, error) {
	if s.deps.Journal == nil {
		return nil, journalerrors.ErrJournalUnavailable
	}
	return s.deps.Journal.List(ctx, p.String(), limit)
}

// ProductSaleRecorded adds a new commission to the loaded workspace of the
// month it was made in. Unloaded months pick it up when they load.
func (s *service) ProductSaleRecorded(ctx context.Context, sale productsale.Sale) {
	if sale.EmployeeID == "" || sale.CreatedAt.IsZero() {
		return
	}
	p := period.ToCalendarDate(sale.CreatedAt).Period()

	ws := s.workspace(p)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.loaded {
		return
	}
	if ws.products == nil {
		ws.products = map[string]int64{}
	}
	ws.products[sale.EmployeeID] += sale.Payout.Round(0).IntPart()

	s.logger.Debug("product sale applied",
		append(contextutil.LogFields(ctx),
			zap.String("period", p.String()),
			zap.String("employee_id", sale.EmployeeID),
		)...,
	)
}
