package app

import (
	"go-payouts/internal/appointment"
	"go-payouts/internal/cashflow"
	"go-payouts/internal/config"
	"go-payouts/internal/employee"
	"go-payouts/internal/fund"
	"go-payouts/internal/journal"
	"go-payouts/internal/payoutrate"
	"go-payouts/internal/payroll"
	"go-payouts/internal/productsale"
	"go-payouts/internal/remote"
	"go-payouts/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newBackend(cfg *config.Config) (*remote.Client, error) {
	return remote.NewClient(cfg.BackendURL, cfg.BackendTimeout(), remote.WithToken(cfg.BackendToken))
}

// newPayrollService wires the orchestrator over the accounting backend.
// journalService may be nil.
func newPayrollService(
	cfg *config.Config,
	backend *remote.Client,
	rdb *redis.Client,
	journalService journal.Service,
	productSales payroll.ProductTotals,
) (payroll.Service, error) {
	employeesURL, err := backend.URL(cfg.EmployeesPath, nil)
	if err != nil {
		return nil, err
	}
	appointmentsURL, err := backend.URL(cfg.AppointmentsPath, nil)
	if err != nil {
		return nil, err
	}
	servicesURL, err := backend.URL(cfg.ServicesPath, nil)
	if err != nil {
		return nil, err
	}

	// --- Repositories ---
	appointmentRepo := appointment.NewRepository(backend, appointmentsURL, servicesURL)
	rateRepo := payoutrate.NewRepository(backend, cfg.PayoutsPath, cfg.RatesPageSize)

	// --- Services ---
	employeeService := employee.NewService(backend, employeesURL, rdb, cfg.DirectoryCacheTTL())
	fundRecorder := fund.NewRecorder(backend, cfg.SalePayoutsPath, cfg.LedgerScanSize)
	reconciler := cashflow.NewReconciler(backend, cashflow.Config{
		CashflowsPath: cfg.CashflowsPath,
		CashboxesPath: cfg.CashboxesPath,
		LabelPrefix:   cfg.LedgerLabel,
		ScanSize:      cfg.LedgerScanSize,
	})

	deps := payroll.Dependencies{
		Employees:    employeeService,
		Appointments: appointmentRepo,
		Rates:        rateRepo,
		Ledger:       reconciler,
		Fund:         fundRecorder,
		Journal:      journalService,
		ProductSales: productSales,
		Redis:        rdb,
		SaveLockTTL:  cfg.SaveLockTTL(),
	}
	return payroll.NewService(deps), nil
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	rdb *redis.Client,
	journalService journal.Service,
) error {
	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	productSaleRepo := productsale.NewRepository(backend, cfg.ProductSalesPath, cfg.ProductsPath, cfg.ProductSalesPageSize)
	productSaleTotals := productsale.NewService(productSaleRepo)

	payrollService, err := newPayrollService(cfg, backend, rdb, journalService, productSaleTotals)
	if err != nil {
		return err
	}
	productSaleService := productsale.NewServiceWithListeners(productSaleRepo, []productsale.Listener{payrollService})

	// --- Handlers ---
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, report.PDFOptions{FontFile: cfg.PDFFontFile}, rdb)
	productSaleHandler := productsale.NewHandler(productSaleService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		payroll.RegisterRoutes(api, payrollHandler, rdb)
		productsale.RegisterRoutes(api, productSaleHandler)
	}

	return nil
}
