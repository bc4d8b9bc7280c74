// Package config holds the console settings: where the accounting backend
// lives, which resource paths it serves, and the knobs of the payouts engine.
package config

import "time"

type Config struct {
	Port string `koanf:"port"`

	BackendURL            string `koanf:"backend_url"`
	BackendToken          string `koanf:"backend_token"`
	BackendTimeoutSeconds int    `koanf:"backend_timeout_seconds"`

	PayoutsPath      string `koanf:"payouts_path"`
	AppointmentsPath string `koanf:"appointments_path"`
	EmployeesPath    string `koanf:"employees_path"`
	ServicesPath     string `koanf:"services_path"`
	SalePayoutsPath  string `koanf:"sale_payouts_path"`
	CashboxesPath    string `koanf:"cashboxes_path"`
	CashflowsPath    string `koanf:"cashflows_path"`
	ProductSalesPath string `koanf:"product_sales_path"`
	ProductsPath     string `koanf:"products_path"`

	// RatesPageSize is the page_size sent when listing rate records.
	RatesPageSize        int `koanf:"rates_page_size"`
	ProductSalesPageSize int `koanf:"product_sales_page_size"`
	// LedgerScanSize bounds how many cashboxes and cash-flow entries are
	// scanned when reconciling.
	LedgerScanSize int `koanf:"ledger_scan_size"`
	// LedgerLabel prefixes the period in the cash-flow description.
	LedgerLabel string `koanf:"ledger_label"`

	DirectoryCacheMinutes int `koanf:"directory_cache_minutes"`
	SaveLockSeconds       int `koanf:"save_lock_seconds"`

	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	StorageDir string `koanf:"storage_dir"`
	// PDFFontFile is a TTF with Cyrillic glyphs; without it the PDF falls
	// back to a core font that only covers Latin-1.
	PDFFontFile string `koanf:"pdf_font_file"`

	KafkaGroupID      string `koanf:"kafka_group_id"`
	OutboxPollSeconds int    `koanf:"outbox_poll_seconds"`
	// WorkerMetricsPort serves /metrics from the outbox worker; empty disables it.
	WorkerMetricsPort string `koanf:"worker_metrics_port"`
}

func New() *Config {
	return &Config{
		Port:                  "3000",
		BackendURL:            "http://localhost:8000/api",
		BackendTimeoutSeconds: 30,
		PayoutsPath:           "/barbershop/payouts/",
		AppointmentsPath:      "/barbershop/appointments/",
		EmployeesPath:         "/users/employees/",
		ServicesPath:          "/barbershop/services/",
		SalePayoutsPath:       "/barbershop/sale-payouts/",
		CashboxesPath:         "/construction/cashboxes/",
		CashflowsPath:         "/construction/cashflows/",
		ProductSalesPath:      "/barbershop/product-sale-payouts/",
		ProductsPath:          "/main/products/list/",
		RatesPageSize:         1000,
		ProductSalesPageSize:  5000,
		LedgerScanSize:        200,
		LedgerLabel:           "Payroll",
		DirectoryCacheMinutes: 10,
		SaveLockSeconds:       120,
		RateLimitRPS:          10,
		RateLimitBurst:        20,
		StorageDir:            "storage/payouts",
		KafkaGroupID:          "go-payouts-archive",
		OutboxPollSeconds:     3,
		WorkerMetricsPort:     "9102",
	}
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

func (c *Config) DirectoryCacheTTL() time.Duration {
	return time.Duration(c.DirectoryCacheMinutes) * time.Minute
}

func (c *Config) SaveLockTTL() time.Duration {
	return time.Duration(c.SaveLockSeconds) * time.Second
}

func (c *Config) OutboxPollInterval() time.Duration {
	return time.Duration(c.OutboxPollSeconds) * time.Second
}
