package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"go-payouts/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PAYOUTS_CONFIG", "")
	t.Setenv("PORT", "")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 200, cfg.LedgerScanSize)
	assert.Equal(t, "Payroll", cfg.LedgerLabel)
	assert.Equal(t, "/construction/cashflows/", cfg.CashflowsPath)
	assert.Equal(t, "/barbershop/product-sale-payouts/", cfg.ProductSalesPath)
	assert.Equal(t, "/main/products/list/", cfg.ProductsPath)
	assert.Equal(t, 5000, cfg.ProductSalesPageSize)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payouts.yaml")
	yaml := "backend_url: http://backend.internal/api\nledger_label: Masters payroll\nledger_scan_size: 50\n"
	assert.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("PAYOUTS_CONFIG", path)
	t.Setenv("PAYOUTS_LEDGER_SCAN_SIZE", "75")
	t.Setenv("PORT", "8081")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, "http://backend.internal/api", cfg.BackendURL)
	assert.Equal(t, "Masters payroll", cfg.LedgerLabel)
	assert.Equal(t, 75, cfg.LedgerScanSize)
	assert.Equal(t, "8081", cfg.Port)
}

func TestLoad_InvalidScanSize(t *testing.T) {
	t.Setenv("PAYOUTS_CONFIG", "")
	t.Setenv("PAYOUTS_LEDGER_SCAN_SIZE", "0")

	_, err := config.Load()

	assert.ErrorIs(t, err, config.ErrInvalidScanSize)
}

func TestLoad_PDFFontAndOutbox(t *testing.T) {
	t.Setenv("PAYOUTS_CONFIG", "")
	t.Setenv("PAYOUTS_PDF_FONT_FILE", "/usr/share/fonts/DejaVuSans.ttf")
	t.Setenv("PAYOUTS_OUTBOX_POLL_SECONDS", "10")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, "/usr/share/fonts/DejaVuSans.ttf", cfg.PDFFontFile)
	assert.Equal(t, "10s", cfg.OutboxPollInterval().String())
	assert.Equal(t, "go-payouts-archive", cfg.KafkaGroupID)
}
