package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PAYOUTS_"

var (
	ErrEmptyBackendURL = errors.New("backend_url must not be empty")
	ErrInvalidScanSize = errors.New("ledger_scan_size must be positive")
	ErrEmptyLedger     = errors.New("ledger_label must not be empty")
)

// Load layers defaults, an optional YAML file named by PAYOUTS_CONFIG and
// PAYOUTS_* environment variables, in that order of precedence.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// PAYOUTS_LEDGER_SCAN_SIZE -> ledger_scan_size
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// PORT is shared with the hosting platform.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"PORT") == "" {
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrEmptyBackendURL
	}
	if c.LedgerScanSize <= 0 {
		return ErrInvalidScanSize
	}
	if strings.TrimSpace(c.LedgerLabel) == "" {
		return ErrEmptyLedger
	}
	if c.RatesPageSize <= 0 {
		c.RatesPageSize = 1000
	}
	if c.ProductSalesPageSize <= 0 {
		c.ProductSalesPageSize = 5000
	}
	return nil
}
