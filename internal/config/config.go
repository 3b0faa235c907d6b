package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ledgerbook/ledgerbook/internal/accounts"
	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// FileName is the config file at the root of a books directory.
const FileName = "ledgerbook.yaml"

// Config represents the top-level ledgerbook.yaml configuration.
type Config struct {
	Company   CompanyConfig   `yaml:"company"`
	Fiscal    FiscalConfig    `yaml:"fiscal"`
	Tax       TaxConfig       `yaml:"tax"`
	Invoicing InvoicingConfig `yaml:"invoicing"`
	Accounts  ControlAccounts `yaml:"accounts"`
	LogFormat string          `yaml:"log_format"`
}

// CompanyConfig identifies the business entity.
type CompanyConfig struct {
	Name       string `yaml:"name"`
	Currency   string `yaml:"currency"`
	EntityType string `yaml:"entity_type"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "04-01"
}

// TaxConfig holds the default tax rate applied to invoice lines, in percent.
type TaxConfig struct {
	DefaultRate string `yaml:"default_rate"`
}

// InvoicingConfig controls invoice due dates.
type InvoicingConfig struct {
	PaymentTermsDays int `yaml:"payment_terms_days"`
}

// ControlAccounts names the chart accounts invoices post to.
type ControlAccounts struct {
	Receivable int `yaml:"receivable"`
	Payable    int `yaml:"payable"`
	OutputTax  int `yaml:"output_tax"`
	InputTax   int `yaml:"input_tax"`
}

// Env holds the environment overrides, read with the LEDGERBOOK_ prefix.
type Env struct {
	LogFormat string `envconfig:"LOG_FORMAT"`
	Books     string `envconfig:"BOOKS"`
	Currency  string `envconfig:"CURRENCY"`
}

// LoadEnv reads LEDGERBOOK_* variables.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("ledgerbook", &env); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// Apply overrides file settings with any non-empty environment values.
func (e Env) Apply(cfg *Config) {
	if e.LogFormat != "" {
		cfg.LogFormat = e.LogFormat
	}
	if e.Currency != "" {
		cfg.Company.Currency = e.Currency
	}
}

// Load reads a ledgerbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for new books.
func Default(companyName, entityType string) *Config {
	return &Config{
		Company: CompanyConfig{
			Name:       companyName,
			Currency:   "INR",
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "04-01",
		},
		Tax: TaxConfig{
			DefaultRate: "18",
		},
		Invoicing: InvoicingConfig{
			PaymentTermsDays: 30,
		},
		Accounts: ControlAccounts{
			Receivable: accounts.ReceivableID,
			Payable:    accounts.PayableID,
			OutputTax:  accounts.OutputTaxID,
			InputTax:   accounts.InputTaxID,
		},
		LogFormat: "text",
	}
}

// CompanyContext converts the config into the settings invoice and report
// code depend on.
func (c *Config) CompanyContext() (model.CompanyContext, error) {
	month, day, err := parseYearStart(c.Fiscal.YearStart)
	if err != nil {
		return model.CompanyContext{}, err
	}
	rate, err := money.Parse(c.Tax.DefaultRate)
	if err != nil {
		return model.CompanyContext{}, fmt.Errorf("tax.default_rate: %w", err)
	}
	if rate.IsNegative() {
		return model.CompanyContext{}, fmt.Errorf("tax.default_rate %s is negative", rate)
	}
	if c.Invoicing.PaymentTermsDays < 0 {
		return model.CompanyContext{}, errors.New("invoicing.payment_terms_days is negative")
	}
	return model.CompanyContext{
		Name:                 c.Company.Name,
		Currency:             c.Company.Currency,
		FiscalYearStartMonth: month,
		FiscalYearStartDay:   day,
		DefaultTaxRate:       rate,
		PaymentTermsDays:     c.Invoicing.PaymentTermsDays,
		ReceivableAccountID:  c.Accounts.Receivable,
		PayableAccountID:     c.Accounts.Payable,
		OutputTaxAccountID:   c.Accounts.OutputTax,
		InputTaxAccountID:    c.Accounts.InputTax,
	}, nil
}

// parseYearStart reads "MM-DD". An empty value means January 1.
func parseYearStart(s string) (time.Month, int, error) {
	if s == "" {
		return time.January, 1, nil
	}
	mm, dd, ok := strings.Cut(s, "-")
	month, err1 := strconv.Atoi(mm)
	day, err2 := strconv.Atoi(dd)
	if !ok || err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > model.DaysInMonth(2024, time.Month(month)) {
		return 0, 0, fmt.Errorf("fiscal.year_start %q: want MM-DD", s)
	}
	return time.Month(month), day, nil
}
