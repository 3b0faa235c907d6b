package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(mayRaw("code", "current_balance"))
	require.NoError(t, err)

	assert.Equal(t, model.MustParseDate("2025-05-01"), cfg.Range.Start)
	assert.Nil(t, cfg.CompareRange)
	assert.Equal(t, GroupNone, cfg.GroupBy)
	assert.Equal(t, ColCode, cfg.SortBy)
	assert.Equal(t, Asc, cfg.SortDirection)
	assert.True(t, cfg.Has(ColCurrentBalance))
	assert.False(t, cfg.Has(ColYTDBalance))
}

func TestNewConfig_Filters(t *testing.T) {
	raw := mayRaw("code")
	raw.AccountTypes = []string{"income", "expense"}
	raw.MinAmount, raw.MaxAmount = "-10.5", "1000"
	cfg, err := NewConfig(raw)
	require.NoError(t, err)

	assert.Equal(t, []model.AccountType{model.AccountTypeRevenue, model.AccountTypeExpense}, cfg.Filters.AccountTypes)
	require.NotNil(t, cfg.Filters.MinAmount)
	assert.True(t, dec("-10.5").Equal(*cfg.Filters.MinAmount))
}

func TestNewConfig_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*RawConfig)
		field string
	}{
		{"unknown column", func(r *RawConfig) { r.Columns = []string{"code", "balance"} }, "columns[1]"},
		{"no columns", func(r *RawConfig) { r.Columns = nil }, "columns"},
		{"duplicate column", func(r *RawConfig) { r.Columns = []string{"code", "code"} }, "columns"},
		{"missing start", func(r *RawConfig) { r.Start = "" }, "start"},
		{"bad date", func(r *RawConfig) { r.End = "2025-02-30" }, "end"},
		{"end before start", func(r *RawConfig) { r.End = "2025-04-01" }, "end"},
		{"bad group", func(r *RawConfig) { r.GroupBy = "month" }, "group_by"},
		{"bad type", func(r *RawConfig) { r.AccountTypes = []string{"widget"} }, "account_types[0]"},
		{"bad amount", func(r *RawConfig) { r.MinAmount = "ten" }, "min_amount"},
		{"min above max", func(r *RawConfig) { r.MinAmount, r.MaxAmount = "10", "5" }, "max_amount"},
		{"sort not requested", func(r *RawConfig) { r.SortBy = "name" }, "sort_by"},
		{"bad direction", func(r *RawConfig) { r.SortDirection = "up" }, "sort_direction"},
		{"compare range without column", func(r *RawConfig) { r.CompareStart, r.CompareEnd = "2025-04-01", "2025-04-30" }, "columns"},
		{"compare column without range", func(r *RawConfig) { r.Columns = []string{"code", "change"} }, "compare_start"},
		{"half compare range", func(r *RawConfig) {
			r.Columns = []string{"code", "change"}
			r.CompareStart = "2025-04-01"
		}, "compare_end"},
		{"compare inverted", func(r *RawConfig) {
			r.Columns = []string{"code", "change"}
			r.CompareStart, r.CompareEnd = "2025-04-30", "2025-04-01"
		}, "compare_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mayRaw("code", "current_balance")
			tt.edit(&raw)
			_, err := NewConfig(raw)
			require.Error(t, err)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %T", err)
			assert.Contains(t, cerr.Fields, tt.field, "fields: %v", cerr.Fields)
		})
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Fields: map[string]string{"sort_by": "x", "columns": "y"}}
	assert.Equal(t, "invalid report config: columns: y; sort_by: x", err.Error())
}
