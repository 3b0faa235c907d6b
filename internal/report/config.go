// Package report builds configurable account reports: filtered, grouped and
// sorted rows carrying only the columns asked for.
package report

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// Column is one of the closed set of report columns.
type Column string

const (
	ColCode           Column = "code"
	ColName           Column = "name"
	ColType           Column = "type"
	ColSubtype        Column = "subtype"
	ColCurrentBalance Column = "current_balance"
	ColYTDBalance     Column = "ytd_balance"
	ColCompareBalance Column = "compare_balance"
	ColChange         Column = "change"
	ColPercentChange  Column = "percent_change"
)

// Columns lists every column in display order.
var Columns = []Column{
	ColCode, ColName, ColType, ColSubtype,
	ColCurrentBalance, ColYTDBalance, ColCompareBalance, ColChange, ColPercentChange,
}

// needsCompare reports whether a column is derived from the compare range.
func (c Column) needsCompare() bool {
	return c == ColCompareBalance || c == ColChange || c == ColPercentChange
}

// GroupBy selects how rows are grouped in the result.
type GroupBy string

const (
	GroupNone    GroupBy = "none"
	GroupType    GroupBy = "type"
	GroupSubtype GroupBy = "subtype"
	GroupParent  GroupBy = "parent"
)

// SortDirection orders rows on the sort column.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// RawConfig is a report definition as written in a file or sent by a form.
// NewConfig turns it into a Config.
type RawConfig struct {
	Start         string   `json:"start" yaml:"start" validate:"required,datetime=2006-01-02"`
	End           string   `json:"end" yaml:"end" validate:"required,datetime=2006-01-02"`
	CompareStart  string   `json:"compare_start" yaml:"compare_start" validate:"omitempty,datetime=2006-01-02"`
	CompareEnd    string   `json:"compare_end" yaml:"compare_end" validate:"omitempty,datetime=2006-01-02"`
	GroupBy       string   `json:"group_by" yaml:"group_by" validate:"omitempty,oneof=none type subtype parent"`
	AccountTypes  []string `json:"account_types" yaml:"account_types" validate:"omitempty,unique,dive,oneof=asset liability equity revenue income expense"`
	AccountIDs    []int    `json:"account_ids" yaml:"account_ids" validate:"omitempty,unique,dive,gt=0"`
	MinAmount     string   `json:"min_amount" yaml:"min_amount" validate:"omitempty,numeric"`
	MaxAmount     string   `json:"max_amount" yaml:"max_amount" validate:"omitempty,numeric"`
	Columns       []string `json:"columns" yaml:"columns" validate:"required,min=1,unique,dive,oneof=code name type subtype current_balance ytd_balance compare_balance change percent_change"`
	SortBy        string   `json:"sort_by" yaml:"sort_by" validate:"omitempty,oneof=code name type subtype current_balance ytd_balance compare_balance change percent_change"`
	SortDirection string   `json:"sort_direction" yaml:"sort_direction" validate:"omitempty,oneof=asc desc"`
}

// Filters narrow which accounts and rows appear.
type Filters struct {
	AccountTypes []model.AccountType `json:"account_types,omitempty"`
	AccountIDs   []int               `json:"account_ids,omitempty"`
	MinAmount    *decimal.Decimal    `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal    `json:"max_amount,omitempty"`
}

func (f Filters) MarshalJSON() ([]byte, error) {
	type plain Filters
	return json.Marshal(struct {
		plain
		MinAmount *money.Amount `json:"min_amount,omitempty"`
		MaxAmount *money.Amount `json:"max_amount,omitempty"`
	}{plain(f), money.AmountPtr(f.MinAmount), money.AmountPtr(f.MaxAmount)})
}

// Config is a validated report definition.
type Config struct {
	Range         model.DateRange  `json:"range"`
	CompareRange  *model.DateRange `json:"compare_range,omitempty"`
	GroupBy       GroupBy          `json:"group_by"`
	Filters       Filters          `json:"filters"`
	Columns       []Column         `json:"columns"`
	SortBy        Column           `json:"sort_by"`
	SortDirection SortDirection    `json:"sort_direction"`
}

// Has reports whether a column was requested.
func (c Config) Has(col Column) bool {
	for _, x := range c.Columns {
		if x == col {
			return true
		}
	}
	return false
}

// ConfigError maps each rejected field to the reason.
type ConfigError struct {
	Fields map[string]string
}

func (e *ConfigError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid report config: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewConfig validates a raw definition. Unknown columns, bad dates and
// amounts, a sort column that was not requested, and a compare range
// without a comparison column (or the reverse) are all rejected.
func NewConfig(raw RawConfig) (Config, error) {
	errs := make(map[string]string)
	if err := validate.Struct(raw); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return Config{}, err
		}
		for _, fe := range verrs {
			errs[fieldName(fe)] = describe(fe)
		}
		return Config{}, &ConfigError{Fields: errs}
	}

	cfg := Config{
		GroupBy:       GroupBy(raw.GroupBy),
		SortBy:        Column(raw.SortBy),
		SortDirection: SortDirection(raw.SortDirection),
	}
	if cfg.GroupBy == "" {
		cfg.GroupBy = GroupNone
	}
	if cfg.SortBy == "" {
		cfg.SortBy = ColCode
	}
	if cfg.SortDirection == "" {
		cfg.SortDirection = Asc
	}
	for _, c := range raw.Columns {
		cfg.Columns = append(cfg.Columns, Column(c))
	}

	// Dates already passed the datetime tag.
	cfg.Range = model.DateRange{Start: model.MustParseDate(raw.Start), End: model.MustParseDate(raw.End)}
	if err := cfg.Range.Validate(); err != nil {
		errs["end"] = "must not be before start"
	}

	switch {
	case raw.CompareStart != "" && raw.CompareEnd != "":
		cr := model.DateRange{Start: model.MustParseDate(raw.CompareStart), End: model.MustParseDate(raw.CompareEnd)}
		if err := cr.Validate(); err != nil {
			errs["compare_end"] = "must not be before compare_start"
		}
		cfg.CompareRange = &cr
	case raw.CompareStart != "":
		errs["compare_end"] = "required with compare_start"
	case raw.CompareEnd != "":
		errs["compare_start"] = "required with compare_end"
	}

	wantsCompare := false
	for _, c := range cfg.Columns {
		wantsCompare = wantsCompare || c.needsCompare()
	}
	if cfg.CompareRange != nil && !wantsCompare {
		errs["columns"] = "compare range requires compare_balance, change or percent_change"
	}
	if cfg.CompareRange == nil && wantsCompare && errs["compare_start"] == "" && errs["compare_end"] == "" {
		errs["compare_start"] = "comparison columns require a compare range"
	}

	if raw.SortBy != "" && !cfg.Has(cfg.SortBy) {
		errs["sort_by"] = fmt.Sprintf("column %q is not requested", raw.SortBy)
	}

	for _, t := range raw.AccountTypes {
		at, err := model.ParseAccountType(t)
		if err != nil {
			errs["account_types"] = err.Error()
			continue
		}
		cfg.Filters.AccountTypes = append(cfg.Filters.AccountTypes, at)
	}
	cfg.Filters.AccountIDs = append(cfg.Filters.AccountIDs, raw.AccountIDs...)

	if raw.MinAmount != "" {
		d, _ := money.Parse(raw.MinAmount)
		cfg.Filters.MinAmount = &d
	}
	if raw.MaxAmount != "" {
		d, _ := money.Parse(raw.MaxAmount)
		cfg.Filters.MaxAmount = &d
	}
	if cfg.Filters.MinAmount != nil && cfg.Filters.MaxAmount != nil && cfg.Filters.MinAmount.GreaterThan(*cfg.Filters.MaxAmount) {
		errs["max_amount"] = "must not be less than min_amount"
	}

	if len(errs) > 0 {
		return Config{}, &ConfigError{Fields: errs}
	}
	return cfg, nil
}

func fieldName(fe validator.FieldError) string {
	// Namespace is "RawConfig.columns[2]"; drop the struct name.
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "needs at least " + fe.Param()
	case "unique":
		return "contains duplicates"
	case "datetime":
		return fmt.Sprintf("%v is not a YYYY-MM-DD date", fe.Value())
	case "oneof":
		return fmt.Sprintf("%v is not one of: %s", fe.Value(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%v is not a number", fe.Value())
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "failed " + fe.Tag()
}
