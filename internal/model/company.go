package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyContext carries the company-wide settings that invoice and report
// computations depend on. It is always passed explicitly.
type CompanyContext struct {
	Name     string
	Currency string

	FiscalYearStartMonth time.Month
	FiscalYearStartDay   int

	DefaultTaxRate   decimal.Decimal
	PaymentTermsDays int

	ReceivableAccountID int
	PayableAccountID    int
	OutputTaxAccountID  int // tax collected on sales
	InputTaxAccountID   int // tax paid on purchases
}

// FiscalYearStart returns the first day of the fiscal year containing d.
func (c CompanyContext) FiscalYearStart(d Date) Date {
	month, day := c.FiscalYearStartMonth, c.FiscalYearStartDay
	if month == 0 {
		month = time.January
	}
	if day == 0 {
		day = 1
	}
	start := clampedDate(d.Year, month, day)
	if d.Before(start) {
		start = clampedDate(d.Year-1, month, day)
	}
	return start
}

func clampedDate(year int, month time.Month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}
