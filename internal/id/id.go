// Package id formats and parses the human-facing numbers given to journal
// entries and invoices.
package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

// FormatEntryNumber returns an entry number like "2025-01-001".
func FormatEntryNumber(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseEntryNumber parses "2025-01-001" into year, month, seq.
func ParseEntryNumber(number string) (year, month, seq int, err error) {
	parts := strings.SplitN(number, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry number format: %q", number)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry number %q: %w", number, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in entry number %q", number)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry number %q: %w", number, err)
	}

	return year, month, seq, nil
}

// InvoicePrefix returns "INV" for sales and "BILL" for purchases.
func InvoicePrefix(kind model.InvoiceKind) string {
	if kind == model.InvoicePurchase {
		return "BILL"
	}
	return "INV"
}

// FormatInvoiceNumber returns an invoice number like "INV-2025-0042".
func FormatInvoiceNumber(kind model.InvoiceKind, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", InvoicePrefix(kind), year, seq)
}

// ParseInvoiceNumber parses "INV-2025-0042" into kind, year, seq.
func ParseInvoiceNumber(number string) (kind model.InvoiceKind, year, seq int, err error) {
	parts := strings.SplitN(number, "-", 3)
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid invoice number format: %q", number)
	}

	switch parts[0] {
	case "INV":
		kind = model.InvoiceSale
	case "BILL":
		kind = model.InvoicePurchase
	default:
		return "", 0, 0, fmt.Errorf("unknown invoice prefix in %q", number)
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid year in invoice number %q: %w", number, err)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid sequence in invoice number %q: %w", number, err)
	}
	return kind, year, seq, nil
}
