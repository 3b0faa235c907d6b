package invoice

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// RateSummary totals taxable value and tax at one rate.
type RateSummary struct {
	Rate             decimal.Decimal `json:"rate"`
	TaxableSales     decimal.Decimal `json:"taxable_sales"`
	OutputTax        decimal.Decimal `json:"output_tax"`
	TaxablePurchases decimal.Decimal `json:"taxable_purchases"`
	InputTax         decimal.Decimal `json:"input_tax"`
}

func (r RateSummary) MarshalJSON() ([]byte, error) {
	type summary RateSummary
	return json.Marshal(struct {
		summary
		TaxableSales     money.Amount `json:"taxable_sales"`
		OutputTax        money.Amount `json:"output_tax"`
		TaxablePurchases money.Amount `json:"taxable_purchases"`
		InputTax         money.Amount `json:"input_tax"`
	}{summary(r), money.NewAmount(r.TaxableSales), money.NewAmount(r.OutputTax), money.NewAmount(r.TaxablePurchases), money.NewAmount(r.InputTax)})
}

// TaxSummary is the period return: tax collected on sales less tax paid on
// purchases.
type TaxSummary struct {
	Range      model.DateRange `json:"range"`
	Invoices   int             `json:"invoices"`
	Rates      []RateSummary   `json:"rates"`
	OutputTax  decimal.Decimal `json:"output_tax"`
	InputTax   decimal.Decimal `json:"input_tax"`
	NetPayable decimal.Decimal `json:"net_payable"`
}

func (s TaxSummary) MarshalJSON() ([]byte, error) {
	type summary TaxSummary
	return json.Marshal(struct {
		summary
		OutputTax  money.Amount `json:"output_tax"`
		InputTax   money.Amount `json:"input_tax"`
		NetPayable money.Amount `json:"net_payable"`
	}{summary(s), money.NewAmount(s.OutputTax), money.NewAmount(s.InputTax), money.NewAmount(s.NetPayable)})
}

// SummarizeTax totals tax by rate for sent and paid invoices dated inside r.
// Drafts and voided invoices are left out. Rates are ordered ascending.
func SummarizeTax(invoices []model.Invoice, r model.DateRange) TaxSummary {
	sum := TaxSummary{Range: r, OutputTax: decimal.Zero, InputTax: decimal.Zero}
	byRate := make(map[string]*RateSummary)

	for _, inv := range invoices {
		if inv.Status != model.InvoiceSent && inv.Status != model.InvoicePaid {
			continue
		}
		if !r.Contains(inv.Date) {
			continue
		}
		inv, _ = Compute(inv)
		sum.Invoices++

		for _, l := range inv.Lines {
			key := l.TaxRate.String()
			rs, ok := byRate[key]
			if !ok {
				rs = &RateSummary{
					Rate:             l.TaxRate,
					TaxableSales:     decimal.Zero,
					OutputTax:        decimal.Zero,
					TaxablePurchases: decimal.Zero,
					InputTax:         decimal.Zero,
				}
				byRate[key] = rs
			}
			if inv.Kind == model.InvoicePurchase {
				rs.TaxablePurchases = rs.TaxablePurchases.Add(l.PreTax)
				rs.InputTax = rs.InputTax.Add(l.TaxAmount)
				sum.InputTax = sum.InputTax.Add(l.TaxAmount)
			} else {
				rs.TaxableSales = rs.TaxableSales.Add(l.PreTax)
				rs.OutputTax = rs.OutputTax.Add(l.TaxAmount)
				sum.OutputTax = sum.OutputTax.Add(l.TaxAmount)
			}
		}
	}

	sum.Rates = make([]RateSummary, 0, len(byRate))
	for _, rs := range byRate {
		sum.Rates = append(sum.Rates, *rs)
	}
	sort.Slice(sum.Rates, func(i, j int) bool { return sum.Rates[i].Rate.LessThan(sum.Rates[j].Rate) })
	sum.NetPayable = sum.OutputTax.Sub(sum.InputTax)
	return sum
}
