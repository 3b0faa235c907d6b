package accounts

import "github.com/ledgerbook/ledgerbook/internal/model"

// Control accounts in the default chart, referenced by the default config.
const (
	ReceivableID = 1100
	InputTaxID   = 1200
	PayableID    = 2010
	OutputTaxID  = 2100
)

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "small_business":
		return smallBusinessChart()
	default:
		return smallBusinessChart()
	}
}

func smallBusinessChart() []model.Account {
	chart := []model.Account{
		{ID: 1000, Code: "1000", Name: "Cash on Hand", Type: model.AccountTypeAsset, Subtype: model.SubtypeCash},
		{ID: 1010, Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Subtype: model.SubtypeBank, Description: "Primary checking account"},
		{ID: 1020, Code: "1020", Name: "Business Savings", Type: model.AccountTypeAsset, Subtype: model.SubtypeBank},
		{ID: ReceivableID, Code: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Subtype: model.SubtypeOperating},
		{ID: InputTaxID, Code: "1200", Name: "GST Input Credit", Type: model.AccountTypeAsset, Subtype: model.SubtypeOperating, Description: "Tax paid on purchases"},
		{ID: 1500, Code: "1500", Name: "Equipment", Type: model.AccountTypeAsset, Subtype: model.SubtypeInvesting},
		{ID: PayableID, Code: "2010", Name: "Accounts Payable", Type: model.AccountTypeLiability, Subtype: model.SubtypeOperating},
		{ID: OutputTaxID, Code: "2100", Name: "GST Payable", Type: model.AccountTypeLiability, Subtype: model.SubtypeOperating, Description: "Tax collected on sales"},
		{ID: 2500, Code: "2500", Name: "Business Loan", Type: model.AccountTypeLiability, Subtype: model.SubtypeFinancing},
		{ID: 3010, Code: "3010", Name: "Owner's Capital", Type: model.AccountTypeEquity, Subtype: model.SubtypeFinancing},
		{ID: 3020, Code: "3020", Name: "Retained Earnings", Type: model.AccountTypeEquity},
		{ID: 4010, Code: "4010", Name: "Sales Revenue", Type: model.AccountTypeRevenue, Subtype: model.SubtypeOperating},
		{ID: 4020, Code: "4020", Name: "Service Revenue", Type: model.AccountTypeRevenue, Subtype: model.SubtypeOperating},
		{ID: 5000, Code: "5000", Name: "Operating Expenses", Type: model.AccountTypeExpense},
		{ID: 5010, Code: "5010", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Subtype: model.SubtypeOperating, ParentID: 5000},
		{ID: 5020, Code: "5020", Name: "Software & SaaS", Type: model.AccountTypeExpense, Subtype: model.SubtypeOperating, ParentID: 5000},
		{ID: 5030, Code: "5030", Name: "Office Supplies", Type: model.AccountTypeExpense, Subtype: model.SubtypeOperating, ParentID: 5000},
		{ID: 5040, Code: "5040", Name: "Professional Services", Type: model.AccountTypeExpense, Subtype: model.SubtypeOperating, ParentID: 5000, Description: "Legal, accounting, consulting"},
		{ID: 5050, Code: "5050", Name: "Rent", Type: model.AccountTypeExpense, Subtype: model.SubtypeOperating, ParentID: 5000},
	}
	for i := range chart {
		chart[i].IsActive = true
	}
	return chart
}
