package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount is the wire form of a money value: it always renders with exactly
// two decimals, so 212.4 is written "212.40". Output structs keep
// decimal.Decimal for arithmetic and convert through Amount when encoding.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d}
}

// AmountPtr wraps d, keeping nil as nil.
func AmountPtr(d *decimal.Decimal) *Amount {
	if d == nil {
		return nil
	}
	return &Amount{*d}
}

// Amounts wraps every value of ds. A nil slice stays nil so omitempty still
// applies.
func Amounts(ds []decimal.Decimal) []Amount {
	if ds == nil {
		return nil
	}
	out := make([]Amount, len(ds))
	for i, d := range ds {
		out[i] = Amount{d}
	}
	return out
}

func (a Amount) String() string {
	return Format(a.Decimal)
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// MarshalJSON writes a quoted fixed-point string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}
