package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2023-02-29")
	require.Error(t, err)
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2025, time.January, 31)
	b := NewDate(2025, time.February, 1)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, b, a.AddDays(1))
}

func TestStartOfQuarter(t *testing.T) {
	tests := map[time.Month]time.Month{
		time.January: time.January, time.March: time.January,
		time.April: time.April, time.June: time.April,
		time.August: time.July, time.December: time.October,
	}
	for in, want := range tests {
		got := NewDate(2025, in, 15).StartOfQuarter()
		assert.Equal(t, NewDate(2025, want, 1), got, "quarter start of %s", in)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 31, DaysInMonth(2025, time.December))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		On Date `json:"on"`
	}
	data, err := json.Marshal(wrapper{On: NewDate(2025, time.July, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2025-07-04"}`, string(data))

	var got wrapper
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, NewDate(2025, time.July, 4), got.On)
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: MustParseDate("2025-01-01"), End: MustParseDate("2025-03-31")}
	require.NoError(t, r.Validate())
	assert.True(t, r.Contains(MustParseDate("2025-01-01")))
	assert.True(t, r.Contains(MustParseDate("2025-03-31")))
	assert.False(t, r.Contains(MustParseDate("2025-04-01")))

	inverted := DateRange{Start: r.End, End: r.Start}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidRange)
	assert.Error(t, DateRange{}.Validate())
}

func TestFiscalYearStart(t *testing.T) {
	april := CompanyContext{FiscalYearStartMonth: time.April, FiscalYearStartDay: 1}
	assert.Equal(t, MustParseDate("2025-04-01"), april.FiscalYearStart(MustParseDate("2025-06-30")))
	assert.Equal(t, MustParseDate("2024-04-01"), april.FiscalYearStart(MustParseDate("2025-03-31")))

	calendar := CompanyContext{}
	assert.Equal(t, MustParseDate("2025-01-01"), calendar.FiscalYearStart(MustParseDate("2025-12-31")))
}
