package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func mustNew(t *testing.T, cfg Config) Schedule {
	t.Helper()
	s, err := New("monthly-pl", cfg)
	require.NoError(t, err)
	return s
}

func TestNextRun_Daily(t *testing.T) {
	s := mustNew(t, Config{Frequency: Daily, Time: "06:30"})

	// Even when today's slot is still ahead, daily moves to the next day.
	assert.Equal(t, at(2025, 3, 11, 6, 30), NextRun(s, at(2025, 3, 10, 5, 0)))
	assert.Equal(t, at(2025, 1, 1, 6, 30), NextRun(s, at(2024, 12, 31, 23, 59)))
}

func TestNextRun_Weekly(t *testing.T) {
	s := mustNew(t, Config{Frequency: Weekly, Time: "09:00", Days: []time.Weekday{time.Monday, time.Wednesday}})

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		// 2025-03-11 is a Tuesday.
		{"tuesday after slot", at(2025, 3, 11, 10, 0), at(2025, 3, 12, 9, 0)},
		{"wednesday before slot", at(2025, 3, 12, 8, 0), at(2025, 3, 12, 9, 0)},
		{"wednesday exactly at slot", at(2025, 3, 12, 9, 0), at(2025, 3, 17, 9, 0)},
		{"wednesday after slot", at(2025, 3, 12, 9, 1), at(2025, 3, 17, 9, 0)},
		{"saturday", at(2025, 3, 15, 12, 0), at(2025, 3, 17, 9, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(s, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextRun_WeeklySingleDayWrapsAWeek(t *testing.T) {
	s := mustNew(t, Config{Frequency: Weekly, Time: "09:00", Days: []time.Weekday{time.Tuesday}})
	assert.Equal(t, at(2025, 3, 18, 9, 0), NextRun(s, at(2025, 3, 11, 10, 0)))
}

func TestNextRun_Monthly(t *testing.T) {
	tests := []struct {
		name     string
		monthDay int
		now      time.Time
		want     time.Time
	}{
		{"clamped to february in non-leap year", 31, at(2025, 2, 1, 0, 0), at(2025, 2, 28, 9, 0)},
		{"clamped to leap february", 31, at(2024, 2, 1, 0, 0), at(2024, 2, 29, 9, 0)},
		{"day 29 in non-leap february", 29, at(2025, 2, 10, 0, 0), at(2025, 2, 28, 9, 0)},
		{"slot passed moves to next month", 15, at(2025, 3, 15, 9, 0), at(2025, 4, 15, 9, 0)},
		{"next month clamped", 31, at(2025, 3, 31, 10, 0), at(2025, 4, 30, 9, 0)},
		{"december rolls into january", 5, at(2025, 12, 20, 0, 0), at(2026, 1, 5, 9, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, Config{Frequency: Monthly, Time: "09:00", MonthDay: tt.monthDay})
			assert.Equal(t, tt.want, NextRun(s, tt.now))
		})
	}
}

func TestNextRun_Quarterly(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"inside quarter month before slot", at(2025, 4, 2, 0, 0), at(2025, 4, 10, 8, 0)},
		{"mid quarter", at(2025, 5, 20, 0, 0), at(2025, 7, 10, 8, 0)},
		{"quarter month after slot", at(2025, 7, 11, 0, 0), at(2025, 10, 10, 8, 0)},
		{"year end", at(2025, 11, 1, 0, 0), at(2026, 1, 10, 8, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, Config{Frequency: Quarterly, Time: "08:00", MonthDay: 10})
			assert.Equal(t, tt.want, NextRun(s, tt.now))
		})
	}
}

func TestNextRun_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	s := mustNew(t, Config{Frequency: Daily, Time: "09:00"})
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, loc)

	got := NextRun(s, now)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, loc), got)
}

func TestNextRun_Deterministic(t *testing.T) {
	s := mustNew(t, Config{Frequency: Monthly, Time: "09:00", MonthDay: 31})
	now := at(2025, 2, 1, 0, 0)
	assert.Equal(t, NextRun(s, now), NextRun(s, now))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantMsg string
	}{
		{"missing frequency", Config{Time: "09:00"}, "frequency is required"},
		{"unknown frequency", Config{Frequency: "hourly", Time: "09:00"}, "not one of"},
		{"bad time", Config{Frequency: Daily, Time: "9am"}, "not HH:MM"},
		{"hour out of range", Config{Frequency: Daily, Time: "24:00"}, "not HH:MM"},
		{"weekly without days", Config{Frequency: Weekly, Time: "09:00"}, "at least one weekday"},
		{"weekday out of range", Config{Frequency: Weekly, Time: "09:00", Days: []time.Weekday{1, 7}}, "not a weekday"},
		{"duplicate weekdays", Config{Frequency: Weekly, Time: "09:00", Days: []time.Weekday{1, 1}}, "duplicates"},
		{"monthly without day", Config{Frequency: Monthly, Time: "09:00"}, "day of month"},
		{"month day too large", Config{Frequency: Monthly, Time: "09:00", MonthDay: 32}, "outside 1-31"},
		{"month day negative", Config{Frequency: Quarterly, Time: "09:00", MonthDay: -1}, "outside 1-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("tmpl", tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNew_RequiresTemplate(t *testing.T) {
	_, err := New(" ", Config{Frequency: Daily, Time: "09:00"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_AssignsIDAndCopiesDays(t *testing.T) {
	days := []time.Weekday{time.Monday}
	s, err := New("tmpl", Config{Frequency: Weekly, Time: "09:00", Days: days})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "tmpl", s.TemplateID)

	days[0] = time.Sunday
	assert.Equal(t, time.Monday, s.Config.Days[0])
}

func TestCreateBatch(t *testing.T) {
	cfg := Config{Frequency: Monthly, Time: "07:00", MonthDay: 1}
	batch, err := CreateBatch([]string{"pl", "bs", "cf"}, cfg)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	seen := make(map[uuid.UUID]bool)
	for i, s := range batch {
		assert.Equal(t, []string{"pl", "bs", "cf"}[i], s.TemplateID)
		assert.Equal(t, cfg, s.Config)
		seen[s.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestCreateBatch_FailsWhole(t *testing.T) {
	batch, err := CreateBatch([]string{"pl", ""}, Config{Frequency: Daily, Time: "07:00"})
	require.Error(t, err)
	assert.Nil(t, batch)
	assert.Contains(t, err.Error(), `template ""`)
}
