// Package schedule defines recurring report schedules and computes when each
// one next runs. Deciding when to fire is left to the caller.
package schedule

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

// ErrInvalidConfig wraps every schedule configuration error.
var ErrInvalidConfig = errors.New("schedule: invalid config")

// Frequency is how often a schedule recurs.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// Config describes a recurrence. Days is used by weekly schedules and
// MonthDay by monthly and quarterly ones. MonthDay may exceed the length of
// some months; it is clamped when the next run is computed.
type Config struct {
	Frequency Frequency      `json:"frequency" yaml:"frequency" validate:"required,oneof=daily weekly monthly quarterly"`
	Time      string         `json:"time" yaml:"time" validate:"required,datetime=15:04"`
	Days      []time.Weekday `json:"days,omitempty" yaml:"days,omitempty" validate:"omitempty,unique,dive,min=0,max=6"`
	MonthDay  int            `json:"month_day,omitempty" yaml:"month_day,omitempty" validate:"omitempty,min=1,max=31"`
}

// Schedule binds a report template to a recurrence.
type Schedule struct {
	ID         uuid.UUID `json:"id"`
	TemplateID string    `json:"template_id"`
	Config     Config    `json:"config"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// Validate checks a config on its own.
func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(fe)))
		}
	}

	switch c.Frequency {
	case Weekly:
		if len(c.Days) == 0 {
			errs = append(errs, fmt.Errorf("%w: weekly schedule needs at least one weekday", ErrInvalidConfig))
		}
	case Monthly, Quarterly:
		if c.MonthDay == 0 {
			errs = append(errs, fmt.Errorf("%w: %s schedule needs a day of month between 1 and 31", ErrInvalidConfig, c.Frequency))
		}
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	if ns := fe.Namespace(); strings.Contains(ns, ".") {
		field = ns[strings.IndexByte(ns, '.')+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s %v is not one of %s", field, fe.Value(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s %q is not HH:MM", field, fe.Value())
	case "min", "max":
		switch field {
		case "month_day":
			return fmt.Sprintf("month_day %v is outside 1-31", fe.Value())
		default:
			return fmt.Sprintf("%s %v is not a weekday 0-6", field, fe.Value())
		}
	case "unique":
		return field + " contains duplicates"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// New validates cfg and creates a schedule for one template.
func New(templateID string, cfg Config) (Schedule, error) {
	if strings.TrimSpace(templateID) == "" {
		return Schedule{}, fmt.Errorf("%w: template id is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Schedule{}, err
	}
	cfg.Days = append([]time.Weekday(nil), cfg.Days...)
	return Schedule{ID: uuid.New(), TemplateID: templateID, Config: cfg}, nil
}

// CreateBatch creates one schedule per template sharing the same config.
// Nothing is returned if any template fails.
func CreateBatch(templateIDs []string, cfg Config) ([]Schedule, error) {
	out := make([]Schedule, 0, len(templateIDs))
	for _, id := range templateIDs {
		s, err := New(id, cfg)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", id, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// NextRun returns the first run strictly after now, in now's location.
//
//   - daily: the next calendar day at Time.
//   - weekly: the earliest listed weekday at Time, today included when the
//     slot is still ahead, looking at most 7 days out.
//   - monthly: MonthDay of this month if still ahead, else of next month.
//   - quarterly: the same rule over January, April, July and October.
//
// A MonthDay past the end of a month runs on that month's last day.
func NextRun(s Schedule, now time.Time) time.Time {
	hour, minute := clock(s.Config.Time)
	loc := now.Location()
	y, m, d := now.Date()

	switch s.Config.Frequency {
	case Daily:
		return time.Date(y, m, d+1, hour, minute, 0, 0, loc)

	case Weekly:
		for i := 0; i <= 7; i++ {
			c := time.Date(y, m, d+i, hour, minute, 0, 0, loc)
			if c.After(now) && hasDay(s.Config.Days, c.Weekday()) {
				return c
			}
		}

	case Monthly:
		for i := 0; i <= 1; i++ {
			if c := monthSlot(y, m+time.Month(i), s.Config.MonthDay, hour, minute, loc); c.After(now) {
				return c
			}
		}

	case Quarterly:
		first := time.Month((int(m)-1)/3*3 + 1)
		for i := 0; i <= 1; i++ {
			if c := monthSlot(y, first+time.Month(3*i), s.Config.MonthDay, hour, minute, loc); c.After(now) {
				return c
			}
		}
	}
	return time.Time{}
}

// monthSlot is day of the given month at hour:minute, clamped to the month's
// last day. Month overflow rolls into the next year.
func monthSlot(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := model.DaysInMonth(start.Year(), start.Month()); day > last {
		day = last
	}
	return time.Date(start.Year(), start.Month(), day, hour, minute, 0, 0, loc)
}

func hasDay(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

func clock(hhmm string) (hour, minute int) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}
