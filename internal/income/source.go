package income

import (
	"slices"
	"time"

	"networth/internal/core"
)

const (
	day           = 24 * time.Hour
	minPeriodDays = 1
	maxPeriodDays = 365
	daysPerYear   = 365
	monthsPerYear = 12
)

// SingletonSource is a one-off payment.
type SingletonSource struct {
	core.Record

	Name        string        `json:"name"`
	Description string        `json:"description"`
	IncomeDate  core.Date     `json:"income_date"`
	Amt         core.Currency `json:"amt"`
}

func (s SingletonSource) Validate() error {
	if s.IncomeDate.IsZero() {
		return core.Invalid("income date is required")
	}
	return s.Amt.Validate()
}

// PeriodicSource pays Amt every Period between StartDate and EndDate.
type PeriodicSource struct {
	core.Record

	Name        string        `json:"name"`
	Description string        `json:"description"`
	Amt         core.Currency `json:"amt"`
	Period      time.Duration `json:"period"`
	StartDate   core.Date     `json:"income_start_date"`
	EndDate     core.Date     `json:"income_end_date"`
}

// NewPeriodicSource validates the period (whole days in [1, 365]) and the
// date ordering.
func NewPeriodicSource(name, description string, amt core.Currency, period time.Duration, start, end core.Date) (*PeriodicSource, error) {
	s := &PeriodicSource{
		Record:      core.NewRecord(),
		Name:        name,
		Description: description,
		Amt:         amt,
		Period:      period,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PeriodicSource) Validate() error {
	if days := s.PeriodDays(); days < minPeriodDays || days > maxPeriodDays {
		return core.Invalid("period must be between 1 day and 365 days")
	}
	if s.StartDate.After(s.EndDate) {
		return core.Invalid("income start date must be before income end date")
	}
	return s.Amt.Validate()
}

// PeriodDays is the period in whole days.
func (s *PeriodicSource) PeriodDays() int {
	return int(s.Period / day)
}

// PerMonthAmt normalises the amount to a calendar month.
func (s *PeriodicSource) PerMonthAmt() core.Currency {
	return s.Amt.Multiply(float64(daysPerYear) / float64(s.PeriodDays()) / monthsPerYear)
}

// PerYearAmt normalises the amount to a calendar year.
func (s *PeriodicSource) PerYearAmt() core.Currency {
	return s.Amt.Multiply(float64(daysPerYear) / float64(s.PeriodDays()))
}

// ModifiableSource is a contiguous run of periodic sources whose amount may
// change over time. Adjacent sources may touch but neither overlap nor
// leave a gap of more than one day. It holds its own copies of the sources
// and is the only writer of their end dates.
type ModifiableSource struct {
	core.Record

	Name        string `json:"name"`
	Description string `json:"description"`

	sources []PeriodicSource
}

// NewModifiableSource validates sources and stores copies of them.
func NewModifiableSource(name, description string, sources []*PeriodicSource) (*ModifiableSource, error) {
	if len(sources) == 0 {
		return nil, core.Invalid("must have at least one source")
	}
	held := make([]PeriodicSource, len(sources))
	for i, src := range sources {
		if src == nil {
			return nil, core.Invalid("source %d is nil", i)
		}
		held[i] = *src
	}
	for i := 1; i < len(held); i++ {
		prev, next := held[i-1], held[i]
		if next.StartDate.Before(prev.EndDate) {
			return nil, core.Invalid("sources must be in order and not overlap")
		}
		if prev.EndDate.DaysUntil(next.StartDate) > 1 {
			return nil, core.Invalid("sources must be contiguous")
		}
	}
	return &ModifiableSource{
		Record:      core.NewRecord(),
		Name:        name,
		Description: description,
		sources:     held,
	}, nil
}

// Sources returns copies of the sources in date order.
func (m *ModifiableSource) Sources() []PeriodicSource {
	return slices.Clone(m.sources)
}

// AddSource ends the current tail the day before source starts, then
// appends a copy of source. A source that does not start after the tail's
// start date is rejected, since the truncated tail would end before it
// began.
func (m *ModifiableSource) AddSource(source *PeriodicSource) error {
	tail := &m.sources[len(m.sources)-1]
	if !source.StartDate.After(tail.StartDate) {
		return core.Invalid("sources must be in order and not overlap")
	}
	tail.EndDate = source.StartDate.AddDays(-1)
	m.sources = append(m.sources, *source)
	m.Touch()
	return nil
}
