// Package compensation models an employee's compensation package (base
// salary history, bonuses, stock grants and signing bonuses) and aggregates
// it into period totals.
package compensation

import (
	"fmt"
	"strings"

	"networth/internal/core"
)

// VestingScheduleType is the cadence at which a grant vests after its cliff.
type VestingScheduleType string

const (
	Monthly   VestingScheduleType = "monthly"
	Quarterly VestingScheduleType = "quarterly"
	Annual    VestingScheduleType = "annual"
	Custom    VestingScheduleType = "custom"
)

// Months returns the length of one vesting period in months.
func (v VestingScheduleType) Months() (int, error) {
	switch v {
	case Monthly:
		return 1, nil
	case Quarterly:
		return 3, nil
	case Annual:
		return 12, nil
	default:
		return 0, core.Invalid("vesting schedule type %q has no fixed period", v)
	}
}

// NumPeriods returns how many whole periods fit in months.
func (v VestingScheduleType) NumPeriods(months int) (int, error) {
	period, err := v.Months()
	if err != nil {
		return 0, err
	}
	return months / period, nil
}

func (v VestingScheduleType) Valid() bool {
	switch v {
	case Monthly, Quarterly, Annual, Custom:
		return true
	}
	return false
}

// VestingEvent is a dated block of shares vesting at the grant price.
type VestingEvent struct {
	Date      core.Date     `json:"date"`
	NumShares int64         `json:"num_shares"`
	Amount    core.Currency `json:"amount"`
}

// StockGrant is an equity award and the parameters of its vesting schedule.
// VestingEvents is only consulted for Custom schedules.
type StockGrant struct {
	core.Record

	GrantDate           core.Date           `json:"grant_date"`
	TotalShares         int64               `json:"total_shares"`
	PricePerShare       core.Currency       `json:"price_per_share"`
	VestingScheduleType VestingScheduleType `json:"vesting_schedule_type"`
	VestingStartDate    core.Date           `json:"vesting_start_date"`
	VestingPeriodMonths int                 `json:"vesting_period_months"`
	CliffMonths         int                 `json:"cliff_months"`
	VestingEvents       []VestingEvent      `json:"vesting_events,omitempty"`
}

func (g StockGrant) Validate() error {
	if !g.VestingScheduleType.Valid() {
		return core.Invalid("unknown vesting schedule type %q", g.VestingScheduleType)
	}
	if err := g.PricePerShare.Validate(); err != nil {
		return err
	}
	if g.VestingScheduleType == Custom {
		for _, e := range g.VestingEvents {
			if e.Amount.Code != g.PricePerShare.Code {
				return core.Invalid("vesting event on %s is in %s, grant is in %s", e.Date, e.Amount.Code, g.PricePerShare.Code)
			}
		}
		return nil
	}
	if g.TotalShares <= 0 {
		return core.Invalid("total shares must be positive")
	}
	if g.VestingPeriodMonths < 1 {
		return core.Invalid("vesting period must be at least one month")
	}
	if g.CliffMonths < 0 || g.CliffMonths > g.VestingPeriodMonths {
		return core.Invalid("cliff of %d months must be between 0 and the %d month vesting period", g.CliffMonths, g.VestingPeriodMonths)
	}
	return nil
}

// CalculateVestingSchedule returns the grant's vesting events in date order.
//
// Custom schedules are returned as stored. For the other types, the block
// accumulated up to the cliff (at least one month) vests on the cliff date
// and the remainder is split evenly over the periods that follow. Both
// counts are truncated to whole shares and the truncated remainder is not
// redistributed, so the events may sum to slightly less than TotalShares.
func (g StockGrant) CalculateVestingSchedule() ([]VestingEvent, error) {
	if g.VestingScheduleType == Custom {
		return g.VestingEvents, nil
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	step, err := g.VestingScheduleType.Months()
	if err != nil {
		return nil, err
	}

	cliff := max(g.CliffMonths, 1)
	monthsAfterCliff := g.VestingPeriodMonths - cliff
	periods, err := g.VestingScheduleType.NumPeriods(monthsAfterCliff)
	if err != nil {
		return nil, err
	}

	// total*cliff/period is real valued; keep everything over the common
	// denominator VestingPeriodMonths so truncation happens exactly once.
	sharesAtCliff := g.TotalShares * int64(cliff) / int64(g.VestingPeriodMonths)
	var sharesPerPeriod int64
	if periods > 0 {
		remainingNumerator := g.TotalShares*int64(g.VestingPeriodMonths) - g.TotalShares*int64(cliff)
		sharesPerPeriod = remainingNumerator / (int64(g.VestingPeriodMonths) * int64(periods))
	}

	var events []VestingEvent
	for worked := cliff; worked <= g.VestingPeriodMonths; worked += step {
		shares := sharesPerPeriod
		if worked == g.CliffMonths || (g.CliffMonths == 0 && worked == cliff) {
			shares = sharesAtCliff
		}
		events = append(events, VestingEvent{
			Date:      g.VestingStartDate.AddMonths(worked),
			NumShares: shares,
			Amount:    g.PricePerShare.Multiply(float64(shares)),
		})
	}
	return events, nil
}

// VestedShares counts shares vesting in [start, end] inclusive.
func (g StockGrant) VestedShares(start, end core.Date) (int64, error) {
	events, err := g.CalculateVestingSchedule()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range events {
		if !e.Date.Before(start) && !e.Date.After(end) {
			total += e.NumShares
		}
	}
	return total, nil
}

func (g StockGrant) String() string {
	var b strings.Builder
	b.WriteString("Stock Grant:\n")
	fmt.Fprintf(&b, "    Grant Date: %s\n", g.GrantDate)
	fmt.Fprintf(&b, "    Total Shares: %d\n", g.TotalShares)
	fmt.Fprintf(&b, "    Price Per Share: %s\n", g.PricePerShare)
	fmt.Fprintf(&b, "    Vesting Schedule Type: %s\n", g.VestingScheduleType)
	fmt.Fprintf(&b, "    Vesting Start Date: %s\n", g.VestingStartDate)
	fmt.Fprintf(&b, "    Vesting Period Months: %d\n", g.VestingPeriodMonths)
	fmt.Fprintf(&b, "    Cliff Months: %d\n", g.CliffMonths)
	return b.String()
}
