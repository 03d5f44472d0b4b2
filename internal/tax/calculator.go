// Package tax resolves marginal bracket tables and computes federal and
// state tax bills.
package tax

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownFilingStatus = errors.New("invalid filing status")
	ErrUnknownState        = errors.New("invalid state")
	ErrNegativeTax         = errors.New("taxes cannot be negative")
)

// Bill is the tax owed on an income figure.
type Bill struct {
	Federal decimal.Decimal `json:"federal"`
	State   decimal.Decimal `json:"state"`
}

// Total returns federal plus state tax.
func (b Bill) Total() decimal.Decimal {
	return b.Federal.Add(b.State)
}

func (b Bill) Validate() error {
	if b.Federal.IsNegative() || b.State.IsNegative() {
		return ErrNegativeTax
	}
	return nil
}

// Calculator holds the federal and state tables resolved for one
// (year, filing status, state) triple. It is immutable and safe for
// concurrent use.
type Calculator struct {
	year         int
	stateYear    int
	filingStatus FilingStatus
	state        string

	federal Table
	local   Table
}

// New resolves the bracket tables for the given inputs.
//
// Years without a federal table fall back to the closest configured year and
// the substitution is logged. The state year is resolved the same way from
// the requested year, independently of the federal one, so the two may
// differ.
func New(year int, filingStatus FilingStatus, state string) (*Calculator, error) {
	c := &Calculator{
		year:         clampYear(year, federalBrackets.years()),
		filingStatus: filingStatus,
		state:        state,
	}
	if c.year != year {
		slog.Info("Using fallback federal tax brackets",
			"requested_year", year,
			"effective_year", c.year,
			"filing_status", filingStatus)
	}

	federal, ok := federalBrackets[c.year][filingStatus]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilingStatus, filingStatus)
	}
	c.federal = federal

	c.stateYear = clampYear(year, stateBrackets.years())
	if c.stateYear != year {
		slog.Info("Using fallback state tax brackets",
			"requested_year", year,
			"effective_year", c.stateYear,
			"state", state)
	}

	byStatus, ok := stateBrackets[c.stateYear][state]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownState, state)
	}
	local, ok := byStatus[filingStatus]
	if !ok {
		return nil, fmt.Errorf("%w: %s for state %s", ErrUnknownFilingStatus, filingStatus, state)
	}
	c.local = local

	return c, nil
}

// Year is the effective federal table year.
func (c *Calculator) Year() int { return c.year }

// StateYear is the effective state table year.
func (c *Calculator) StateYear() int { return c.stateYear }

func (c *Calculator) FilingStatus() FilingStatus { return c.filingStatus }

func (c *Calculator) State() string { return c.state }

// CalculateTax computes the federal and state tax on income.
func (c *Calculator) CalculateTax(income decimal.Decimal) Bill {
	return Bill{
		Federal: c.federal.amount(income),
		State:   c.local.amount(income),
	}
}

// EffectiveRate returns total tax divided by income, or zero for
// non-positive income.
func (c *Calculator) EffectiveRate(income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return c.CalculateTax(income).Total().DivRound(income, 6)
}
