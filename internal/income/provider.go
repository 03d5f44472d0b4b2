// Package income composes compensation packages into jobs and income
// streams, and models recurring income sources.
package income

import (
	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// Provider produces a total income in base units for [start, end).
type Provider interface {
	TotalIncome(start, end core.Date) decimal.Decimal
}
