package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencyCode is an ISO 4217 currency code.
type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	CNY CurrencyCode = "CNY"
	INR CurrencyCode = "INR"
)

type currencyConfig struct {
	decimals int32
	symbol   string
}

// currencyConfigs is read-only after package initialisation.
var currencyConfigs = map[CurrencyCode]currencyConfig{
	USD: {decimals: 2, symbol: "$"},
	EUR: {decimals: 2, symbol: "€"},
	GBP: {decimals: 2, symbol: "£"},
	JPY: {decimals: 0, symbol: "¥"},
	CNY: {decimals: 2, symbol: "¥"},
	INR: {decimals: 2, symbol: "₹"},
}

// Valid reports whether the code has a currency configuration.
func (c CurrencyCode) Valid() bool {
	_, ok := currencyConfigs[c]
	return ok
}

// Decimals returns the number of minor-unit digits, e.g. 2 for USD.
func (c CurrencyCode) Decimals() int32 {
	return currencyConfigs[c].decimals
}

// Symbol returns the display symbol.
func (c CurrencyCode) Symbol() string {
	return currencyConfigs[c].symbol
}

// ParseCurrencyCode normalises and validates a currency code.
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	code := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		return "", Invalid("unknown currency code %q", s)
	}
	return code, nil
}

// Currency is a monetary value held as an integer count of the currency's
// minor unit (cents for USD). Fractional minor units never occur: every
// operation producing a non-integer rounds half to even.
type Currency struct {
	Code   CurrencyCode `json:"code"`
	Amount int64        `json:"amount"`
}

// NewCurrency builds a Currency from a minor-unit amount.
func NewCurrency(code CurrencyCode, amount int64) Currency {
	return Currency{Code: code, Amount: amount}
}

// FromBaseUnits converts a base-unit amount (dollars rather than cents).
func FromBaseUnits(code CurrencyCode, amount float64) Currency {
	scale := math.Pow10(int(code.Decimals()))
	return Currency{Code: code, Amount: int64(math.RoundToEven(amount * scale))}
}

// BaseUnits returns the amount in base units, for display.
// Use Amount or Decimal for calculations.
func (c Currency) BaseUnits() float64 {
	return float64(c.Amount) / math.Pow10(int(c.Code.Decimals()))
}

// Decimal returns the exact base-unit value.
func (c Currency) Decimal() decimal.Decimal {
	return decimal.New(c.Amount, -c.Code.Decimals())
}

// Format renders the amount with its symbol and thousands separators,
// e.g. "$1,234.56" or "¥123,456".
func (c Currency) Format() string {
	cfg := currencyConfigs[c.Code]
	sign := ""
	amount := c.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if cfg.decimals == 0 {
		return sign + cfg.symbol + humanize.Comma(amount)
	}
	scale := int64(math.Pow10(int(cfg.decimals)))
	whole, frac := amount/scale, amount%scale
	return fmt.Sprintf("%s%s%s.%0*d", sign, cfg.symbol, humanize.Comma(whole), int(cfg.decimals), frac)
}

func (c Currency) String() string {
	return c.Format()
}

// Add sums two amounts of the same currency.
func (c Currency) Add(other Currency) (Currency, error) {
	if c.Code != other.Code {
		return Currency{}, fmt.Errorf("%w: cannot add %s to %s", ErrCurrencyMismatch, other.Code, c.Code)
	}
	return Currency{Code: c.Code, Amount: c.Amount + other.Amount}, nil
}

// Multiply scales the amount by factor, rounding half to even.
func (c Currency) Multiply(factor float64) Currency {
	return Currency{Code: c.Code, Amount: int64(math.RoundToEven(float64(c.Amount) * factor))}
}

// IsZero reports whether the amount is zero.
func (c Currency) IsZero() bool {
	return c.Amount == 0
}

func (c Currency) Validate() error {
	if !c.Code.Valid() {
		return Invalid("unknown currency code %q", c.Code)
	}
	return nil
}
