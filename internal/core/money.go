package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string in base units to a Currency.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Digits
// beyond the currency's minor unit are rounded half to even, the same policy
// Multiply uses. Negative values, signs, exponents and empty input are
// rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount(USD, "12.34")  -> 1234
//	ParseAmount(USD, "12,34")  -> 1234
//	ParseAmount(USD, "12.345") -> 1234 (half to even)
//	ParseAmount(USD, "12.355") -> 1236 (half to even)
//	ParseAmount(JPY, "1234.5") -> 1234
func ParseAmount(code CurrencyCode, s string) (Currency, error) {
	if !code.Valid() {
		return Currency{}, Invalid("unknown currency code %q", code)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Currency{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Currency{}, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 {
		return Currency{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Currency{}, ErrInvalidAmount
	}
	minor := d.Shift(code.Decimals()).RoundBank(0)
	if !minor.IsInteger() || minor.BigInt().BitLen() > 62 {
		return Currency{}, ErrInvalidAmount
	}
	return Currency{Code: code, Amount: minor.IntPart()}, nil
}

// ParseDecimal parses a non-negative decimal such as an income figure.
// Commas are treated as thousands separators ("250,000.50").
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
