package tax

import (
	"slices"

	"github.com/shopspring/decimal"
)

// FilingStatus is the taxpayer category that selects a bracket table.
type FilingStatus string

const (
	MarriedJointly FilingStatus = "married_jointly"
)

// Bracket is one marginal band of a table. Max is unset (Valid == false) for
// the top band.
type Bracket struct {
	Min                    decimal.Decimal
	Max                    decimal.NullDecimal
	Rate                   decimal.Decimal
	AdditionalFromPrevious decimal.Decimal
}

// Table is an ascending, contiguous sequence of brackets.
type Table []Bracket

type (
	federalTables map[int]map[FilingStatus]Table
	stateTables   map[int]map[string]map[FilingStatus]Table
)

// The tables below are built once during package initialisation and never
// written afterwards; Calculator only ever holds read-only references.
var (
	federalBrackets = federalTables{
		2024: {
			MarriedJointly: {
				band("0", "23200", "0.10", "0"),
				band("23201", "94300", "0.12", "2320"),
				band("94301", "201050", "0.22", "10852"),
				band("201051", "383900", "0.24", "34337"),
				band("383901", "487450", "0.32", "78221"),
				band("487451", "731200", "0.35", "111357"),
				top("731201", "0.37", "196669.50"),
			},
		},
		2025: {
			MarriedJointly: {
				band("0", "23850", "0.10", "0"),
				band("23851", "96950", "0.12", "2385"),
				band("96951", "206700", "0.22", "11157"),
				band("206701", "394600", "0.24", "35302"),
				band("394601", "501050", "0.32", "80398"),
				band("501051", "751600", "0.35", "114462"),
				top("751601", "0.37", "202154.50"),
			},
		},
	}

	stateBrackets = stateTables{
		2024: {
			"CA": {
				MarriedJointly: {
					band("0", "21512", "0.01", "0"),
					band("21513", "50998", "0.02", "215.12"),
					band("50999", "80490", "0.04", "804.84"),
					band("80491", "111732", "0.06", "1984.52"),
					band("111733", "141212", "0.08", "3859.04"),
					band("141213", "721318", "0.093", "6217.44"),
					band("721319", "865574", "0.103", "60167.30"),
					band("865575", "1442628", "0.113", "75025.67"),
					top("1442629", "0.123", "140232.77"),
				},
			},
		},
	}
)

func band(min, max, rate, additional string) Bracket {
	return Bracket{
		Min:                    decimal.RequireFromString(min),
		Max:                    decimal.NewNullDecimal(decimal.RequireFromString(max)),
		Rate:                   decimal.RequireFromString(rate),
		AdditionalFromPrevious: decimal.RequireFromString(additional),
	}
}

func top(min, rate, additional string) Bracket {
	return Bracket{
		Min:                    decimal.RequireFromString(min),
		Rate:                   decimal.RequireFromString(rate),
		AdditionalFromPrevious: decimal.RequireFromString(additional),
	}
}

// amount applies the table to income. Brackets are scanned from the highest
// Min downwards and the first one with Min strictly below income wins, so an
// income equal to a bracket's Min is taxed by the bracket beneath it.
func (t Table) amount(income decimal.Decimal) decimal.Decimal {
	for i := len(t) - 1; i >= 0; i-- {
		b := t[i]
		if income.GreaterThan(b.Min) {
			return b.AdditionalFromPrevious.Add(income.Sub(b.Min).Mul(b.Rate))
		}
	}
	return decimal.Zero
}

// contiguous reports whether each bracket starts one unit above the
// previous bracket's Max and only the last bracket is unbounded.
func (t Table) contiguous() bool {
	if len(t) == 0 {
		return false
	}
	one := decimal.NewFromInt(1)
	for i, b := range t {
		last := i == len(t)-1
		if b.Max.Valid == last {
			return false
		}
		if i > 0 && !b.Min.Equal(t[i-1].Max.Decimal.Add(one)) {
			return false
		}
	}
	return true
}

func (f federalTables) years() []int {
	years := make([]int, 0, len(f))
	for y := range f {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

func (s stateTables) years() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// clampYear returns year when configured, otherwise the nearest configured
// year at the edge of the range.
func clampYear(year int, configured []int) int {
	if len(configured) == 0 || slices.Contains(configured, year) {
		return year
	}
	if year < configured[0] {
		return configured[0]
	}
	return configured[len(configured)-1]
}

// FilingStatuses lists the federal filing statuses configured for year
// after clamping.
func FilingStatuses(year int) []FilingStatus {
	year = clampYear(year, federalBrackets.years())
	out := make([]FilingStatus, 0, len(federalBrackets[year]))
	for fs := range federalBrackets[year] {
		out = append(out, fs)
	}
	slices.Sort(out)
	return out
}

// States lists the states with a table for year after clamping.
func States(year int) []string {
	year = clampYear(year, stateBrackets.years())
	out := make([]string, 0, len(stateBrackets[year]))
	for st := range stateBrackets[year] {
		out = append(out, st)
	}
	slices.Sort(out)
	return out
}
