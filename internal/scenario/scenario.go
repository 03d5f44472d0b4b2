// Package scenario projects net worth from recurring incomes, expenses and
// compounding investments, and compares alternative plans side by side.
//
// Amounts are plain decimals in base units of whatever currency the caller
// works in; a scenario never mixes currencies.
package scenario

import (
	"maps"
	"slices"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// BaseName labels the base scenario in comparisons.
const BaseName = "base"

const monthsPerYear = 12

var (
	twelve = decimal.NewFromInt(monthsPerYear)
	one    = decimal.NewFromInt(1)
)

type ExpenseCategory string

const (
	Housing        ExpenseCategory = "housing"
	Transportation ExpenseCategory = "transportation"
	Food           ExpenseCategory = "food"
	Utilities      ExpenseCategory = "utilities"
	Healthcare     ExpenseCategory = "healthcare"
	Entertainment  ExpenseCategory = "entertainment"
	Other          ExpenseCategory = "other"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case Housing, Transportation, Food, Utilities, Healthcare, Entertainment, Other:
		return true
	}
	return false
}

type (
	// Expense is a recurring cost. Monthly amounts are annualised by twelve.
	Expense struct {
		Category    ExpenseCategory `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Monthly     bool            `json:"is_monthly"`
		Description string          `json:"description,omitempty"`
	}

	// Income is a recurring gross income taxed at a flat TaxRate in [0, 1].
	Income struct {
		Source  string          `json:"source"`
		Amount  decimal.Decimal `json:"amount"`
		Monthly bool            `json:"is_monthly"`
		TaxRate decimal.Decimal `json:"tax_rate"`
	}

	// Investment compounds yearly at ExpectedReturnRate, then receives a
	// year of contributions. A rate of -1 wipes the balance.
	Investment struct {
		Name                string          `json:"name"`
		InitialAmount       decimal.Decimal `json:"initial_amount"`
		MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
		ExpectedReturnRate  decimal.Decimal `json:"expected_return_rate"`
	}

	Scenario struct {
		Name        string       `json:"name"`
		Description string       `json:"description,omitempty"`
		StartDate   core.Date    `json:"start_date"`
		Incomes     []Income     `json:"incomes"`
		Expenses    []Expense    `json:"expenses"`
		Investments []Investment `json:"investments"`
	}

	// Model is a base plan plus named alternatives to compare it with.
	Model struct {
		Base         Scenario            `json:"base_scenario"`
		Alternatives map[string]Scenario `json:"alternative_scenarios,omitempty"`
	}

	// Projection is one scenario's net worth for each year of the horizon,
	// starting with year zero.
	Projection struct {
		Scenario string            `json:"scenario"`
		NetWorth []decimal.Decimal `json:"net_worth"`
	}
)

// UnmarshalJSON defaults is_monthly to true when it is absent.
func (e *Expense) UnmarshalJSON(data []byte) error {
	type plain Expense
	v := plain{Monthly: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = Expense(v)
	return nil
}

func (e Expense) AnnualAmount() decimal.Decimal {
	if e.Monthly {
		return e.Amount.Mul(twelve)
	}
	return e.Amount
}

func (e Expense) Validate() error {
	if !e.Category.Valid() {
		return core.Invalid("unknown expense category %q", e.Category)
	}
	if e.Amount.IsNegative() {
		return core.Invalid("expense amount must not be negative")
	}
	return nil
}

// UnmarshalJSON defaults is_monthly to true when it is absent.
func (in *Income) UnmarshalJSON(data []byte) error {
	type plain Income
	v := plain{Monthly: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*in = Income(v)
	return nil
}

// AnnualAmount is the yearly income after tax.
func (in Income) AnnualAmount() decimal.Decimal {
	gross := in.Amount
	if in.Monthly {
		gross = gross.Mul(twelve)
	}
	return gross.Mul(one.Sub(in.TaxRate))
}

func (in Income) Validate() error {
	if in.Source == "" {
		return core.Invalid("income source is required")
	}
	if in.Amount.IsNegative() {
		return core.Invalid("income %q amount must not be negative", in.Source)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(one) {
		return core.Invalid("income %q tax rate must be between 0 and 1", in.Source)
	}
	return nil
}

// ProjectValue returns the balance at the start of each year 0..years.
func (inv Investment) ProjectValue(years int) []decimal.Decimal {
	if years < 0 {
		return nil
	}
	growth := one.Add(inv.ExpectedReturnRate)
	yearly := inv.MonthlyContribution.Mul(twelve)

	values := make([]decimal.Decimal, years+1)
	current := inv.InitialAmount
	for y := range values {
		values[y] = current
		current = current.Mul(growth).Add(yearly)
	}
	return values
}

func (inv Investment) Validate() error {
	if inv.Name == "" {
		return core.Invalid("investment name is required")
	}
	if inv.InitialAmount.IsNegative() || inv.MonthlyContribution.IsNegative() {
		return core.Invalid("investment %q amounts must not be negative", inv.Name)
	}
	if inv.ExpectedReturnRate.LessThan(one.Neg()) {
		return core.Invalid("investment %q return rate must be at least -1", inv.Name)
	}
	return nil
}

// AnnualNetIncome is after-tax income minus expenses for one year.
func (s Scenario) AnnualNetIncome() decimal.Decimal {
	net := decimal.Zero
	for _, in := range s.Incomes {
		net = net.Add(in.AnnualAmount())
	}
	for _, e := range s.Expenses {
		net = net.Sub(e.AnnualAmount())
	}
	return net
}

// ProjectNetWorth returns, for each year 0..years, the investment balances
// plus the net income saved so far. Savings earn nothing.
func (s Scenario) ProjectNetWorth(years int) []decimal.Decimal {
	if years < 0 {
		return nil
	}
	worth := make([]decimal.Decimal, years+1)
	net := s.AnnualNetIncome()
	for y := range worth {
		worth[y] = net.Mul(decimal.NewFromInt(int64(y)))
	}
	for _, inv := range s.Investments {
		for y, v := range inv.ProjectValue(years) {
			worth[y] = worth[y].Add(v)
		}
	}
	return worth
}

func (s Scenario) Validate() error {
	if s.Name == "" {
		return core.Invalid("scenario name is required")
	}
	if err := s.StartDate.Validate(); err != nil {
		return core.Invalid("scenario %q start date: %v", s.Name, err)
	}
	for _, in := range s.Incomes {
		if err := in.Validate(); err != nil {
			return err
		}
	}
	for _, e := range s.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, inv := range s.Investments {
		if err := inv.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (m Model) Validate() error {
	if err := m.Base.Validate(); err != nil {
		return err
	}
	for name, alt := range m.Alternatives {
		if name == "" || name == BaseName {
			return core.Invalid("alternative scenario name %q is reserved", name)
		}
		if err := alt.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CompareScenarios projects every scenario over the same horizon. The base
// comes first, then alternatives in name order.
func (m Model) CompareScenarios(years int) []Projection {
	names := slices.Sorted(maps.Keys(m.Alternatives))

	out := make([]Projection, 0, len(names)+1)
	out = append(out, Projection{Scenario: BaseName, NetWorth: m.Base.ProjectNetWorth(years)})
	for _, name := range names {
		out = append(out, Projection{Scenario: name, NetWorth: m.Alternatives[name].ProjectNetWorth(years)})
	}
	return out
}
