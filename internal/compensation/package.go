package compensation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

const daysPerYear = 365

type (
	// BaseSalaryChange sets the annual base salary from EffectiveDate until
	// the next change. BonusPercentage is informational only and never
	// enters the period totals.
	BaseSalaryChange struct {
		core.Record

		EffectiveDate   core.Date        `json:"effective_date"`
		AnnualAmount    core.Currency    `json:"annual_amount"`
		BonusPercentage *decimal.Decimal `json:"bonus_percentage,omitempty"`
		Reason          string           `json:"reason,omitempty"`
	}

	BonusPayment struct {
		core.Record

		Date        core.Date     `json:"date"`
		Amount      core.Currency `json:"amount"`
		Type        string        `json:"type"` // e.g. "performance", "holiday"
		Description string        `json:"description,omitempty"`
	}

	SigningBonus struct {
		core.Record

		PaymentDate core.Date     `json:"payment_date"`
		Amount      core.Currency `json:"amount"`
		Conditions  string        `json:"conditions,omitempty"`
	}

	// Package is everything an employee is paid under one job. The lists
	// carry no ordering invariant; totals sort internally where needed.
	Package struct {
		core.Record

		EmployeeID        string             `json:"employee_id"`
		StartDate         core.Date          `json:"start_date"`
		Currency          core.CurrencyCode  `json:"currency"`
		BaseSalaryHistory []BaseSalaryChange `json:"base_salary_history"`
		BonusPayments     []BonusPayment     `json:"bonus_payments"`
		StockGrants       []StockGrant       `json:"stock_grants"`
		SigningBonuses    []SigningBonus     `json:"signing_bonuses"`
	}

	// Breakdown holds the four sub-totals of a period and their sum, in
	// base units of the package currency.
	Breakdown struct {
		Income         decimal.Decimal `json:"income"`
		Bonuses        decimal.Decimal `json:"bonuses"`
		StockGrants    decimal.Decimal `json:"stock_grants"`
		SigningBonuses decimal.Decimal `json:"signing_bonuses"`
		Total          decimal.Decimal `json:"total"`
	}
)

// YearlyTotal is the annual amount grossed up by the bonus percentage, for
// display.
func (s BaseSalaryChange) YearlyTotal() core.Currency {
	if s.BonusPercentage == nil {
		return s.AnnualAmount
	}
	factor, _ := decimal.NewFromInt(1).Add(*s.BonusPercentage).Float64()
	return s.AnnualAmount.Multiply(factor)
}

func (s BaseSalaryChange) String() string {
	var b strings.Builder
	b.WriteString("Base Salary Change:\n")
	fmt.Fprintf(&b, "    Yearly Total: %s\n", s.YearlyTotal())
	fmt.Fprintf(&b, "    Annual Amount: %s\n", s.AnnualAmount)
	if s.BonusPercentage != nil {
		fmt.Fprintf(&b, "    Bonus Percentage: %s\n", s.BonusPercentage)
	}
	if s.Reason != "" {
		fmt.Fprintf(&b, "    Reason: %s\n", s.Reason)
	}
	fmt.Fprintf(&b, "    Effective Date: %s\n", s.EffectiveDate)
	return b.String()
}

func (p BonusPayment) String() string {
	return fmt.Sprintf("Bonus Payment: %s %s (%s) %s", p.Date, p.Amount, p.Type, p.Description)
}

func (s SigningBonus) String() string {
	return fmt.Sprintf("Signing Bonus: %s %s %s", s.PaymentDate, s.Amount, s.Conditions)
}

// NewPackage returns an empty package denominated in code.
func NewPackage(employeeID string, startDate core.Date, code core.CurrencyCode) *Package {
	return &Package{
		Record:     core.NewRecord(),
		EmployeeID: employeeID,
		StartDate:  startDate,
		Currency:   code,
	}
}

func (p *Package) checkCurrency(c core.Currency, what string) error {
	if c.Code != p.Currency {
		return fmt.Errorf("%w: %s is in %s, package is in %s", core.ErrCurrencyMismatch, what, c.Code, p.Currency)
	}
	return nil
}

// AddBaseSalary appends a salary change in place.
func (p *Package) AddBaseSalary(s BaseSalaryChange) error {
	if err := p.checkCurrency(s.AnnualAmount, "base salary"); err != nil {
		return err
	}
	if err := s.EffectiveDate.Validate(); err != nil {
		return core.Invalid("base salary effective date: %v", err)
	}
	p.BaseSalaryHistory = append(p.BaseSalaryHistory, s)
	p.Touch()
	return nil
}

// AddBonus appends a bonus payment in place.
func (p *Package) AddBonus(b BonusPayment) error {
	if err := p.checkCurrency(b.Amount, "bonus"); err != nil {
		return err
	}
	if err := b.Date.Validate(); err != nil {
		return core.Invalid("bonus date: %v", err)
	}
	p.BonusPayments = append(p.BonusPayments, b)
	p.Touch()
	return nil
}

// AddStockGrant appends a grant in place after validating its schedule.
func (p *Package) AddStockGrant(g StockGrant) error {
	if err := p.checkCurrency(g.PricePerShare, "stock grant"); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	p.StockGrants = append(p.StockGrants, g)
	p.Touch()
	return nil
}

// AddSigningBonus appends a signing bonus in place.
func (p *Package) AddSigningBonus(s SigningBonus) error {
	if err := p.checkCurrency(s.Amount, "signing bonus"); err != nil {
		return err
	}
	if err := s.PaymentDate.Validate(); err != nil {
		return core.Invalid("signing bonus date: %v", err)
	}
	p.SigningBonuses = append(p.SigningBonuses, s)
	p.Touch()
	return nil
}

// Validate checks a package assembled outside the Add* builders, e.g. one
// decoded from storage.
func (p *Package) Validate() error {
	if !p.Currency.Valid() {
		return core.Invalid("unknown package currency %q", p.Currency)
	}
	for _, s := range p.BaseSalaryHistory {
		if err := p.checkCurrency(s.AnnualAmount, "base salary"); err != nil {
			return err
		}
	}
	for _, b := range p.BonusPayments {
		if err := p.checkCurrency(b.Amount, "bonus"); err != nil {
			return err
		}
	}
	for _, g := range p.StockGrants {
		if err := p.checkCurrency(g.PricePerShare, "stock grant"); err != nil {
			return err
		}
		if err := g.Validate(); err != nil {
			return err
		}
	}
	for _, s := range p.SigningBonuses {
		if err := p.checkCurrency(s.Amount, "signing bonus"); err != nil {
			return err
		}
	}
	return nil
}

// toBase converts an accumulated minor-unit total to base units.
func (p *Package) toBase(minor int64) decimal.Decimal {
	return decimal.New(minor, -p.Currency.Decimals())
}

// TotalIncome prorates base salary over [start, end). Each salary is valid
// from its effective date to the day before the next change, and accrues
// annual * days / 365 where days is the length of its overlap with the
// query minus one.
func (p *Package) TotalIncome(start, end core.Date) decimal.Decimal {
	history := slices.Clone(p.BaseSalaryHistory)
	slices.SortStableFunc(history, func(a, b BaseSalaryChange) int {
		return a.EffectiveDate.Compare(b.EffectiveDate.Time)
	})

	var total int64
	for i, salary := range history {
		if !salary.EffectiveDate.Before(end) {
			continue
		}
		periodStart := core.MaxDate(start, salary.EffectiveDate)
		periodEnd := end
		for _, next := range history[i+1:] {
			if next.EffectiveDate.After(salary.EffectiveDate) {
				periodEnd = core.MinDate(end, next.EffectiveDate.AddDays(-1))
				break
			}
		}
		if periodEnd.Before(periodStart) {
			continue
		}

		days := max(periodStart.DaysUntil(periodEnd)-1, 0)
		total += salary.AnnualAmount.Multiply(float64(days) / daysPerYear).Amount
	}
	return p.toBase(total)
}

// TotalBonuses sums bonuses paid in [start, end).
func (p *Package) TotalBonuses(start, end core.Date) decimal.Decimal {
	var total int64
	for _, b := range p.BonusPayments {
		if inHalfOpen(b.Date, start, end) {
			total += b.Amount.Amount
		}
	}
	return p.toBase(total)
}

// TotalSigningBonuses sums signing bonuses paid in [start, end).
func (p *Package) TotalSigningBonuses(start, end core.Date) decimal.Decimal {
	var total int64
	for _, s := range p.SigningBonuses {
		if inHalfOpen(s.PaymentDate, start, end) {
			total += s.Amount.Amount
		}
	}
	return p.toBase(total)
}

// TotalStockGrants sums the value of every vesting event in [start, end].
// The end date is inclusive: a vest date pays for work done up to and
// including that day.
func (p *Package) TotalStockGrants(start, end core.Date) (decimal.Decimal, error) {
	var total int64
	for _, g := range p.StockGrants {
		events, err := g.CalculateVestingSchedule()
		if err != nil {
			return decimal.Zero, fmt.Errorf("vesting schedule for grant %s: %w", g.ID, err)
		}
		for _, e := range events {
			if !e.Date.Before(start) && !e.Date.After(end) {
				total += e.Amount.Amount
			}
		}
	}
	return p.toBase(total), nil
}

// Breakdown computes all four sub-totals, each with its own boundary
// convention, and their sum.
func (p *Package) Breakdown(start, end core.Date) (Breakdown, error) {
	grants, err := p.TotalStockGrants(start, end)
	if err != nil {
		return Breakdown{}, err
	}
	b := Breakdown{
		Income:         p.TotalIncome(start, end),
		Bonuses:        p.TotalBonuses(start, end),
		StockGrants:    grants,
		SigningBonuses: p.TotalSigningBonuses(start, end),
	}
	b.Total = b.Income.Add(b.Bonuses).Add(b.StockGrants).Add(b.SigningBonuses)
	return b, nil
}

// TotalCompensation is the sum of the four sub-totals.
func (p *Package) TotalCompensation(start, end core.Date) (decimal.Decimal, error) {
	b, err := p.Breakdown(start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

func (p *Package) String() string {
	var b strings.Builder
	b.WriteString("Compensation Package:\n")
	fmt.Fprintf(&b, "    Employee ID: %s\n", p.EmployeeID)
	fmt.Fprintf(&b, "    Start Date: %s\n", p.StartDate)

	salaries := slices.Clone(p.BaseSalaryHistory)
	slices.SortStableFunc(salaries, func(a, b BaseSalaryChange) int { return a.EffectiveDate.Compare(b.EffectiveDate.Time) })
	b.WriteString("    Base Salary:\n")
	for _, s := range salaries {
		fmt.Fprintf(&b, "        %s %s\n", s.EffectiveDate, s.AnnualAmount)
	}

	bonuses := slices.Clone(p.BonusPayments)
	slices.SortStableFunc(bonuses, func(a, b BonusPayment) int { return a.Date.Compare(b.Date.Time) })
	b.WriteString("    Bonus Payments:\n")
	for _, bp := range bonuses {
		fmt.Fprintf(&b, "        %s\n", bp)
	}

	grants := slices.Clone(p.StockGrants)
	slices.SortStableFunc(grants, func(a, b StockGrant) int { return a.GrantDate.Compare(b.GrantDate.Time) })
	b.WriteString("    Stock Grants:\n")
	for _, g := range grants {
		fmt.Fprintf(&b, "        %s %d shares @ %s (%s)\n", g.GrantDate, g.TotalShares, g.PricePerShare, g.VestingScheduleType)
	}

	signing := slices.Clone(p.SigningBonuses)
	slices.SortStableFunc(signing, func(a, b SigningBonus) int { return a.PaymentDate.Compare(b.PaymentDate.Time) })
	b.WriteString("    Signing Bonuses:\n")
	for _, s := range signing {
		fmt.Fprintf(&b, "        %s\n", s)
	}
	return b.String()
}

func inHalfOpen(d, start, end core.Date) bool {
	return !d.Before(start) && d.Before(end)
}
