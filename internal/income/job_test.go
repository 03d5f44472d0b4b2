package income

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"networth/internal/compensation"
	"networth/internal/core"
)

func jobWithSalary(t *testing.T, name string, dollars int64, from core.Date) *Job {
	t.Helper()
	pkg := compensation.NewPackage(name, from, core.USD)
	err := pkg.AddBaseSalary(compensation.BaseSalaryChange{
		EffectiveDate: from,
		AnnualAmount:  core.NewCurrency(core.USD, dollars*100),
	})
	if err != nil {
		t.Fatalf("AddBaseSalary: %v", err)
	}
	return NewJob(name, pkg)
}

func TestJobDelegatesToPackage(t *testing.T) {
	job := jobWithSalary(t, "acme", 120_000, core.NewDate(2024, 1, 1))
	start, end := core.NewDate(2024, 1, 1), core.NewDate(2024, 7, 1)

	got := job.TotalIncome(start, end)
	if !got.Equal(decimal.RequireFromString("59506.85")) {
		t.Fatalf("TotalIncome = %s, want 59506.85", got)
	}
	if !got.Equal(job.Package.TotalIncome(start, end)) {
		t.Fatal("job and package disagree")
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestJobValidate(t *testing.T) {
	if err := (&Job{Package: compensation.NewPackage("x", core.NewDate(2024, 1, 1), core.USD)}).Validate(); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing name, got %v", err)
	}
	if err := (&Job{Name: "acme"}).Validate(); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing package, got %v", err)
	}
}

func TestNewJobIncome(t *testing.T) {
	job := jobWithSalary(t, "acme", 100_000, core.NewDate(2024, 1, 1))

	tests := []struct {
		name    string
		start   core.Date
		end     core.Date
		wantErr bool
	}{
		{"ordered", core.NewDate(2024, 1, 1), core.NewDate(2025, 1, 1), false},
		{"same day", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 1), false},
		{"end before start", core.NewDate(2025, 1, 1), core.NewDate(2024, 1, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ji, err := NewJobIncome(job, tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, core.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJobIncome: %v", err)
			}
			if ji.Job != job {
				t.Fatal("job not retained")
			}
		})
	}
}

func TestIncomeSumsJobIncomes(t *testing.T) {
	job1 := jobWithSalary(t, "first", 100_000, core.NewDate(2023, 1, 1))
	job2 := jobWithSalary(t, "second", 80_000, core.NewDate(2024, 1, 1))

	ji1, err := NewJobIncome(job1, core.NewDate(2023, 1, 1), core.NewDate(2025, 1, 1))
	if err != nil {
		t.Fatalf("NewJobIncome: %v", err)
	}
	ji2, err := NewJobIncome(job2, core.NewDate(2024, 1, 1), core.NewDate(2025, 1, 1))
	if err != nil {
		t.Fatalf("NewJobIncome: %v", err)
	}

	start, end := core.NewDate(2023, 1, 1), core.NewDate(2025, 1, 1)
	income := NewIncome(ji1, ji2)
	want := ji1.TotalIncome(start, end).Add(ji2.TotalIncome(start, end))
	if got := income.TotalIncome(start, end); !got.Equal(want) {
		t.Fatalf("TotalIncome = %s, want %s", got, want)
	}

	var p Provider = income
	if !p.TotalIncome(start, end).Equal(want) {
		t.Fatal("Provider view disagrees")
	}

	if got := NewIncome().TotalIncome(start, end); !got.IsZero() {
		t.Fatalf("empty income = %s, want 0", got)
	}
}
