package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"networth/internal/compensation"
	"networth/internal/core"
	"networth/internal/income"
	"networth/internal/jobs"
)

func newJob(t *testing.T, name string) *income.Job {
	t.Helper()
	pkg := compensation.NewPackage("emp", core.NewDate(2024, 1, 1), core.USD)
	if err := pkg.AddBaseSalary(compensation.BaseSalaryChange{
		EffectiveDate: core.NewDate(2024, 1, 1),
		AnnualAmount:  core.NewCurrency(core.USD, 100_000_00),
	}); err != nil {
		t.Fatalf("AddBaseSalary: %v", err)
	}
	return income.NewJob(name, pkg)
}

func TestStoreCreateGetList(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, b := newJob(t, "a"), newJob(t, "b")
	for _, j := range []*income.Job{a, b} {
		if err := s.Create(ctx, j); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "a" || got == a {
		t.Fatalf("unexpected job %+v", got)
	}
	start, end := core.NewDate(2024, 1, 1), core.NewDate(2025, 1, 1)
	if !got.TotalIncome(start, end).Equal(a.TotalIncome(start, end)) {
		t.Fatal("stored package does not round trip")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("unexpected list order: %v", list)
	}

	if err := s.Create(ctx, a); !errors.Is(err, jobs.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestStoreAssignsID(t *testing.T) {
	j := newJob(t, "anon")
	j.Record = core.Record{}
	if err := New().Create(context.Background(), j); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if j.ID == uuid.Nil || j.CreatedAt.IsZero() {
		t.Fatalf("record not initialised: %+v", j.Record)
	}
}

func TestStoreRejectsInvalidJob(t *testing.T) {
	j := newJob(t, "")
	if err := New().Create(context.Background(), j); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	s := New()
	j := newJob(t, "a")
	if err := s.Create(ctx, j); err != nil {
		t.Fatalf("Create: %v", err)
	}
	j.Name = "mutated"
	got, _ := s.Get(ctx, j.ID)
	if got.Name != "a" {
		t.Fatalf("caller mutation leaked into store: %q", got.Name)
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	j := newJob(t, "a")
	if err := s.Create(ctx, j); err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := j.UpdatedAt
	j.Name = "renamed"
	if err := s.Update(ctx, j); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(ctx, j.ID)
	if got.Name != "renamed" || got.UpdatedAt.Before(before) {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.Update(ctx, newJob(t, "unknown")); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	j := newJob(t, "a")
	if err := s.Create(ctx, j); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, j.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	tests := []struct {
		name string
		err  error
	}{
		{"get", func() error { _, err := s.Get(ctx, j.ID); return err }()},
		{"delete again", s.Delete(ctx, j.ID)},
		{"update", s.Update(ctx, j)},
		{"unknown id", s.Delete(ctx, uuid.New())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, jobs.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", tt.err)
			}
		})
	}

	list, _ := s.List(ctx)
	if len(list) != 0 {
		t.Fatalf("deleted job listed: %v", list)
	}
}
