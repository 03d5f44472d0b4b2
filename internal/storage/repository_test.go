package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"networth/internal/compensation"
	"networth/internal/core"
	"networth/internal/income"
	"networth/internal/jobs"
)

func newRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "networth.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func newJob(t *testing.T, name string) *income.Job {
	t.Helper()
	pkg := compensation.NewPackage("emp", core.NewDate(2024, 1, 1), core.USD)
	if err := pkg.AddBaseSalary(compensation.BaseSalaryChange{
		EffectiveDate: core.NewDate(2024, 1, 1),
		AnnualAmount:  core.NewCurrency(core.USD, 100_000_00),
	}); err != nil {
		t.Fatalf("AddBaseSalary: %v", err)
	}
	if err := pkg.AddStockGrant(compensation.StockGrant{
		GrantDate:           core.NewDate(2024, 1, 1),
		TotalShares:         12000,
		PricePerShare:       core.NewCurrency(core.USD, 10_00),
		VestingScheduleType: compensation.Monthly,
		VestingStartDate:    core.NewDate(2024, 1, 1),
		VestingPeriodMonths: 12,
	}); err != nil {
		t.Fatalf("AddStockGrant: %v", err)
	}
	return income.NewJob(name, pkg)
}

func TestMigrationsApplied(t *testing.T) {
	_, path := newRepo(t)
	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("version = %d dirty = %v, want 1 clean", version, dirty)
	}
	// Re-running is a no-op.
	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	a, b := newJob(t, "a"), newJob(t, "b")
	for _, j := range []*income.Job{a, b} {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	start, end := core.NewDate(2024, 1, 1), core.NewDate(2025, 1, 1)
	want, err := a.Package.TotalCompensation(start, end)
	if err != nil {
		t.Fatalf("TotalCompensation: %v", err)
	}
	total, err := got.Package.TotalCompensation(start, end)
	if err != nil {
		t.Fatalf("TotalCompensation: %v", err)
	}
	if !total.Equal(want) {
		t.Fatalf("stored total %s, want %s", total, want)
	}
	if got.Name != "a" || got.ID != a.ID || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("unexpected job %+v", got)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("unexpected list %v", list)
	}

	if err := repo.Create(ctx, a); !errors.Is(err, jobs.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	j := newJob(t, "a")
	if err := repo.Create(ctx, j); err != nil {
		t.Fatalf("Create: %v", err)
	}

	j.Name = "renamed"
	if err := j.Package.AddBonus(compensation.BonusPayment{Date: core.NewDate(2024, 6, 1), Amount: core.NewCurrency(core.USD, 500_00)}); err != nil {
		t.Fatalf("AddBonus: %v", err)
	}
	if err := repo.Update(ctx, j); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "renamed" || len(got.Package.BonusPayments) != 1 {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, j.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, j.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, j.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repo.Update(ctx, j); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating deleted job, got %v", err)
	}
	list, _ := repo.List(ctx)
	if len(list) != 0 {
		t.Fatalf("deleted job listed")
	}
}

func TestRepositoryUnknownID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	if _, err := repo.Get(ctx, uuid.New()); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, uuid.New()); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryFailedUpdateKeepsTimestamp(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	unknown := newJob(t, "never stored")
	before := unknown.UpdatedAt
	if err := repo.Update(ctx, unknown); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !unknown.UpdatedAt.Equal(before) {
		t.Fatalf("UpdatedAt moved from %v to %v on a failed update", before, unknown.UpdatedAt)
	}

	deleted := newJob(t, "deleted")
	if err := repo.Create(ctx, deleted); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, deleted.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	before = deleted.UpdatedAt
	if err := repo.Update(ctx, deleted); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted job, got %v", err)
	}
	if !deleted.UpdatedAt.Equal(before) {
		t.Fatalf("UpdatedAt moved on update of a deleted job")
	}
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "networth.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	j := newJob(t, "durable")
	if err := repo.Create(ctx, j); err != nil {
		t.Fatalf("Create: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if got, err := repo.Get(ctx, j.ID); err != nil || got.Name != "durable" {
		t.Fatalf("Get after reopen = %v, %v", got, err)
	}
}
