package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"networth/internal/core"
	"networth/internal/income"
	"networth/internal/jobs"

	_ "modernc.org/sqlite"
)

// Fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores jobs as JSON payloads in a single table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ jobs.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create implements jobs.JobWriter
func (r *SQLiteRepository) Create(ctx context.Context, job *income.Job) error {
	if job.ID == uuid.Nil {
		job.Record = core.NewRecord()
	}
	if err := job.Validate(); err != nil {
		return err
	}
	payload, err := jobs.Encode(job)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, name, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		job.ID.String(), job.Name, payload,
		job.CreatedAt.UTC().Format(timestampLayout),
		job.UpdatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("create job: %w", err)
	} else if n == 0 {
		return jobs.ErrAlreadyExists
	}

	slog.InfoContext(ctx, "Job saved to SQLite", "job_id", job.ID, "job_name", job.Name)
	return nil
}

// Get implements jobs.JobReader
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (*income.Job, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM jobs WHERE id = ? AND deleted_at IS NULL`, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, jobs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return jobs.Decode(payload)
}

// List implements jobs.JobReader
func (r *SQLiteRepository) List(ctx context.Context) ([]*income.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM jobs WHERE deleted_at IS NULL ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*income.Job
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job, err := jobs.Decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

// Update implements jobs.JobWriter
func (r *SQLiteRepository) Update(ctx context.Context, job *income.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	// The timestamp only advances when a row was written.
	prev := job.UpdatedAt
	job.Touch()
	if err := r.update(ctx, job); err != nil {
		job.UpdatedAt = prev
		return err
	}

	slog.InfoContext(ctx, "Job updated", "job_id", job.ID)
	return nil
}

func (r *SQLiteRepository) update(ctx context.Context, job *income.Job) error {
	payload, err := jobs.Encode(job)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET name = ?, payload = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		job.Name, payload, job.UpdatedAt.UTC().Format(timestampLayout), job.ID.String())
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	return expectOneRow(res)
}

// Delete implements jobs.JobWriter
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(timestampLayout), id.String())
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Job soft deleted", "job_id", id)
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return jobs.ErrNotFound
	}
	return nil
}
