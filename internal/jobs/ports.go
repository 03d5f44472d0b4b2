// Package jobs defines the persistence port for jobs and the payload codec
// shared by its backends.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"networth/internal/income"
)

var (
	ErrNotFound      = errors.New("job not found")
	ErrAlreadyExists = errors.New("job already exists")
)

// Ports for job persistence.
type (
	JobWriter interface {
		// Create stores a new job. A job without an ID is assigned one.
		Create(ctx context.Context, job *income.Job) error
		// Update replaces a stored job and bumps its UpdatedAt.
		Update(ctx context.Context, job *income.Job) error
		// Delete soft deletes a job; it is no longer returned by Get or List.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	JobReader interface {
		Get(ctx context.Context, id uuid.UUID) (*income.Job, error)
		// List returns live jobs in creation order.
		List(ctx context.Context) ([]*income.Job, error)
	}

	Store interface {
		JobWriter
		JobReader
	}
)

// Encode serialises a job to its stored JSON payload.
func Encode(job *income.Job) ([]byte, error) {
	b, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	return b, nil
}

// Decode parses a stored payload and validates the result.
func Decode(payload []byte) (*income.Job, error) {
	var job income.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", job.ID, err)
	}
	return &job, nil
}
