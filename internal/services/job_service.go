package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"networth/internal/amqp"
	"networth/internal/cache"
	"networth/internal/compensation"
	"networth/internal/core"
	"networth/internal/income"
	"networth/internal/jobs"
	"networth/internal/log"
)

// Publisher sends job change notifications.
type Publisher interface {
	PublishJobEvent(ctx context.Context, event *amqp.JobEvent) error
}

// Options configures a JobService. Zero values fall back to defaults.
type Options struct {
	// Publisher is optional; without one no events are sent.
	Publisher   Publisher
	CacheSize   int
	CacheTTL    time.Duration
	Concurrency int
	Logger      *log.Logger
}

// totalsKey identifies one cached breakdown. UpdatedAt makes entries for a
// modified job unreachable even before they are evicted.
type totalsKey struct {
	JobID     uuid.UUID
	UpdatedAt int64
	Start     string
	End       string
}

// JobSummary is one job's breakdown for a period.
type JobSummary struct {
	JobID     uuid.UUID              `json:"job_id"`
	Name      string                 `json:"name"`
	Currency  core.CurrencyCode      `json:"currency"`
	Breakdown compensation.Breakdown `json:"breakdown"`
}

// Summary groups job summaries with per-currency grand totals.
type Summary struct {
	Jobs   []JobSummary                          `json:"jobs"`
	Totals map[core.CurrencyCode]decimal.Decimal `json:"totals"`
}

// JobService orchestrates job persistence, change events and cached
// compensation totals.
type JobService struct {
	store       jobs.Store
	publisher   Publisher
	totals      cache.Cache[totalsKey, compensation.Breakdown]
	concurrency int
	logger      *log.Logger
	events      *log.StructuredLogger

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

func NewJobService(store jobs.Store, opts Options) *JobService {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentJob)

	return &JobService{
		store:       store,
		publisher:   opts.Publisher,
		totals:      cache.NewLRUCache[totalsKey, compensation.Breakdown](opts.CacheSize, opts.CacheTTL),
		concurrency: opts.Concurrency,
		logger:      logger,
		events:      log.NewStructuredLogger(logger),
	}
}

// Cache exposes the totals cache for lifecycle management.
func (s *JobService) Cache() cache.Cleaner {
	if c, ok := s.totals.(cache.Cleaner); ok {
		return c
	}
	return nil
}

func (s *JobService) CreateJob(ctx context.Context, job *income.Job) error {
	if err := s.store.Create(ctx, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	s.events.LogJobChange(ctx, log.OpCreate, job.ID.String(), job.Name)
	s.publish(ctx, job.ID, amqp.JobCreated)
	return nil
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*income.Job, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

func (s *JobService) ListJobs(ctx context.Context) ([]*income.Job, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return list, nil
}

func (s *JobService) UpdateJob(ctx context.Context, job *income.Job) error {
	if err := s.store.Update(ctx, job); err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	s.invalidate(job.ID)
	s.events.LogJobChange(ctx, log.OpUpdate, job.ID.String(), job.Name)
	s.publish(ctx, job.ID, amqp.JobUpdated)
	return nil
}

func (s *JobService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	s.invalidate(id)
	s.events.LogJobChange(ctx, log.OpDelete, id.String(), "")
	s.publish(ctx, id, amqp.JobDeleted)
	return nil
}

// Compensation returns the job's breakdown for [start, end), served from
// cache until the job changes.
func (s *JobService) Compensation(ctx context.Context, id uuid.UUID, start, end core.Date) (compensation.Breakdown, error) {
	if end.Before(start) {
		return compensation.Breakdown{}, core.Invalid("end date %s is before start date %s", end, start)
	}
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return compensation.Breakdown{}, err
	}
	return s.breakdown(ctx, job, start, end)
}

func (s *JobService) breakdown(ctx context.Context, job *income.Job, start, end core.Date) (compensation.Breakdown, error) {
	key := totalsKey{
		JobID:     job.ID,
		UpdatedAt: job.UpdatedAt.UnixNano(),
		Start:     start.String(),
		End:       end.String(),
	}
	if b, ok := s.totals.Get(key); ok {
		s.cacheHits.Add(1)
		s.logger.DebugContext(ctx, "Compensation served from cache", log.FieldJobID, job.ID, log.FieldCacheHit, true)
		return b, nil
	}
	s.cacheMisses.Add(1)

	b, err := job.Package.Breakdown(start, end)
	if err != nil {
		return compensation.Breakdown{}, fmt.Errorf("compensation for job %s: %w", job.ID, err)
	}
	s.totals.Set(key, b)
	return b, nil
}

// SummarizeAll computes every live job's breakdown concurrently. The
// result preserves the store's listing order.
func (s *JobService) SummarizeAll(ctx context.Context, start, end core.Date) (Summary, error) {
	if end.Before(start) {
		return Summary{}, core.Invalid("end date %s is before start date %s", end, start)
	}
	began := time.Now()

	list, err := s.ListJobs(ctx)
	if err != nil {
		return Summary{}, err
	}

	results := make([]JobSummary, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, job := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := s.breakdown(gctx, job, start, end)
			if err != nil {
				return err
			}
			results[i] = JobSummary{JobID: job.ID, Name: job.Name, Currency: job.Package.Currency, Breakdown: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("summarize jobs: %w", err)
	}

	summary := Summary{Jobs: results, Totals: map[core.CurrencyCode]decimal.Decimal{}}
	for _, r := range results {
		summary.Totals[r.Currency] = summary.Totals[r.Currency].Add(r.Breakdown.Total)
	}

	fields := log.NewFields().
		WithOperation(log.OpSummarize).
		WithPeriod(start, end).
		WithDuration(time.Since(began))
	fields[log.FieldCount] = len(results)
	s.logger.InfoContext(ctx, "Summarized jobs", fields.ToSlice()...)
	return summary, nil
}

// TotalIncome sums prorated base salary over [start, end) across every
// live job paid in code.
func (s *JobService) TotalIncome(ctx context.Context, code core.CurrencyCode, start, end core.Date) (decimal.Decimal, error) {
	list, err := s.ListJobs(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	var held []*income.JobIncome
	for _, job := range list {
		if job.Package.Currency != code {
			continue
		}
		ji, err := income.NewJobIncome(job, start, end)
		if err != nil {
			return decimal.Zero, err
		}
		held = append(held, ji)
	}
	return income.NewIncome(held...).TotalIncome(start, end), nil
}

// CacheStats reports cache hits and misses since construction.
func (s *JobService) CacheStats() (hits, misses int64) {
	return s.cacheHits.Load(), s.cacheMisses.Load()
}

func (s *JobService) invalidate(id uuid.UUID) {
	if n := s.totals.DeleteFunc(func(k totalsKey) bool { return k.JobID == id }); n > 0 {
		s.logger.Debug("Invalidated cached totals", log.FieldJobID, id, log.FieldCount, n)
	}
}

// publish sends a change event. Failures are logged and never returned:
// the store is the source of truth.
func (s *JobService) publish(ctx context.Context, id uuid.UUID, action amqp.JobAction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping job event", log.FieldJobID, id)
		return
	}
	if err := s.publisher.PublishJobEvent(ctx, amqp.NewJobEvent(id, action)); err != nil {
		s.events.LogError(ctx, "Failed to publish job event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithJob(id.String(), ""))
	}
}

// Close closes the store and publisher when they hold resources.
func (s *JobService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close job service: %w", err)
	}
	return nil
}
