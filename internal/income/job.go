package income

import (
	"fmt"

	"github.com/shopspring/decimal"

	"networth/internal/compensation"
	"networth/internal/core"
)

var (
	_ Provider = (*compensation.Package)(nil)
	_ Provider = (*Job)(nil)
	_ Provider = (*JobIncome)(nil)
	_ Provider = (*Income)(nil)
)

// Job is a named employment and its compensation package.
type Job struct {
	core.Record

	Name    string                `json:"name"`
	Package *compensation.Package `json:"comp_package"`
}

// NewJob returns a job with a fresh record.
func NewJob(name string, pkg *compensation.Package) *Job {
	return &Job{Record: core.NewRecord(), Name: name, Package: pkg}
}

func (j *Job) Validate() error {
	if j.Name == "" {
		return core.Invalid("job name is required")
	}
	if j.Package == nil {
		return core.Invalid("job %q has no compensation package", j.Name)
	}
	return j.Package.Validate()
}

// TotalIncome is the package's prorated base salary.
func (j *Job) TotalIncome(start, end core.Date) decimal.Decimal {
	return j.Package.TotalIncome(start, end)
}

func (j *Job) String() string {
	return fmt.Sprintf("Job:\n    Name: %s\n    Compensation Package: %s", j.Name, j.Package)
}

// JobIncome ties a job to the window it was held.
type JobIncome struct {
	Job       *Job      `json:"job"`
	StartDate core.Date `json:"start_date"`
	EndDate   core.Date `json:"end_date"`
}

func NewJobIncome(job *Job, start, end core.Date) (*JobIncome, error) {
	if end.Before(start) {
		return nil, core.Invalid("end date must be after start date")
	}
	return &JobIncome{Job: job, StartDate: start, EndDate: end}, nil
}

// TotalIncome delegates to the job for the queried range; the holding
// window is informational.
func (ji *JobIncome) TotalIncome(start, end core.Date) decimal.Decimal {
	return ji.Job.TotalIncome(start, end)
}

func (ji *JobIncome) String() string {
	return fmt.Sprintf("Job Income:\n    Job: %s\n    Start Date: %s\n    End Date: %s", ji.Job.Name, ji.StartDate, ji.EndDate)
}

// Income is everything earned across jobs.
type Income struct {
	core.Record

	JobIncomes []*JobIncome `json:"job_income"`
}

func NewIncome(incomes ...*JobIncome) *Income {
	return &Income{Record: core.NewRecord(), JobIncomes: incomes}
}

// TotalIncome sums every job income over [start, end).
func (in *Income) TotalIncome(start, end core.Date) decimal.Decimal {
	total := decimal.Zero
	for _, ji := range in.JobIncomes {
		total = total.Add(ji.TotalIncome(start, end))
	}
	return total
}
