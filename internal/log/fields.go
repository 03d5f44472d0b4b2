package log

import (
	"sort"
	"time"
)

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldErrorType    = "error_type"
	FieldSuccess      = "success"
	FieldDuration     = "duration_ms"
	FieldJobID        = "job_id"
	FieldJobName      = "job_name"
	FieldAction       = "action"
	FieldPeriodStart  = "period_start"
	FieldPeriodEnd    = "period_end"
	FieldTaxYear      = "tax_year"
	FieldFilingStatus = "filing_status"
	FieldState        = "state"
	FieldCount        = "count"
	FieldCacheHit     = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentJob     = "job"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentTax     = "tax"
)

// Operations defines standard operation names
const (
	OpCreate       = "create"
	OpRead         = "read"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpList         = "list"
	OpPublish      = "publish"
	OpCompensation = "compensation"
	OpSummarize    = "summarize"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error message; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

func (f LogFields) WithJob(id, name string) LogFields {
	f[FieldJobID] = id
	if name != "" {
		f[FieldJobName] = name
	}
	return f
}

// WithPeriod adds a query window; dates render as YYYY-MM-DD.
func (f LogFields) WithPeriod(start, end interface{ String() string }) LogFields {
	f[FieldPeriodStart] = start.String()
	f[FieldPeriodEnd] = end.String()
	return f
}

func (f LogFields) WithTax(year int, filingStatus, state string) LogFields {
	f[FieldTaxYear] = year
	f[FieldFilingStatus] = filingStatus
	f[FieldState] = state
	return f
}

func (f LogFields) WithDuration(d time.Duration) LogFields {
	f[FieldDuration] = d.Milliseconds()
	return f
}

// ToSlice converts LogFields to key/value pairs for slog, ordered by key.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
