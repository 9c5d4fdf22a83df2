package core

import (
	"fmt"
	"strings"
)

// Category is the compliance classification of a finding, a run, or a
// whole submission.
type Category string

const (
	CategoryClosed  Category = "closed"
	CategoryOpen    Category = "open"
	CategoryInvalid Category = "invalid"
)

// ParseCategory maps a stored category string back to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(s)) {
	case CategoryClosed:
		return CategoryClosed, nil
	case CategoryOpen:
		return CategoryOpen, nil
	case CategoryInvalid:
		return CategoryInvalid, nil
	default:
		return "", fmt.Errorf("unknown category: %q", s)
	}
}

// Upper renders the category the way reports print it (CLOSED/OPEN/INVALID).
func (c Category) Upper() string { return strings.ToUpper(string(c)) }

// BenchmarkType identifies which rulebook applies to a run.
type BenchmarkType string

const (
	BenchmarkTraining      BenchmarkType = "training"
	BenchmarkCheckpointing BenchmarkType = "checkpointing"
	BenchmarkVectorDB      BenchmarkType = "vector_database"
)

// Severity grades a finding for reporting purposes. It does not
// participate in category resolution.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one rule-evaluation outcome. Findings are values: checks
// create them, nothing mutates them afterwards.
type Finding struct {
	Category  Category
	Message   string
	Parameter string
	Expected  any
	Actual    any
	Severity  Severity
}

// String renders a finding as "[INVALID] message (Parameter: p, Expected: e, Actual: a)".
func (f Finding) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", f.Category.Upper(), f.Message)
	if f.Parameter != "" {
		fmt.Fprintf(&b, " (Parameter: %s", f.Parameter)
		if f.Expected != nil && f.Actual != nil {
			fmt.Fprintf(&b, ", Expected: %v, Actual: %v", f.Expected, f.Actual)
		}
		b.WriteString(")")
	}
	return b.String()
}

// RunID labels a run for reports and log lines. It is derived from the
// run's other fields and never set independently.
type RunID struct {
	Program     string
	Command     string
	Model       string
	RunDatetime string
}

// String joins the non-empty parts with underscores, e.g.
// "training_run_benchmark_unet3d_2025-01-31T12:00:00".
func (r RunID) String() string {
	id := r.Program
	if r.Command != "" {
		id += "_" + r.Command
	}
	if r.Model != "" {
		id += "_" + r.Model
	}
	id += "_" + r.RunDatetime
	return id
}
