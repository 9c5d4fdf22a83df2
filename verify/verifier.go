// Package verify selects the applicable rule checker for a run or a
// submission, executes it, and reduces the findings into one compliance
// category.
package verify

import (
	"errors"
	"fmt"

	"github.com/storage-sig/benchverify/core"
	"github.com/storage-sig/benchverify/rules"
)

var (
	// ErrNoRuns is returned when a verifier is constructed without runs.
	ErrNoRuns = errors.New("at least one benchmark run is required")
	// ErrMixedTypes is returned when a multi-run verification mixes
	// benchmark types.
	ErrMixedTypes = errors.New("multi-run verification requires all runs share one benchmark type")
	// ErrUnsupportedType is returned when no checker is registered for
	// the runs' benchmark type.
	ErrUnsupportedType = errors.New("no rules checker registered for benchmark type")
)

// Mode distinguishes single-run from submission verification.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Result is the outcome of one verification: the resolved category and
// the full finding list that produced it. Verification is pure; callers
// that want the outcome stored on the run use Run.RecordOutcome.
type Result struct {
	Category core.Category
	Findings []core.Finding
}

// Verifier resolves the compliance category for one run or one
// submission of runs.
type Verifier struct {
	mode    Mode
	runs    []*core.Run
	checker rules.Checker
}

// New builds a verifier for the given runs: one run selects the
// single-run checker for its benchmark type, two or more select the
// submission checker. Zero runs, mixed benchmark types, and benchmark
// types without a registered checker are construction errors.
func New(runs ...*core.Run) (*Verifier, error) {
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}

	benchType := runs[0].BenchmarkType
	for _, run := range runs[1:] {
		if run.BenchmarkType != benchType {
			return nil, fmt.Errorf("%w: got %s and %s", ErrMixedTypes, benchType, run.BenchmarkType)
		}
	}

	v := &Verifier{runs: runs}
	if len(runs) == 1 {
		v.mode = ModeSingle
	} else {
		v.mode = ModeMulti
	}

	checker, err := checkerFor(v.mode, benchType, runs)
	if err != nil {
		return nil, err
	}
	v.checker = checker
	return v, nil
}

// checkerFor is the total mapping from benchmark type and scope to the
// registered checker. An unmatched type is an error, never a no-op.
func checkerFor(mode Mode, benchType core.BenchmarkType, runs []*core.Run) (rules.Checker, error) {
	switch benchType {
	case core.BenchmarkTraining:
		if mode == ModeSingle {
			return rules.NewTrainingRunChecker(runs[0]), nil
		}
		return rules.NewTrainingSubmissionChecker(runs), nil
	case core.BenchmarkCheckpointing:
		if mode == ModeSingle {
			return rules.NewCheckpointingRunChecker(runs[0]), nil
		}
		return rules.NewCheckpointingSubmissionChecker(runs), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, benchType)
	}
}

// Mode returns the verification scope selected at construction.
func (v *Verifier) Mode() Mode { return v.mode }

// Verify executes every check and reduces the findings to one category.
// Any INVALID finding resolves to INVALID; otherwise any OPEN finding
// resolves to OPEN; otherwise the result is CLOSED. A finding carrying
// an unknown classification is an error.
func (v *Verifier) Verify() (Result, error) {
	findings := rules.RunChecks(v.checker)

	var numInvalid, numOpen int
	for _, f := range findings {
		switch f.Category {
		case core.CategoryInvalid:
			numInvalid++
		case core.CategoryOpen:
			numOpen++
		case core.CategoryClosed:
		default:
			return Result{}, fmt.Errorf("unknown validation category: %q", f.Category)
		}
	}

	res := Result{Findings: findings}
	switch {
	case numInvalid > 0:
		res.Category = core.CategoryInvalid
	case numOpen > 0:
		res.Category = core.CategoryOpen
	default:
		res.Category = core.CategoryClosed
	}
	return res, nil
}
