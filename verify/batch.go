package verify

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storage-sig/benchverify/core"
	"github.com/storage-sig/benchverify/pkg/logging"
	"github.com/storage-sig/benchverify/pkg/metrics"
	"github.com/storage-sig/benchverify/pkg/tracing"
)

// Submission is an ordered group of runs sharing one benchmark type,
// judged together.
type Submission struct {
	BenchmarkType core.BenchmarkType
	Runs          []*core.Run
}

// SubmissionsByType converts grouped runs into submissions ordered by
// benchmark type, so batch reports are deterministic across
// invocations.
func SubmissionsByType(groups map[core.BenchmarkType][]*core.Run) []Submission {
	types := make([]core.BenchmarkType, 0, len(groups))
	for benchType := range groups {
		types = append(types, benchType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	subs := make([]Submission, 0, len(types))
	for _, benchType := range types {
		subs = append(subs, Submission{BenchmarkType: benchType, Runs: groups[benchType]})
	}
	return subs
}

// RunOutcome pairs a run with its resolved single-run result.
type RunOutcome struct {
	Run    *core.Run
	Result Result
}

// SubmissionOutcome is the full outcome for one submission: every
// per-run result plus the submission-level result. For a single-run
// submission the overall result is the run result.
type SubmissionOutcome struct {
	BenchmarkType core.BenchmarkType
	Runs          []RunOutcome
	Overall       Result
}

// BatchConfig configures a batch verification driver.
type BatchConfig struct {
	Logger      *zap.SugaredLogger
	Metrics     *metrics.PrometheusMetrics
	Tracer      *tracing.Tracer
	Parallelism int
}

// Batch verifies many independent submissions. Submissions own disjoint
// run sets, so they are verified concurrently; runs inside one
// submission are verified in order.
type Batch struct {
	logger      *zap.SugaredLogger
	metrics     *metrics.PrometheusMetrics
	tracer      *tracing.Tracer
	parallelism int
}

// NewBatch builds a batch driver. Absent logger, tracer and metrics
// default to no-ops; parallelism defaults to 4.
func NewBatch(cfg BatchConfig) *Batch {
	b := &Batch{
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		parallelism: cfg.Parallelism,
	}
	if b.logger == nil {
		b.logger = logging.Nop()
	}
	if b.tracer == nil {
		b.tracer = tracing.Noop()
	}
	if b.parallelism <= 0 {
		b.parallelism = 4
	}
	return b
}

// VerifySubmissions verifies every submission and returns the outcomes
// in input order. The first construction-time error aborts the batch;
// compliance findings, including INVALID, are results, not errors.
func (b *Batch) VerifySubmissions(ctx context.Context, submissions []Submission) ([]SubmissionOutcome, error) {
	outcomes := make([]SubmissionOutcome, len(submissions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, sub := range submissions {
		i, sub := i, sub
		g.Go(func() error {
			outcome, err := b.verifySubmission(ctx, sub)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (b *Batch) verifySubmission(ctx context.Context, sub Submission) (SubmissionOutcome, error) {
	spanID := submissionLabel(sub)
	_, span := b.tracer.StartVerificationSpan(ctx, spanID, string(sub.BenchmarkType), string(ModeMulti))
	defer span.End()

	outcome := SubmissionOutcome{BenchmarkType: sub.BenchmarkType}
	for _, run := range sub.Runs {
		res, err := b.verifyRun(run)
		if err != nil {
			tracing.RecordSpanError(span, err)
			return SubmissionOutcome{}, err
		}
		outcome.Runs = append(outcome.Runs, RunOutcome{Run: run, Result: res})
	}

	if len(sub.Runs) == 1 {
		outcome.Overall = outcome.Runs[0].Result
		tracing.RecordSpanCategory(span, string(outcome.Overall.Category))
		return outcome, nil
	}

	start := time.Now()
	v, err := New(sub.Runs...)
	if err != nil {
		tracing.RecordSpanError(span, err)
		return SubmissionOutcome{}, err
	}
	res, err := v.Verify()
	if err != nil {
		tracing.RecordSpanError(span, err)
		return SubmissionOutcome{}, err
	}
	b.logResult(spanID, res)
	b.record(string(sub.BenchmarkType), ModeMulti, res, time.Since(start))
	outcome.Overall = res
	tracing.RecordSpanCategory(span, string(res.Category))
	return outcome, nil
}

// verifyRun verifies one run in single mode and records the outcome on
// the run, so submission-level category checks can read it.
func (b *Batch) verifyRun(run *core.Run) (Result, error) {
	start := time.Now()
	v, err := New(run)
	if err != nil {
		return Result{}, err
	}
	res, err := v.Verify()
	if err != nil {
		return Result{}, err
	}
	if err := run.RecordOutcome(res.Category, res.Findings); err != nil {
		return Result{}, err
	}
	b.logResult(run.ID().String(), res)
	b.record(string(run.BenchmarkType), ModeSingle, res, time.Since(start))
	return res, nil
}

func (b *Batch) logResult(label string, res Result) {
	for _, f := range res.Findings {
		if f.Category == core.CategoryInvalid {
			b.logger.Errorw(f.String(), "run", label)
		} else {
			b.logger.Infow(f.String(), "run", label)
		}
	}
	b.logger.Infow("verification resolved", "run", label, "category", res.Category.Upper())
}

func (b *Batch) record(benchmarkType string, mode Mode, res Result, elapsed time.Duration) {
	if b.metrics == nil {
		return
	}
	b.metrics.RecordVerification(benchmarkType, string(mode), string(res.Category), elapsed)
	classifications := make([]string, len(res.Findings))
	for i, f := range res.Findings {
		classifications[i] = string(f.Category)
	}
	b.metrics.RecordFindings(classifications)
}

func submissionLabel(sub Submission) string {
	ids := make([]string, len(sub.Runs))
	for i, run := range sub.Runs {
		ids[i] = run.ID().String()
	}
	return strings.Join(ids, ", ")
}
