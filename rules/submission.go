package rules

import (
	"fmt"

	"github.com/storage-sig/benchverify/core"
)

// Checkpoint submissions must total exactly this many checkpoint reads
// and writes, in any split across runs.
const requiredCheckpointOps = 10

// Training submissions must contain exactly this many runs. The check
// enforcing it is still a rulebook placeholder.
const requiredTrainingRuns = 5

// checkRunCategories is the submission check shared by every benchmark
// type: it folds the already-resolved category of each run in the
// submission into one finding, with INVALID dominating OPEN dominating
// CLOSED. A run without a recorded outcome cannot attest any category
// and invalidates the submission.
func checkRunCategories(runs []*core.Run) []core.Finding {
	seen := map[core.Category]bool{}
	unresolved := false
	var actual []string
	for _, run := range runs {
		if !run.Recorded() {
			if !unresolved {
				unresolved = true
				actual = append(actual, "UNRESOLVED")
			}
			continue
		}
		if !seen[run.Category()] {
			seen[run.Category()] = true
			actual = append(actual, run.Category().Upper())
		}
	}
	switch {
	case unresolved:
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   "Runs without a resolved category found.",
			Parameter: "category",
			Expected:  "OPEN or CLOSED",
			Actual:    actual,
			Severity:  core.SeverityError,
		})
	case seen[core.CategoryInvalid]:
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   "Invalid runs found.",
			Parameter: "category",
			Expected:  "OPEN or CLOSED",
			Actual:    actual,
			Severity:  core.SeverityError,
		})
	case seen[core.CategoryOpen]:
		return single(core.Finding{
			Category:  core.CategoryOpen,
			Message:   "All runs satisfy the OPEN or CLOSED category",
			Parameter: "category",
			Expected:  "OPEN or CLOSED",
			Actual:    actual,
			Severity:  core.SeverityError,
		})
	default:
		return single(core.Finding{
			Category:  core.CategoryClosed,
			Message:   "All runs satisfy the CLOSED category",
			Parameter: "category",
			Expected:  "OPEN or CLOSED",
			Actual:    actual,
			Severity:  core.SeverityError,
		})
	}
}

// TrainingSubmissionChecker verifies a group of training runs submitted
// together.
type TrainingSubmissionChecker struct {
	runs []*core.Run
}

// NewTrainingSubmissionChecker builds the multi-run checker for
// training benchmarks.
func NewTrainingSubmissionChecker(runs []*core.Run) *TrainingSubmissionChecker {
	return &TrainingSubmissionChecker{runs: runs}
}

// Checks declares the training submission check registry. The run-count
// requirement (exactly 5 runs) is declared by the rulebook but its
// check logic is not defined yet.
func (c *TrainingSubmissionChecker) Checks() []Check {
	return []Check{
		{Name: "runs_valid", Run: func() []core.Finding { return checkRunCategories(c.runs) }},
		{Name: "num_runs", Run: noFindings},
	}
}

// CheckpointingSubmissionChecker verifies a group of checkpointing runs
// submitted together.
type CheckpointingSubmissionChecker struct {
	runs []*core.Run
}

// NewCheckpointingSubmissionChecker builds the multi-run checker for
// checkpointing benchmarks.
func NewCheckpointingSubmissionChecker(runs []*core.Run) *CheckpointingSubmissionChecker {
	return &CheckpointingSubmissionChecker{runs: runs}
}

// Checks declares the checkpointing submission check registry.
func (c *CheckpointingSubmissionChecker) Checks() []Check {
	return []Check{
		{Name: "runs_valid", Run: func() []core.Finding { return checkRunCategories(c.runs) }},
		{Name: "num_runs", Run: c.checkNumRuns},
	}
}

// checkNumRuns requires exactly 10 total checkpoint writes and 10 total
// checkpoint reads across the submission. A submitter may put all
// checkpoints in one run, split reads and writes across two runs, or
// use an individual run per operation.
func (c *CheckpointingSubmissionChecker) checkNumRuns() []core.Finding {
	var numWrites, numReads int64
	for _, run := range c.runs {
		if run.BenchmarkType != core.BenchmarkCheckpointing {
			continue
		}
		checkpoint := run.Parameters.Sub("checkpoint")
		if n, ok := checkpoint.Int("num_checkpoints_write"); ok {
			numWrites += n
		}
		if n, ok := checkpoint.Int("num_checkpoints_read"); ok {
			numReads += n
		}
	}

	var findings []core.Finding
	findings = append(findings, checkpointOpFinding("read", "checkpoint.num_checkpoints_read", numReads))
	findings = append(findings, checkpointOpFinding("write", "checkpoint.num_checkpoints_write", numWrites))
	if numWrites == requiredCheckpointOps && numReads == requiredCheckpointOps {
		findings = append(findings, core.Finding{
			Category:  core.CategoryClosed,
			Message:   fmt.Sprintf("Found expected %d total read and write operations", requiredCheckpointOps),
			Parameter: "checkpoint.num_checkpoints_read",
			Expected:  requiredCheckpointOps,
			Actual:    requiredCheckpointOps,
			Severity:  core.SeverityError,
		})
	}
	return findings
}

func checkpointOpFinding(op, parameter string, count int64) core.Finding {
	if count != requiredCheckpointOps {
		return core.Finding{
			Category:  core.CategoryInvalid,
			Message:   fmt.Sprintf("Expected %d total %s operations, but found %d", requiredCheckpointOps, op, count),
			Parameter: parameter,
			Expected:  requiredCheckpointOps,
			Actual:    count,
			Severity:  core.SeverityError,
		}
	}
	return core.Finding{
		Category:  core.CategoryClosed,
		Message:   fmt.Sprintf("Found expected %d total %s operations", requiredCheckpointOps, op),
		Parameter: parameter,
		Expected:  requiredCheckpointOps,
		Actual:    count,
		Severity:  core.SeverityError,
	}
}
