package rules

import "github.com/storage-sig/benchverify/core"

// CheckpointingRunChecker verifies the rules for one checkpointing run.
// The rulebook has not defined single-run checkpointing checks yet, so
// the registry entries are placeholders that emit nothing.
type CheckpointingRunChecker struct {
	run *core.Run
}

// NewCheckpointingRunChecker builds the single-run checker for
// checkpointing benchmarks.
func NewCheckpointingRunChecker(run *core.Run) *CheckpointingRunChecker {
	return &CheckpointingRunChecker{run: run}
}

// Checks declares the checkpointing run check registry.
func (c *CheckpointingRunChecker) Checks() []Check {
	return []Check{
		{Name: "benchmark_type", Run: noFindings},
	}
}
