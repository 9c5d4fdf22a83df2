package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storage-sig/benchverify/core"
)

func recordedRun(t *testing.T, category core.Category) *core.Run {
	t.Helper()
	run, err := core.NewRun(&core.LiveConfig{BenchmarkType: core.BenchmarkTraining}, nil)
	require.NoError(t, err)
	require.NoError(t, run.RecordOutcome(category, nil))
	return run
}

func checkpointRun(t *testing.T, writes, reads int) *core.Run {
	t.Helper()
	run, err := core.NewRun(&core.LiveConfig{
		BenchmarkType: core.BenchmarkCheckpointing,
		Model:         "llama3-8b",
		CombinedParams: core.Params{
			"checkpoint": map[string]any{
				"num_checkpoints_write": writes,
				"num_checkpoints_read":  reads,
			},
		},
	}, nil)
	require.NoError(t, err)
	return run
}

func TestCheckRunCategories(t *testing.T) {
	t.Run("any invalid run invalidates the submission", func(t *testing.T) {
		findings := checkRunCategories([]*core.Run{
			recordedRun(t, core.CategoryClosed),
			recordedRun(t, core.CategoryInvalid),
			recordedRun(t, core.CategoryOpen),
		})
		require.Len(t, findings, 1)
		assert.Equal(t, core.CategoryInvalid, findings[0].Category)
		assert.Equal(t, "category", findings[0].Parameter)
	})

	t.Run("open runs make the submission open", func(t *testing.T) {
		findings := checkRunCategories([]*core.Run{
			recordedRun(t, core.CategoryClosed),
			recordedRun(t, core.CategoryOpen),
		})
		require.Len(t, findings, 1)
		assert.Equal(t, core.CategoryOpen, findings[0].Category)
	})

	t.Run("all closed runs keep the submission closed", func(t *testing.T) {
		findings := checkRunCategories([]*core.Run{
			recordedRun(t, core.CategoryClosed),
			recordedRun(t, core.CategoryClosed),
		})
		require.Len(t, findings, 1)
		assert.Equal(t, core.CategoryClosed, findings[0].Category)
	})

	t.Run("runs without a recorded outcome invalidate the submission", func(t *testing.T) {
		unrecorded, err := core.NewRun(&core.LiveConfig{BenchmarkType: core.BenchmarkTraining}, nil)
		require.NoError(t, err)

		findings := checkRunCategories([]*core.Run{
			recordedRun(t, core.CategoryClosed),
			unrecorded,
		})
		require.Len(t, findings, 1)
		assert.Equal(t, core.CategoryInvalid, findings[0].Category)
		assert.Contains(t, findings[0].Actual, "UNRESOLVED")
	})
}

func TestCheckpointingNumRuns(t *testing.T) {
	t.Run("reads and writes split across two runs", func(t *testing.T) {
		checker := NewCheckpointingSubmissionChecker([]*core.Run{
			checkpointRun(t, 10, 0),
			checkpointRun(t, 0, 10),
		})
		findings := checker.checkNumRuns()
		require.Len(t, findings, 3)
		for _, f := range findings {
			assert.Equal(t, core.CategoryClosed, f.Category, f.Message)
		}
	})

	t.Run("all checkpoints in one run", func(t *testing.T) {
		checker := NewCheckpointingSubmissionChecker([]*core.Run{checkpointRun(t, 10, 10)})
		findings := checker.checkNumRuns()
		require.Len(t, findings, 3)
	})

	t.Run("missing reads", func(t *testing.T) {
		checker := NewCheckpointingSubmissionChecker([]*core.Run{
			checkpointRun(t, 10, 0),
			checkpointRun(t, 0, 7),
		})
		findings := checker.checkNumRuns()
		require.Len(t, findings, 2)

		reads := findings[0]
		assert.Equal(t, core.CategoryInvalid, reads.Category)
		assert.Equal(t, "checkpoint.num_checkpoints_read", reads.Parameter)
		assert.Equal(t, int64(7), reads.Actual)

		writes := findings[1]
		assert.Equal(t, core.CategoryClosed, writes.Category)
		assert.Equal(t, "checkpoint.num_checkpoints_write", writes.Parameter)
	})

	t.Run("non-checkpointing runs are ignored", func(t *testing.T) {
		training, err := core.NewRun(&core.LiveConfig{
			BenchmarkType: core.BenchmarkTraining,
			CombinedParams: core.Params{
				"checkpoint": map[string]any{"num_checkpoints_write": 99, "num_checkpoints_read": 99},
			},
		}, nil)
		require.NoError(t, err)

		checker := NewCheckpointingSubmissionChecker([]*core.Run{
			checkpointRun(t, 10, 10),
			training,
		})
		findings := checker.checkNumRuns()
		require.Len(t, findings, 3)
		for _, f := range findings {
			assert.Equal(t, core.CategoryClosed, f.Category, f.Message)
		}
	})
}

func TestTrainingSubmissionRegistry(t *testing.T) {
	checker := NewTrainingSubmissionChecker([]*core.Run{
		recordedRun(t, core.CategoryClosed),
	})
	checks := checker.Checks()
	require.Len(t, checks, 2)
	assert.Equal(t, "runs_valid", checks[0].Name)
	assert.Equal(t, "num_runs", checks[1].Name)

	// The run-count requirement has no defined check logic yet.
	assert.Empty(t, checks[1].Run())
}
