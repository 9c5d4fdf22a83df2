package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storage-sig/benchverify/cluster"
	"github.com/storage-sig/benchverify/core"
)

// closedTrainingConfig is a baseline live configuration that resolves
// to CLOSED: 1 GiB of cluster memory needs 53 training files and the
// run configures 100, with only closed-allowed overrides.
func closedTrainingConfig() *core.LiveConfig {
	return &core.LiveConfig{
		BenchmarkType: core.BenchmarkTraining,
		Model:         "resnet50",
		Command:       core.CommandRunBenchmark,
		RunDatetime:   "2025-01-31T12:00:00",
		NumProcesses:  2,
		CombinedParams: core.Params{
			"dataset": map[string]any{
				"num_files_train":      100,
				"num_samples_per_file": 1000,
				"record_length_bytes":  100000,
			},
			"reader":   map[string]any{"batch_size": 4},
			"workflow": map[string]any{"train": true},
		},
		Overrides: map[string]string{"dataset.num_files_train": "100"},
		Cluster:   &cluster.Info{TotalMemoryBytes: 1 << 30, TotalCores: 16},
	}
}

func newRun(t *testing.T, mutate func(cfg *core.LiveConfig)) *core.Run {
	t.Helper()
	cfg := closedTrainingConfig()
	if mutate != nil {
		mutate(cfg)
	}
	run, err := core.NewRun(cfg, nil)
	require.NoError(t, err)
	return run
}

func TestNewRequiresRuns(t *testing.T) {
	_, err := New()
	require.ErrorIs(t, err, ErrNoRuns)
}

func TestNewRejectsMixedTypes(t *testing.T) {
	training := newRun(t, nil)
	checkpointing := newRun(t, func(cfg *core.LiveConfig) {
		cfg.BenchmarkType = core.BenchmarkCheckpointing
	})
	_, err := New(training, checkpointing)
	require.ErrorIs(t, err, ErrMixedTypes)
}

func TestNewRejectsUnsupportedType(t *testing.T) {
	run := newRun(t, func(cfg *core.LiveConfig) {
		cfg.BenchmarkType = core.BenchmarkVectorDB
	})
	_, err := New(run)
	require.ErrorIs(t, err, ErrUnsupportedType)

	other := newRun(t, func(cfg *core.LiveConfig) {
		cfg.BenchmarkType = core.BenchmarkVectorDB
	})
	_, err = New(run, other)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestVerifyResolvesClosed(t *testing.T) {
	v, err := New(newRun(t, nil))
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, v.Mode())

	res, err := v.Verify()
	require.NoError(t, err)
	assert.Equal(t, core.CategoryClosed, res.Category)
	assert.NotEmpty(t, res.Findings)
}

func TestVerifyResolvesOpen(t *testing.T) {
	run := newRun(t, func(cfg *core.LiveConfig) {
		cfg.Overrides["framework"] = "pytorch"
	})
	v, err := New(run)
	require.NoError(t, err)

	res, err := v.Verify()
	require.NoError(t, err)
	assert.Equal(t, core.CategoryOpen, res.Category)
}

func TestVerifyResolvesInvalid(t *testing.T) {
	// One disallowed override disqualifies the run no matter how many
	// other checks pass.
	run := newRun(t, func(cfg *core.LiveConfig) {
		cfg.Overrides["framework"] = "pytorch"
		cfg.Overrides["dataset.record_length_bytes"] = "1"
	})
	v, err := New(run)
	require.NoError(t, err)

	res, err := v.Verify()
	require.NoError(t, err)
	assert.Equal(t, core.CategoryInvalid, res.Category)

	var categories []core.Category
	for _, f := range res.Findings {
		categories = append(categories, f.Category)
	}
	assert.Contains(t, categories, core.CategoryOpen)
	assert.Contains(t, categories, core.CategoryInvalid)
}

func TestVerifyIsPureAndIdempotent(t *testing.T) {
	run := newRun(t, nil)
	v, err := New(run)
	require.NoError(t, err)

	first, err := v.Verify()
	require.NoError(t, err)
	assert.False(t, run.Recorded(), "Verify must not mutate the run")

	second, err := v.Verify()
	require.NoError(t, err)
	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, len(first.Findings), len(second.Findings))
}

func TestVerifyMultiModeUsesRecordedCategories(t *testing.T) {
	runs := []*core.Run{newRun(t, nil), newRun(t, nil)}
	for _, run := range runs {
		v, err := New(run)
		require.NoError(t, err)
		res, err := v.Verify()
		require.NoError(t, err)
		require.NoError(t, run.RecordOutcome(res.Category, res.Findings))
	}

	v, err := New(runs...)
	require.NoError(t, err)
	assert.Equal(t, ModeMulti, v.Mode())

	res, err := v.Verify()
	require.NoError(t, err)
	assert.Equal(t, core.CategoryClosed, res.Category)
}

// A run reconstructed from result artifacts and one built from the
// equivalent live configuration must resolve to the same category.
func TestArtifactAndLiveConstructionAgree(t *testing.T) {
	summary := core.Summary{
		NumAccelerators: 2,
		Start:           "2025-01-31T12:00:00",
		HostMemoryGB:    []float64{1},
		HostCPUCount:    []int{16},
		NumHosts:        1,
	}
	summary.Workload.Model.Name = "resnet50"
	summary.Workload.Workflow.Train = true
	art := &core.Artifacts{
		Summary: summary,
		Configs: map[string]any{
			"config.yaml": map[string]any{
				"workload": map[string]any{
					"model": map[string]any{"name": "resnet50"},
					"workflow": map[string]any{
						"generate_data": false,
						"train":         true,
						"checkpoint":    false,
					},
					"dataset": map[string]any{
						"num_files_train":      100,
						"num_samples_per_file": 1000,
						"record_length_bytes":  100000,
					},
					"reader": map[string]any{"batch_size": 4},
				},
			},
			"overrides.yaml": []any{
				"workload=resnet50_h100",
				"++workload.dataset.num_files_train=100",
			},
		},
	}

	fromArtifacts, err := core.NewRun(nil, art)
	require.NoError(t, err)
	fromLive, err := core.NewRun(closedTrainingConfig(), nil)
	require.NoError(t, err)

	verifyCategory := func(run *core.Run) core.Category {
		v, err := New(run)
		require.NoError(t, err)
		res, err := v.Verify()
		require.NoError(t, err)
		return res.Category
	}

	assert.Equal(t, verifyCategory(fromLive), verifyCategory(fromArtifacts))
	assert.Equal(t, core.CategoryClosed, verifyCategory(fromArtifacts))
}
