package rules

import (
	"fmt"
	"strings"

	"github.com/storage-sig/benchverify/core"
	"github.com/storage-sig/benchverify/sizing"
)

// unet3D is the 3-D image segmentation model. It is the only model
// whose training rules require a checkpoint stage and the only one
// allowed to use direct I/O.
const unet3D = "unet3d"

// Override keys a CLOSED submission may tune.
var closedAllowedOverrides = []string{
	"dataset.num_files_train", "dataset.num_subfolders_train", "dataset.data_folder",
	"reader.read_threads", "reader.computation_threads", "reader.transfer_size",
	"reader.odirect", "reader.prefetch_size", "checkpoint.checkpoint_folder",
	"storage.storage_type", "storage.storage_root",
}

// Override keys additionally allowed for an OPEN submission.
var openAllowedOverrides = []string{
	"framework", "dataset.format", "dataset.num_samples_per_file", "reader.data_loader",
}

// TrainingRunChecker verifies the rules for one training run.
type TrainingRunChecker struct {
	run *core.Run
}

// NewTrainingRunChecker builds the single-run checker for training
// benchmarks.
func NewTrainingRunChecker(run *core.Run) *TrainingRunChecker {
	return &TrainingRunChecker{run: run}
}

// Checks declares the training run check registry. The trailing entries
// are rulebook placeholders whose thresholds are not defined yet; they
// emit nothing.
func (c *TrainingRunChecker) Checks() []Check {
	return []Check{
		{Name: "benchmark_type", Run: c.checkBenchmarkType},
		{Name: "num_files_train", Run: c.checkNumFilesTrain},
		{Name: "allowed_overrides", Run: c.checkAllowedOverrides},
		{Name: "workflow_parameters", Run: c.checkWorkflowParameters},
		{Name: "odirect_supported_model", Run: c.checkODirectSupportedModel},
		{Name: "checkpoint_files", Run: noFindings},
		{Name: "num_epochs", Run: noFindings},
		{Name: "inter_test_times", Run: noFindings},
		{Name: "file_system_caching", Run: noFindings},
	}
}

func (c *TrainingRunChecker) checkBenchmarkType() []core.Finding {
	if c.run.BenchmarkType != core.BenchmarkTraining {
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   fmt.Sprintf("Invalid benchmark type: %s", c.run.BenchmarkType),
			Parameter: "benchmark_type",
			Expected:  core.BenchmarkTraining,
			Actual:    c.run.BenchmarkType,
			Severity:  core.SeverityError,
		})
	}
	return nil
}

// checkNumFilesTrain verifies the configured training file count against
// the minimum the sizing rules require for this cluster.
func (c *TrainingRunChecker) checkNumFilesTrain() []core.Finding {
	datasetParams := c.run.Parameters.Sub("dataset")
	if datasetParams == nil {
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   "Missing dataset parameters",
			Parameter: "dataset",
			Severity:  core.SeverityError,
		})
	}
	configured, ok := datasetParams.Int("num_files_train")
	if !ok {
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   "Missing num_files_train parameter",
			Parameter: "dataset.num_files_train",
			Severity:  core.SeverityError,
		})
	}

	samplesPerFile, _ := datasetParams.Int("num_samples_per_file")
	recordLength, _ := datasetParams.Int("record_length_bytes")
	batchSize, _ := c.run.Parameters.Sub("reader").Int("batch_size")

	res, err := sizing.TrainingDataSize(
		c.run.Cluster,
		nil,
		sizing.DatasetParams{NumSamplesPerFile: samplesPerFile, RecordLengthBytes: recordLength},
		sizing.ReaderParams{BatchSize: batchSize},
		int64(c.run.NumProcesses),
	)
	if err != nil {
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   fmt.Sprintf("Unable to compute required training file count: %v", err),
			Parameter: "dataset.num_files_train",
			Severity:  core.SeverityError,
		})
	}

	if configured < res.RequiredFileCount {
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   "Insufficient number of training files",
			Parameter: "dataset.num_files_train",
			Expected:  fmt.Sprintf(">= %d", res.RequiredFileCount),
			Actual:    configured,
			Severity:  core.SeverityError,
		})
	}
	return nil
}

// checkAllowedOverrides classifies every submitter override against the
// fixed CLOSED and OPEN allow-lists. Workflow overrides are handled by
// a dedicated check and skipped here. Each override yields exactly one
// finding.
func (c *TrainingRunChecker) checkAllowedOverrides() []core.Finding {
	var findings []core.Finding
	for param, value := range c.run.Overrides {
		if strings.HasPrefix(param, "workflow") {
			continue
		}
		switch {
		case contains(closedAllowedOverrides, param):
			findings = append(findings, core.Finding{
				Category:  core.CategoryClosed,
				Message:   fmt.Sprintf("Closed parameter override allowed: %s = %s", param, value),
				Parameter: "Overrode Parameters",
				Actual:    value,
				Severity:  core.SeverityError,
			})
		case contains(openAllowedOverrides, param):
			findings = append(findings, core.Finding{
				Category:  core.CategoryOpen,
				Message:   fmt.Sprintf("Open parameter override allowed: %s = %s", param, value),
				Parameter: "Overrode Parameters",
				Actual:    value,
				Severity:  core.SeverityError,
			})
		default:
			findings = append(findings, core.Finding{
				Category:  core.CategoryInvalid,
				Message:   fmt.Sprintf("Disallowed parameter override: %s = %s", param, value),
				Parameter: "Overrode Parameters",
				Expected:  "None",
				Actual:    value,
				Severity:  core.SeverityError,
			})
		}
	}
	return findings
}

// checkWorkflowParameters enforces model-specific workflow constraints.
// Unet3D benchmark runs must execute the checkpoint stage; an absent
// checkpoint setting yields no finding.
func (c *TrainingRunChecker) checkWorkflowParameters() []core.Finding {
	if c.run.Model != unet3D || c.run.Command != core.CommandRunBenchmark {
		return nil
	}
	enabled, ok := c.run.Parameters.Sub("workflow").Bool("checkpoint")
	if !ok {
		return nil
	}
	if enabled {
		return single(core.Finding{
			Category:  core.CategoryClosed,
			Message:   "Unet3D training requires executing a checkpoint",
			Parameter: "workflow.checkpoint",
			Expected:  "True",
			Actual:    enabled,
			Severity:  core.SeverityError,
		})
	}
	return single(core.Finding{
		Category:  core.CategoryInvalid,
		Message:   "Unet3D training requires executing a checkpoint. The parameter 'workflow.checkpoint' is set to False",
		Parameter: "workflow.checkpoint",
		Expected:  "True",
		Actual:    enabled,
		Severity:  core.SeverityError,
	})
}

// checkODirectSupportedModel rejects direct I/O for every model except
// Unet3D.
func (c *TrainingRunChecker) checkODirectSupportedModel() []core.Finding {
	odirect := c.run.Parameters.Sub("reader")["odirect"]
	if c.run.Model != unet3D && truthy(odirect) {
		return single(core.Finding{
			Category:  core.CategoryInvalid,
			Message:   "The reader.odirect option is only supported for the unet3d model",
			Parameter: "reader.odirect",
			Expected:  "False",
			Actual:    odirect,
			Severity:  core.SeverityError,
		})
	}
	return nil
}

func noFindings() []core.Finding { return nil }

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// truthy interprets a decoded YAML/JSON scalar. False, zero and the
// empty string are off; any non-empty string is on, including "false"
// and "0", so a stringly-typed flag is never silently waved through.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
