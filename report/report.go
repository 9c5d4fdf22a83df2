// Package report renders verification outcomes for the presentation
// layer: human-readable log lines and machine-readable JSON.
package report

import (
	"encoding/json"
	"io"

	"github.com/storage-sig/benchverify/core"
	"github.com/storage-sig/benchverify/verify"
)

// FindingRecord is the JSON shape of one finding.
type FindingRecord struct {
	Classification string `json:"classification"`
	Message        string `json:"message"`
	Parameter      string `json:"parameter,omitempty"`
	Expected       any    `json:"expected,omitempty"`
	Actual         any    `json:"actual,omitempty"`
	Severity       string `json:"severity"`
}

// RunRecord is the JSON shape of one verified run.
type RunRecord struct {
	RunID         string          `json:"run_id"`
	BenchmarkType string          `json:"benchmark_type"`
	Model         string          `json:"model,omitempty"`
	Command       string          `json:"command,omitempty"`
	Accelerator   string          `json:"accelerator,omitempty"`
	NumProcesses  int             `json:"num_processes"`
	Category      string          `json:"category"`
	Findings      []FindingRecord `json:"findings"`
	Metrics       map[string]any  `json:"metrics,omitempty"`
}

// SubmissionRecord is the JSON shape of one verified submission.
type SubmissionRecord struct {
	BenchmarkType string          `json:"benchmark_type"`
	Category      string          `json:"category"`
	Findings      []FindingRecord `json:"findings"`
	Runs          []RunRecord     `json:"runs"`
}

// NewFindingRecord converts a finding.
func NewFindingRecord(f core.Finding) FindingRecord {
	return FindingRecord{
		Classification: f.Category.Upper(),
		Message:        f.Message,
		Parameter:      f.Parameter,
		Expected:       f.Expected,
		Actual:         f.Actual,
		Severity:       string(f.Severity),
	}
}

// NewRunRecord converts a run outcome.
func NewRunRecord(o verify.RunOutcome) RunRecord {
	rec := RunRecord{
		RunID:         o.Run.ID().String(),
		BenchmarkType: string(o.Run.BenchmarkType),
		Model:         o.Run.Model,
		Command:       o.Run.Command,
		Accelerator:   o.Run.Accelerator,
		NumProcesses:  o.Run.NumProcesses,
		Category:      o.Result.Category.Upper(),
		Metrics:       o.Run.Metrics,
	}
	for _, f := range o.Result.Findings {
		rec.Findings = append(rec.Findings, NewFindingRecord(f))
	}
	return rec
}

// NewSubmissionRecord converts a submission outcome.
func NewSubmissionRecord(o verify.SubmissionOutcome) SubmissionRecord {
	rec := SubmissionRecord{
		BenchmarkType: string(o.BenchmarkType),
		Category:      o.Overall.Category.Upper(),
	}
	for _, f := range o.Overall.Findings {
		rec.Findings = append(rec.Findings, NewFindingRecord(f))
	}
	for _, run := range o.Runs {
		rec.Runs = append(rec.Runs, NewRunRecord(run))
	}
	return rec
}

// WriteJSON writes the submission outcomes as indented JSON.
func WriteJSON(w io.Writer, outcomes []verify.SubmissionOutcome) error {
	records := make([]SubmissionRecord, len(outcomes))
	for i, o := range outcomes {
		records[i] = NewSubmissionRecord(o)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
