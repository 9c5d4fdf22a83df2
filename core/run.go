package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/storage-sig/benchverify/cluster"
)

var (
	// ErrNoSource is returned when a run is constructed without a
	// populating source.
	ErrNoSource = errors.New("run requires either a live config or result artifacts")
	// ErrBothSources is returned when both sources are supplied.
	ErrBothSources = errors.New("only one of live config and result artifacts can be provided")
	// ErrOutcomeRecorded is returned on a second attempt to record a
	// verification outcome on the same run.
	ErrOutcomeRecorded = errors.New("verification outcome already recorded on run")
)

// Benchmark command names inferred from the executed workflow stages.
const (
	CommandRunBenchmark = "run_benchmark"
	CommandDatagen      = "datagen"
)

// The workload override namespace. Only override entries under this
// prefix count as submitter parameter overrides.
const overridePrefix = "++workload."

// LiveConfig carries the fields of an in-memory benchmark configuration,
// for classifying a run before it executes.
type LiveConfig struct {
	BenchmarkType  BenchmarkType
	Model          string
	Command        string
	RunDatetime    string
	NumProcesses   int
	CombinedParams Params // precomputed full parameter set, preferred when present
	Args           Params // raw configuration fields, fallback
	Overrides      map[string]string
	Cluster        *cluster.Info // nil if not yet gathered
}

// Summary mirrors the fields of a results summary document that the
// engine consumes (summary.json in a result directory).
type Summary struct {
	Workload        SummaryWorkload `json:"workload"`
	NumAccelerators int             `json:"num_accelerators"`
	Start           string          `json:"start"`
	Metric          map[string]any  `json:"metric"`
	HostMemoryGB    []float64       `json:"host_memory_GB"`
	HostCPUCount    []int           `json:"host_cpu_count"`
	NumHosts        int             `json:"num_hosts"`
}

// SummaryWorkload is the workload section of a results summary.
type SummaryWorkload struct {
	Model struct {
		Name string `json:"name"`
	} `json:"model"`
	Workflow struct {
		GenerateData bool `json:"generate_data"`
		Train        bool `json:"train"`
		Checkpoint   bool `json:"checkpoint"`
	} `json:"workflow"`
}

// Artifacts carries the parsed documents of one on-disk result
// directory: the run metadata, the results summary, and the named
// configuration documents (config.yaml, overrides.yaml, ...).
type Artifacts struct {
	Metadata map[string]any
	Summary  Summary
	Configs  map[string]any
}

// Run is the unit the engine classifies: one execution of a benchmark
// workload, either reconstructed from result artifacts or captured from
// a live configuration before execution.
type Run struct {
	BenchmarkType BenchmarkType
	Model         string
	Accelerator   string
	Command       string
	NumProcesses  int
	Parameters    Params            // effective (full) parameter set
	Overrides     map[string]string // only the submitter's explicit overrides
	Cluster       *cluster.Info
	Metrics       map[string]any
	RunDatetime   string

	// PostExecution is true when the run was reconstructed from result
	// artifacts (metrics present) rather than a live configuration.
	PostExecution bool

	findings []Finding
	category Category
	recorded bool
}

// NewRun builds a Run from exactly one source. Supplying both or
// neither is an argument error.
func NewRun(live *LiveConfig, artifacts *Artifacts) (*Run, error) {
	switch {
	case live == nil && artifacts == nil:
		return nil, ErrNoSource
	case live != nil && artifacts != nil:
		return nil, ErrBothSources
	case live != nil:
		return fromLiveConfig(live), nil
	default:
		return fromArtifacts(artifacts)
	}
}

func fromLiveConfig(cfg *LiveConfig) *Run {
	params := cfg.CombinedParams
	if params == nil {
		params = cfg.Args
	}
	overrides := make(map[string]string, len(cfg.Overrides))
	for k, v := range cfg.Overrides {
		overrides[k] = v
	}
	return &Run{
		BenchmarkType: cfg.BenchmarkType,
		Model:         cfg.Model,
		Command:       cfg.Command,
		NumProcesses:  cfg.NumProcesses,
		Parameters:    params,
		Overrides:     overrides,
		Cluster:       cfg.Cluster,
		Metrics:       map[string]any{},
		RunDatetime:   cfg.RunDatetime,
		PostExecution: false,
	}
}

func fromArtifacts(art *Artifacts) (*Run, error) {
	workloadCfg := AsParams(art.Configs["config.yaml"]).Sub("workload")
	overrideLines := overrideStrings(art.Configs["overrides.yaml"])
	workflow := workloadCfg.Sub("workflow")
	generateData, _ := workflow.Bool("generate_data")
	train, _ := workflow.Bool("train")
	checkpoint, _ := workflow.Bool("checkpoint")

	run := &Run{
		Parameters:    workloadCfg,
		Overrides:     map[string]string{},
		Metrics:       art.Summary.Metric,
		NumProcesses:  art.Summary.NumAccelerators,
		RunDatetime:   art.Summary.Start,
		PostExecution: true,
	}

	// A training run may also checkpoint; generate_data/train win the
	// type inference over checkpoint.
	switch {
	case generateData || train:
		run.BenchmarkType = BenchmarkTraining
	case checkpoint:
		run.BenchmarkType = BenchmarkCheckpointing
	default:
		return nil, fmt.Errorf("no workflow stage executed, cannot infer benchmark type")
	}

	run.Model = normalizeModelName(workloadCfg.Sub("model"))

	if run.BenchmarkType == BenchmarkTraining {
		if train {
			// The train stage makes this a benchmark run even when
			// datagen or checkpoint also ran.
			run.Command = CommandRunBenchmark
			run.Accelerator = acceleratorFromOverrides(overrideLines)
		} else if generateData {
			run.Command = CommandDatagen
		}
	}

	for _, line := range overrideLines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.HasPrefix(key, overridePrefix) {
			run.Overrides[strings.TrimPrefix(key, overridePrefix)] = value
		}
	}

	run.Cluster = cluster.FromSummaryArrays(art.Summary.HostMemoryGB, art.Summary.HostCPUCount)
	return run, nil
}

// normalizeModelName aligns the model identifier stored by the workload
// with the canonical submission model names: the llama family is stored
// without the generation digit, and stored names use underscores where
// submissions use hyphens.
func normalizeModelName(model Params) string {
	name, _ := model.Str("name")
	name = strings.ReplaceAll(name, "llama_", "llama3_")
	return strings.ReplaceAll(name, "_", "-")
}

// acceleratorFromOverrides extracts the accelerator descriptor from the
// "workload=<model>_<accelerator>" override entry, if present.
func acceleratorFromOverrides(lines []string) string {
	for _, line := range lines {
		if !strings.HasPrefix(line, "workload=") {
			continue
		}
		parts := strings.Split(line, "_")
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	}
	return ""
}

func overrideStrings(doc any) []string {
	var out []string
	switch v := doc.(type) {
	case []string:
		out = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// ID derives the run identity label from the run's fields.
func (r *Run) ID() RunID {
	return RunID{
		Program:     string(r.BenchmarkType),
		Command:     r.Command,
		Model:       r.Model,
		RunDatetime: r.RunDatetime,
	}
}

// RecordOutcome applies a resolved category and its findings to the
// run. The outcome can be recorded exactly once.
func (r *Run) RecordOutcome(category Category, findings []Finding) error {
	if r.recorded {
		return ErrOutcomeRecorded
	}
	r.category = category
	r.findings = append([]Finding(nil), findings...)
	r.recorded = true
	return nil
}

// Category returns the recorded category, or the empty string before an
// outcome is recorded.
func (r *Run) Category() Category { return r.category }

// Findings returns the recorded findings.
func (r *Run) Findings() []Finding { return r.findings }

// Recorded reports whether an outcome has been recorded.
func (r *Run) Recorded() bool { return r.recorded }
