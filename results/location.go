package results

import (
	"fmt"
	"path/filepath"

	"github.com/storage-sig/benchverify/core"
)

// OutputLocation returns the canonical result directory for a run:
//
//	<resultsDir>/training/<model>/<command>/<datetime>
//	<resultsDir>/checkpointing/<model>/<datetime>
//	<resultsDir>/vector_database/<command>/<datetime>
func OutputLocation(resultsDir string, benchType core.BenchmarkType, model, command, datetime string) (string, error) {
	switch benchType {
	case core.BenchmarkTraining:
		if model == "" {
			return "", fmt.Errorf("model name is required for %s output location", benchType)
		}
		return filepath.Join(resultsDir, string(benchType), model, command, datetime), nil
	case core.BenchmarkCheckpointing:
		if model == "" {
			return "", fmt.Errorf("model name is required for %s output location", benchType)
		}
		return filepath.Join(resultsDir, string(benchType), model, datetime), nil
	case core.BenchmarkVectorDB:
		return filepath.Join(resultsDir, string(benchType), command, datetime), nil
	default:
		return "", fmt.Errorf("unsupported benchmark type: %q", benchType)
	}
}

// GroupByType partitions discovered runs into submissions, one per
// benchmark type, preserving discovery order.
func GroupByType(runs []*core.Run) map[core.BenchmarkType][]*core.Run {
	groups := make(map[core.BenchmarkType][]*core.Run)
	for _, run := range runs {
		groups[run.BenchmarkType] = append(groups[run.BenchmarkType], run)
	}
	return groups
}
