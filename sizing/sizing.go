// Package sizing computes the minimum compliant dataset size for a
// training run. The rules are fixed by the benchmark rulebook: the
// dataset must be at least five times the total client-visible memory,
// and a run must be able to perform at least 500 training steps per
// epoch.
package sizing

import (
	"errors"
	"fmt"

	"github.com/storage-sig/benchverify/cluster"
)

const (
	// MemoryMultiplier is the required dataset-to-memory size ratio.
	MemoryMultiplier = 5
	// MinStepsPerEpoch is the minimum number of training steps a
	// submission must support in one epoch.
	MinStepsPerEpoch = 500

	bytesPerGB = 1 << 30
)

// ErrMixedSources is returned when a manual memory override is combined
// with a measured process count (or vice versa). Manual sizing must be
// self-contained.
var ErrMixedSources = errors.New("manual sizing overrides must supply memory, host count and process count together")

// DatasetParams are the dataset parameters the sizing rules consume.
type DatasetParams struct {
	NumSamplesPerFile int64
	RecordLengthBytes int64
}

// ReaderParams are the reader parameters the sizing rules consume.
type ReaderParams struct {
	BatchSize int64
}

// Manual supplies pre-agreed cluster numbers in place of measured
// cluster information, e.g. when sizing a dataset before any host has
// been probed. All three fields are required.
type Manual struct {
	ClientHostMemoryGB int64
	NumClientHosts     int64
	NumProcesses       int64
}

// Result is the outcome of a sizing calculation.
type Result struct {
	RequiredFileCount      int64
	RequiredSubfolderCount int64
	TotalDiskBytes         int64
	// SizeDriven is true when the memory-ratio rule is the binding
	// constraint, false when the 500-step rule is. Diagnostic only.
	SizeDriven bool
}

// TrainingDataSize computes the minimum number of training files, the
// number of dataset subfolders, and the total dataset size in bytes for
// a compliant training run. Exactly one memory source must be supplied:
// measured cluster information (with numProcesses from the run) or a
// complete manual override. When manual is non-nil, info and
// numProcesses are ignored; an incomplete manual override is an error.
//
// Subfolder sharding past a file-count ceiling is not specified yet, so
// the subfolder count is always zero.
func TrainingDataSize(info *cluster.Info, manual *Manual, dataset DatasetParams, reader ReaderParams, numProcesses int64) (Result, error) {
	var totalMemoryBytes int64
	switch {
	case manual != nil:
		if manual.ClientHostMemoryGB <= 0 || manual.NumClientHosts <= 0 || manual.NumProcesses <= 0 {
			return Result{}, ErrMixedSources
		}
		totalMemoryBytes = manual.ClientHostMemoryGB * bytesPerGB * manual.NumClientHosts
		numProcesses = manual.NumProcesses
	case info != nil:
		totalMemoryBytes = info.TotalMemoryBytes
	default:
		return Result{}, errors.New("either cluster information or manual overrides are required")
	}
	if dataset.NumSamplesPerFile <= 0 {
		return Result{}, fmt.Errorf("dataset.num_samples_per_file must be positive, got %d", dataset.NumSamplesPerFile)
	}
	if dataset.RecordLengthBytes <= 0 {
		return Result{}, fmt.Errorf("dataset.record_length_bytes must be positive, got %d", dataset.RecordLengthBytes)
	}

	datasetSizeBytes := MemoryMultiplier * totalMemoryBytes
	fileSizeBytes := dataset.NumSamplesPerFile * dataset.RecordLengthBytes

	minFilesBySize := datasetSizeBytes / fileSizeBytes
	minSamples := MinStepsPerEpoch * numProcesses * reader.BatchSize
	minFilesBySamples := minSamples / dataset.NumSamplesPerFile

	res := Result{
		RequiredFileCount: minFilesBySize,
		SizeDriven:        minFilesBySize > minFilesBySamples,
	}
	if minFilesBySamples > res.RequiredFileCount {
		res.RequiredFileCount = minFilesBySamples
	}
	res.TotalDiskBytes = res.RequiredFileCount * fileSizeBytes
	return res, nil
}
