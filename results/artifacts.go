// Package results discovers benchmark result directories and parses
// their artifacts (metadata, summary, configuration documents) into the
// run facts model.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/storage-sig/benchverify/core"
)

// HydraOutputSubdir is the subdirectory of a result directory holding
// the resolved configuration documents.
const HydraOutputSubdir = ".hydra"

const (
	metadataSuffix  = "_metadata.json"
	summaryFilename = "summary.json"
)

// LoadArtifacts parses the artifacts of one result directory: the
// metadata document, the results summary, and every YAML configuration
// document under the hydra output subdirectory, keyed by filename.
func LoadArtifacts(dir string) (*core.Artifacts, error) {
	art := &core.Artifacts{Configs: map[string]any{}}

	metadataPath, err := findMetadataFile(dir)
	if err != nil {
		return nil, err
	}
	if metadataPath != "" {
		data, err := os.ReadFile(metadataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata: %w", err)
		}
		if err := json.Unmarshal(data, &art.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata %s: %w", metadataPath, err)
		}
	}

	summaryPath := filepath.Join(dir, summaryFilename)
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	if err := json.Unmarshal(data, &art.Summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary %s: %w", summaryPath, err)
	}

	hydraDir := filepath.Join(dir, HydraOutputSubdir)
	entries, err := os.ReadDir(hydraDir)
	if err != nil {
		if os.IsNotExist(err) {
			return art, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(hydraDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		art.Configs[entry.Name()] = doc
	}

	return art, nil
}

// ErrAmbiguousDir marks a directory holding more than one metadata
// document.
type ErrAmbiguousDir struct {
	Dir   string
	Count int
}

func (e *ErrAmbiguousDir) Error() string {
	return fmt.Sprintf("ambiguous result directory %s: %d metadata files", e.Dir, e.Count)
}

// findMetadataFile returns the path of the single metadata document in
// dir, the empty string if there is none, or an ErrAmbiguousDir if
// there is more than one.
func findMetadataFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read result directory: %w", err)
	}
	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), metadataSuffix) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", &ErrAmbiguousDir{Dir: dir, Count: len(matches)}
	}
}
