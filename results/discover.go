package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/storage-sig/benchverify/core"
	"github.com/storage-sig/benchverify/pkg/logging"
	"github.com/storage-sig/benchverify/pkg/metrics"
)

const defaultCacheSize = 256

// Discoverer walks a results tree and reconstructs runs from on-disk
// artifacts. Parsed artifacts are cached by directory path, so repeated
// passes over the same tree skip the JSON/YAML decoding.
type Discoverer struct {
	logger  *zap.SugaredLogger
	metrics *metrics.PrometheusMetrics
	cache   *lru.Cache[string, *core.Artifacts]
}

// DiscovererConfig configures a Discoverer. Zero values select a no-op
// logger, no metrics, and the default cache size.
type DiscovererConfig struct {
	Logger    *zap.SugaredLogger
	Metrics   *metrics.PrometheusMetrics
	CacheSize int
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(cfg DiscovererConfig) (*Discoverer, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *core.Artifacts](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact cache: %w", err)
	}
	return &Discoverer{logger: cfg.Logger, metrics: cfg.Metrics, cache: cache}, nil
}

// DiscoverRuns walks resultsDir and returns a run for every directory
// holding exactly one metadata document and a results summary.
// Directories with multiple metadata documents are ambiguous and
// skipped with a warning; directories whose artifacts fail to parse are
// skipped the same way.
func (d *Discoverer) DiscoverRuns(resultsDir string) ([]*core.Run, error) {
	if _, err := os.Stat(resultsDir); err != nil {
		if os.IsNotExist(err) {
			d.logger.Warnw("results directory does not exist", "dir", resultsDir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat results directory: %w", err)
	}

	var runs []*core.Run
	err := filepath.WalkDir(resultsDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}

		run, ok := d.loadRun(path)
		if ok {
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk results directory: %w", err)
	}
	return runs, nil
}

// loadRun attempts to reconstruct a run from one directory. Returns
// false for directories that are not run directories or whose
// artifacts cannot be used.
func (d *Discoverer) loadRun(dir string) (*core.Run, bool) {
	metadataPath, err := findMetadataFile(dir)
	var ambiguous *ErrAmbiguousDir
	if errors.As(err, &ambiguous) {
		d.logger.Warnw("multiple metadata files found, skipping directory", "dir", dir, "count", ambiguous.Count)
		if d.metrics != nil {
			d.metrics.RecordAmbiguousDir()
		}
		return nil, false
	}
	if err != nil || metadataPath == "" {
		return nil, false
	}
	if _, err := os.Stat(filepath.Join(dir, summaryFilename)); err != nil {
		d.logger.Debugw("no results summary, skipping directory", "dir", dir)
		return nil, false
	}

	art, err := d.artifacts(dir)
	if err != nil {
		d.logger.Warnw("failed to load result artifacts", "dir", dir, "error", err)
		return nil, false
	}

	run, err := core.NewRun(nil, art)
	if err != nil {
		d.logger.Warnw("failed to reconstruct run", "dir", dir, "error", err)
		return nil, false
	}

	d.logger.Infow("found benchmark run", "run", run.ID().String(), "dir", dir)
	if d.metrics != nil {
		d.metrics.RecordRunDiscovered()
	}
	return run, true
}

func (d *Discoverer) artifacts(dir string) (*core.Artifacts, error) {
	if art, ok := d.cache.Get(dir); ok {
		if d.metrics != nil {
			d.metrics.RecordCacheHit()
		}
		return art, nil
	}
	if d.metrics != nil {
		d.metrics.RecordCacheMiss()
	}
	art, err := LoadArtifacts(dir)
	if err != nil {
		return nil, err
	}
	d.cache.Add(dir, art)
	return art, nil
}
