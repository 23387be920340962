package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/hunkscope/internal/analyzer"
)

// RepoPathStats holds the path statistics of one checkout.
type RepoPathStats struct {
	Files           int
	Packages        int
	MaxPathDistance int
	Err             error
}

// PathDistanceCache stores the maximum path distance of each checkout root.
// After Seal() is called the cache is read-only and safe for concurrent
// access without locks.
type PathDistanceCache struct {
	results map[string]*RepoPathStats
	sealed  bool
}

// NewPathDistanceCache creates a new empty PathDistanceCache.
func NewPathDistanceCache() *PathDistanceCache {
	return &PathDistanceCache{
		results: make(map[string]*RepoPathStats),
	}
}

// Put stores the stats of a checkout root. Must be called before Seal().
func (c *PathDistanceCache) Put(root string, stats *RepoPathStats) {
	if c.sealed {
		return
	}
	c.results[root] = stats
}

// Seal marks the cache as read-only.
func (c *PathDistanceCache) Seal() {
	c.sealed = true
}

// Sealed reports whether Seal has been called.
func (c *PathDistanceCache) Sealed() bool {
	return c.sealed
}

// Get retrieves the stats of a checkout root. Returns (stats, true) on hit.
func (c *PathDistanceCache) Get(root string) (*RepoPathStats, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.results[root]
	return r, ok
}

// Len returns the number of entries in the cache.
func (c *PathDistanceCache) Len() int {
	return len(c.results)
}

// MaxPathDistance returns the normalizer for path distances in root. Unknown
// roots, failed scans and repositories whose maximum is 0 all yield 1.
func (c *PathDistanceCache) MaxPathDistance(root string) int {
	if c == nil {
		return 1
	}
	stats, ok := c.Get(root)
	if !ok || stats.Err != nil || stats.MaxPathDistance <= 0 {
		return 1
	}
	return stats.MaxPathDistance
}

// PathDistanceCacheConfig controls how PopulatePathDistanceCache works.
type PathDistanceCacheConfig struct {
	ExcludePatterns []string
	Concurrency     int // 0 means runtime.GOMAXPROCS(0)
}

// PopulatePathDistanceCache scans every checkout root in parallel and
// returns a sealed cache. Scan failures are recorded per root and do not
// fail the whole population; only cancellation does.
func PopulatePathDistanceCache(ctx context.Context, roots []string, reader *FileReaderImpl, cfg PathDistanceCacheConfig) (*PathDistanceCache, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	if reader == nil {
		reader = NewFileReader()
	}

	results := make([]*RepoPathStats, len(roots))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, root := range roots {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			stats := &RepoPathStats{}
			files, err := reader.CollectJavaFiles(root, cfg.ExcludePatterns)
			if err != nil {
				stats.Err = fmt.Errorf("failed to scan %s: %w", root, err)
				results[i] = stats
				return nil
			}
			stats.Files = len(files)
			stats.Packages, stats.MaxPathDistance = MaxPathDistance(files)
			results[i] = stats
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Populate cache from collected results (single-threaded, no lock needed)
	cache := NewPathDistanceCache()
	for i, root := range roots {
		if results[i] != nil {
			cache.Put(root, results[i])
		}
	}
	cache.Seal()

	return cache, nil
}

// MaxPathDistance returns the number of distinct logical packages among
// files and the largest segment distance between any two of them
func MaxPathDistance(files []string) (int, int) {
	seen := make(map[string]bool)
	var packages [][]string
	for _, f := range files {
		segs := analyzer.PathPackageSegments(f)
		key := strings.Join(segs, "/")
		if seen[key] {
			continue
		}
		seen[key] = true
		packages = append(packages, segs)
	}

	best := 0
	for i := 0; i < len(packages); i++ {
		for j := i + 1; j < len(packages); j++ {
			if d := analyzer.SegmentDistance(packages[i], packages[j]); d > best {
				best = d
			}
		}
	}
	return len(packages), best
}
