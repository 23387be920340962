package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/internal/analyzer"
	"github.com/ludo-technologies/hunkscope/internal/version"
)

// DivergenceServiceImpl implements the DivergenceService interface
type DivergenceServiceImpl struct {
	loader   domain.DatasetLoader
	reader   *FileReaderImpl
	progress domain.ProgressManager
}

// NewDivergenceService creates a new divergence service
func NewDivergenceService(loader domain.DatasetLoader, reader *FileReaderImpl) *DivergenceServiceImpl {
	if loader == nil {
		loader = NewDatasetLoader()
	}
	if reader == nil {
		reader = NewFileReader()
	}
	return &DivergenceServiceImpl{
		loader:   loader,
		reader:   reader,
		progress: noopProgress{},
	}
}

// SetProgressManager sets the progress manager updated after each defect
func (s *DivergenceServiceImpl) SetProgressManager(pm domain.ProgressManager) {
	if pm == nil {
		pm = noopProgress{}
	}
	s.progress = pm
}

// Analyze localizes and scores every requested defect. Defects are processed
// in parallel; results keep dataset order. A failing defect is logged and
// listed as skipped without stopping the sweep.
func (s *DivergenceServiceImpl) Analyze(ctx context.Context, req domain.DivergenceRequest) (*domain.DivergenceResponse, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	policy, err := analyzer.ParsePolicy(string(req.Policy))
	if err != nil {
		return nil, domain.NewInvalidInputError("invalid policy", err)
	}

	dataset, err := s.loader.Load(ctx, req.DatasetPath)
	if err != nil {
		return nil, err
	}
	ids, err := selectDefects(dataset, req.DefectIDs)
	if err != nil {
		return nil, err
	}

	done := map[string]domain.DefectResult{}
	var checkpoint *Checkpoint
	if req.CheckpointPath != "" {
		if done, err = LoadCheckpoint(req.CheckpointPath); err != nil {
			return nil, err
		}
		if checkpoint, err = OpenCheckpoint(req.CheckpointPath); err != nil {
			return nil, err
		}
		defer checkpoint.Close()
	}

	settings := req.Settings()
	settings.Policy = domain.DivergencePolicy(policy)

	results := make([]*domain.DefectResult, len(ids))
	var pending []int
	for i, id := range ids {
		if prev, ok := done[id]; ok && reusable(prev, settings, req.LocalizeOnly) {
			results[i] = &prev
			continue
		}
		pending = append(pending, i)
	}
	if reused := len(ids) - len(pending); reused > 0 {
		slog.Info("Resuming from checkpoint", "path", req.CheckpointPath, "completed", reused, "remaining", len(pending))
	}

	workers := req.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var pathCache *PathDistanceCache
	if !req.LocalizeOnly {
		roots := checkoutRoots(ids, pending, req.WorkDir)
		pathCache, err = PopulatePathDistanceCache(ctx, roots, s.reader, PathDistanceCacheConfig{
			ExcludePatterns: req.ExcludePatterns,
			Concurrency:     workers,
		})
		if err != nil {
			return nil, err
		}
	}

	scorer := analyzer.NewDivergenceScorer(analyzer.DivergenceConfig{
		Policy:         policy,
		SameFileGamma:  req.SameFileGamma,
		CrossFileGamma: req.CrossFileGamma,
	})

	// one localizer, and so one tree-sitter parser, per worker
	patches := NewPatchReader(req.PatchDir)
	localizers := make(chan *DefectLocalizer, workers)
	for i := 0; i < workers; i++ {
		localizers <- NewDefectLocalizer(s.reader, patches, req.PackageScanLines)
	}

	var (
		skippedMu sync.Mutex
		skipped   = make(map[int]domain.SkippedDefect)
		processed atomic.Int64
	)
	total := len(ids)
	processed.Store(int64(total - len(pending)))

	s.progress.Initialize(total)
	s.progress.Start()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, i := range pending {
		id := ids[i]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			localizer := <-localizers
			defer func() { localizers <- localizer }()

			result, err := processDefect(groupCtx, localizer, scorer, pathCache, id, dataset.Records[id], req)
			if result != nil {
				result.Settings = &settings
			}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				slog.Error("Skipping defect", "defect", id, "error", err)
				skippedMu.Lock()
				skipped[i] = domain.SkippedDefect{DefectID: id, Reason: err.Error()}
				skippedMu.Unlock()
			} else {
				results[i] = result
				if checkpoint != nil {
					if err := checkpoint.Append(*result); err != nil {
						slog.Warn("Failed to checkpoint defect", "defect", id, "error", err)
					}
				}
			}
			s.progress.Update(int(processed.Add(1)), total)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		s.progress.Complete(false)
		return nil, domain.NewAnalysisError("divergence sweep interrupted", err)
	}
	s.progress.Complete(true)

	response := &domain.DivergenceResponse{
		Policy:      domain.DivergencePolicy(policy),
		GeneratedAt: time.Now(),
		Version:     version.Short(),
	}
	for i, r := range results {
		if r != nil {
			response.Results = append(response.Results, *r)
		} else if sk, ok := skipped[i]; ok {
			response.Skipped = append(response.Skipped, sk)
		}
	}
	response.Duration = time.Since(startTime).Milliseconds()

	slog.Info("Divergence sweep finished", "defects", len(response.Results),
		"skipped", len(response.Skipped), "policy", policy, "duration_ms", response.Duration)
	return response, nil
}

// processDefect localizes one defect and, unless only localization was
// asked for, scores it
func processDefect(ctx context.Context, localizer *DefectLocalizer, scorer *analyzer.DivergenceScorer,
	pathCache *PathDistanceCache, id string, rec domain.DefectRecord, req domain.DivergenceRequest) (*domain.DefectResult, error) {
	localized, err := localizer.Localize(ctx, id, rec, req.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("localizing %s: %w", id, err)
	}

	result := &domain.DefectResult{
		Defect:   localized.Defect,
		Warnings: localized.Warnings,
	}
	if req.LocalizeOnly {
		return result, nil
	}

	root := localized.Defect.CheckoutRoot
	maxPath := pathCache.MaxPathDistance(root)
	if stats, ok := pathCache.Get(root); ok && stats.Err == nil && stats.MaxPathDistance == 0 && spansFiles(localized.Hunks) {
		w := domain.NewNormalizationZeroError("maximum path distance of " + root)
		slog.Warn("Zero normalizer", "defect", id, "reason", w.Error())
		result.Warnings = append(result.Warnings, domain.NewWarning(w, -1))
	}

	scored := scorer.Score(localized.Hunks, maxPath)
	if scored.HunkCount < 2 {
		w := domain.NewDegenerateDefectError(id, scored.HunkCount)
		slog.Debug("Degenerate defect", "defect", id, "hunks", scored.HunkCount)
		result.Warnings = append(result.Warnings, domain.NewWarning(w, -1))
	}

	div := &domain.DefectDivergence{
		DefectID:  id,
		HunkCount: scored.HunkCount,
		Score:     scored.Score,
		Policy:    domain.DivergencePolicy(scored.Policy),
		Pairs:     make([]domain.PairwiseScore, 0, len(scored.Pairs)),
	}
	for _, p := range scored.Pairs {
		div.Pairs = append(div.Pairs, domain.PairwiseScore{
			I:          p.I,
			J:          p.J,
			Lexical:    p.Lexical,
			Syntactic:  p.Syntactic,
			Path:       p.Path,
			Gamma:      p.Gamma,
			Normalized: p.Normalized,
		})
	}
	result.Divergence = div
	return result, nil
}

// selectDefects returns the requested ids in sorted dataset order, or every
// id when none is requested
func selectDefects(dataset *domain.Dataset, requested []string) ([]string, error) {
	all := dataset.IDs()
	if len(requested) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		if _, ok := dataset.Records[id]; !ok {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("defect %s is not in dataset %s", id, dataset.Path), nil)
		}
		want[id] = true
	}
	ids := make([]string, 0, len(want))
	for _, id := range all {
		if want[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// reusable reports whether a checkpointed result satisfies this run. Results
// written without settings are always recomputed.
func reusable(prev domain.DefectResult, settings domain.RunSettings, localizeOnly bool) bool {
	if prev.Settings == nil {
		return false
	}
	if localizeOnly {
		return prev.Settings.SameLocalization(settings)
	}
	return prev.Divergence != nil && prev.Settings.SameScoring(settings)
}

// checkoutRoots returns the distinct checkout roots of the pending defects
func checkoutRoots(ids []string, pending []int, workDir string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, i := range pending {
		id, err := domain.ParseDefectID(ids[i])
		if err != nil {
			continue
		}
		root := id.CheckoutRoot(workDir)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}

func spansFiles(hunks []*analyzer.Hunk) bool {
	for _, h := range hunks[min(1, len(hunks)):] {
		if !h.SameFile(hunks[0]) {
			return true
		}
	}
	return false
}
