package service

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/internal/analyzer"
)

// PackageDepthScanner reads the package of every hunk's file in a dataset
// without parsing it. Depths match what DefectLocalizer assigns: a missing or
// unreadable file has depth 0.
type PackageDepthScanner struct {
	loader domain.DatasetLoader
	reader *FileReaderImpl
}

// NewPackageDepthScanner creates a new scanner
func NewPackageDepthScanner(loader domain.DatasetLoader, reader *FileReaderImpl) *PackageDepthScanner {
	if loader == nil {
		loader = NewDatasetLoader()
	}
	if reader == nil {
		reader = NewFileReader()
	}
	return &PackageDepthScanner{loader: loader, reader: reader}
}

// PackageDepths implements domain.PackageDepthSurvey. Defects with malformed
// ids are left out, as the sweep skips them.
func (s *PackageDepthScanner) PackageDepths(ctx context.Context, req domain.DivergenceRequest) ([]int, error) {
	dataset, err := s.loader.Load(ctx, req.DatasetPath)
	if err != nil {
		return nil, err
	}
	ids := dataset.IDs()

	workers := req.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perDefect := make([][]int, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, raw := range ids {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			id, err := domain.ParseDefectID(raw)
			if err != nil {
				slog.Debug("Package scan skips defect", "defect", raw, "error", err)
				return nil
			}
			root := id.CheckoutRoot(req.WorkDir)
			byFile := make(map[string]int)
			for _, loc := range dataset.Records[raw].OrderedHunks() {
				depth, ok := byFile[loc.File]
				if !ok {
					depth = s.fileDepth(root, loc.File, req.PackageScanLines)
					byFile[loc.File] = depth
				}
				perDefect[i] = append(perDefect[i], depth)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, domain.NewAnalysisError("package depth scan interrupted", err)
	}

	var depths []int
	for _, d := range perDefect {
		depths = append(depths, d...)
	}
	slog.Debug("Package depths scanned", "defects", len(ids), "hunks", len(depths))
	return depths, nil
}

func (s *PackageDepthScanner) fileDepth(root, file string, scanLines int) int {
	path := s.reader.ResolveCheckoutFile(root, file)
	if path == "" {
		return 0
	}
	text, err := s.reader.ReadText(path)
	if err != nil {
		return 0
	}
	return len(analyzer.SplitPackage(analyzer.ExtractPackage(SplitLines(text), file, scanLines)))
}
