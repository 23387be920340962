package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/ludo-technologies/hunkscope/domain"
)

// writeReport sends the response to the configured destination. CSV into a
// directory becomes one file per table; every other combination goes through
// the report writer, into <dir>/report.<ext> when a directory is set.
func writeReport(
	formatter domain.AnalyzeOutputFormatter,
	writer domain.ReportWriter,
	response *domain.AnalyzeResponse,
	opts domain.OutputOptions,
) error {
	format := opts.Format
	if format == "" {
		format = domain.OutputFormatText
	}

	if opts.Directory != "" && format == domain.OutputFormatCSV {
		paths, err := formatter.WriteDir(response, format, opts.Summary, opts.Directory)
		if err != nil {
			return wrapOutputError(err)
		}
		for _, p := range paths {
			slog.Info("Wrote table", "path", p)
		}
		return nil
	}

	outputPath := ""
	if opts.Directory != "" {
		outputPath = filepath.Join(opts.Directory, "report"+format.Extension())
	}
	err := writer.Write(opts.Writer, outputPath, format, func(w io.Writer) error {
		return formatter.Write(response, format, opts.Summary, w)
	})
	if err != nil {
		return wrapOutputError(err)
	}
	return nil
}

// wrapAnalysisError keeps errors that already carry a domain code and wraps
// the rest as analysis errors
func wrapAnalysisError(message string, err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}
	return domain.NewAnalysisError(message, err)
}

func wrapOutputError(err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}
	return domain.NewOutputError("failed to write output", err)
}

// localizedDefects returns the defects of every result, in order
func localizedDefects(resp *domain.DivergenceResponse) []domain.Defect {
	defects := make([]domain.Defect, 0, len(resp.Results))
	for _, r := range resp.Results {
		defects = append(defects, r.Defect)
	}
	return defects
}

// corpusDepths returns the package depth of every hunk in the dataset when
// the sweep was narrowed to some defects and the cutoff is derived. In every
// other case the classified defects already are the corpus and nil is
// returned.
func corpusDepths(ctx context.Context, survey domain.PackageDepthSurvey, req domain.AnalyzeRequest) ([]int, error) {
	if req.Cutoff != domain.CutoffAuto || len(req.Divergence.DefectIDs) == 0 {
		return nil, nil
	}
	depths, err := survey.PackageDepths(ctx, req.Divergence)
	if err != nil {
		return nil, wrapAnalysisError("package depth scan failed", err)
	}
	if depths == nil {
		depths = []int{}
	}
	return depths, nil
}
