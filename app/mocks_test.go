package app

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/ludo-technologies/hunkscope/domain"
)

type mockDivergenceService struct {
	mock.Mock
}

func (m *mockDivergenceService) Analyze(ctx context.Context, req domain.DivergenceRequest) (*domain.DivergenceResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*domain.DivergenceResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProximityService struct {
	mock.Mock
}

func (m *mockProximityService) Classify(defects []domain.Defect, cutoff int, corpusDepths []int) *domain.ProximityResponse {
	args := m.Called(defects, cutoff, corpusDepths)
	return args.Get(0).(*domain.ProximityResponse)
}

type mockDepthSurvey struct {
	mock.Mock
}

func (m *mockDepthSurvey) PackageDepths(ctx context.Context, req domain.DivergenceRequest) ([]int, error) {
	args := m.Called(ctx, req)
	if depths := args.Get(0); depths != nil {
		return depths.([]int), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFormatter struct {
	mock.Mock
}

func (m *mockFormatter) Tables(response *domain.AnalyzeResponse, includeSummary bool) []domain.Table {
	args := m.Called(response, includeSummary)
	return args.Get(0).([]domain.Table)
}

func (m *mockFormatter) Write(response *domain.AnalyzeResponse, format domain.OutputFormat, includeSummary bool, writer io.Writer) error {
	args := m.Called(response, format, includeSummary, writer)
	return args.Error(0)
}

func (m *mockFormatter) WriteDir(response *domain.AnalyzeResponse, format domain.OutputFormat, includeSummary bool, dir string) ([]string, error) {
	args := m.Called(response, format, includeSummary, dir)
	if paths := args.Get(0); paths != nil {
		return paths.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// passThroughWriter calls writeFunc with the given writer, like the file
// writer does without an output path
type passThroughWriter struct {
	paths []string
}

func (w *passThroughWriter) Write(writer io.Writer, outputPath string, _ domain.OutputFormat, writeFunc func(io.Writer) error) error {
	w.paths = append(w.paths, outputPath)
	if writer == nil {
		writer = io.Discard
	}
	return writeFunc(writer)
}

func sweepRequest(out io.Writer) domain.AnalyzeRequest {
	div := domain.DefaultDivergenceRequest()
	div.DatasetPath = "dataset.json"
	div.WorkDir = "work"
	return domain.AnalyzeRequest{
		Divergence: *div,
		Cutoff:     domain.CutoffAuto,
		Output:     domain.OutputOptions{Format: domain.OutputFormatText, Writer: out},
	}
}

func twoDefectSweep() *domain.DivergenceResponse {
	return &domain.DivergenceResponse{
		Policy:  domain.DivergencePolicyMean,
		Version: "test",
		Results: []domain.DefectResult{
			{
				Defect:     domain.Defect{ID: "Lang_1"},
				Divergence: &domain.DefectDivergence{DefectID: "Lang_1", HunkCount: 2, Score: 0.2},
			},
			{
				Defect:     domain.Defect{ID: "Lang_2"},
				Divergence: &domain.DefectDivergence{DefectID: "Lang_2", HunkCount: 2, Score: 0.6},
			},
		},
		Skipped: []domain.SkippedDefect{{DefectID: "Lang_3", Reason: "[INVALID_INPUT] malformed"}},
	}
}
