package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/service"
)

func TestProximityUseCase_LocalizeOnlySweep(t *testing.T) {
	svc := &mockDivergenceService{}
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(r domain.DivergenceRequest) bool {
		return r.LocalizeOnly
	})).Return(twoDefectSweep(), nil)

	prox := &mockProximityService{}
	prox.On("Classify", mock.Anything, 3, mock.Anything).Return(&domain.ProximityResponse{Cutoff: 3})

	uc, err := NewProximityUseCaseBuilder().
		WithLocalizer(svc).
		WithService(prox).
		WithFormatter(service.NewAnalyzeFormatter()).
		WithOutputWriter(&passThroughWriter{}).
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	req := sweepRequest(&buf)
	req.Cutoff = 3
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.Divergence)
	assert.Equal(t, 3, resp.Proximity.Cutoff)
	assert.Contains(t, buf.String(), "3 (override)")
	svc.AssertExpectations(t)
	prox.AssertExpectations(t)
}

// TestProximityUseCase_EndToEnd runs the real services over a one-defect
// corpus with two hunks in sibling packages
func TestProximityUseCase_EndToEnd(t *testing.T) {
	base := t.TempDir()
	checkout := filepath.Join(base, "work", "Demo_1")
	files := map[string]string{
		"src/main/java/org/demo/a/A.java": "package org.demo.a;\n\nclass A {\n    void f() {\n        int x = 1;\n    }\n}\n",
		"src/main/java/org/demo/b/B.java": "package org.demo.b;\n\nclass B {\n    void g() {\n        int y = 2;\n    }\n}\n",
	}
	for rel, content := range files {
		path := filepath.Join(checkout, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	dataset := filepath.Join(base, "dataset.json")
	require.NoError(t, os.WriteFile(dataset, []byte(`{"Demo_1": {"buggy_hunks": {
		"0": {"file": "src/main/java/org/demo/a/A.java", "start_line": 5, "end_line": 5},
		"1": {"file": "src/main/java/org/demo/b/B.java", "start_line": 5, "end_line": 5}}}}`), 0o644))

	uc, err := NewProximityUseCaseBuilder().
		WithLocalizer(service.NewDivergenceService(nil, nil)).
		WithService(service.NewProximityService()).
		WithFormatter(service.NewAnalyzeFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(&bytes.Buffer{})).
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	req := sweepRequest(&buf)
	req.Divergence.DatasetPath = dataset
	req.Divergence.WorkDir = filepath.Join(base, "work")
	req.Output.Format = domain.OutputFormatCSV

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	// depths 3 and 3: cutoff 1, common prefix org.demo is 2
	assert.Equal(t, 1, resp.Proximity.Cutoff)
	class, ok := resp.Proximity.ClassOf("Demo_1")
	require.True(t, ok)
	assert.Equal(t, domain.ProximitySprawl, class)
	assert.Equal(t, "defect_id,proximity_class\nDemo_1,Sprawl\n", buf.String())
}
