package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/domain"
)

func TestDivergenceUseCase_Execute(t *testing.T) {
	svc := &mockDivergenceService{}
	svc.On("Analyze", mock.Anything, mock.AnythingOfType("domain.DivergenceRequest")).Return(twoDefectSweep(), nil)

	formatter := &mockFormatter{}
	formatter.On("Write", mock.Anything, domain.OutputFormatJSON, false, mock.Anything).Return(nil)
	writer := &passThroughWriter{}

	uc, err := NewDivergenceUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithOutputWriter(writer).
		Build()
	require.NoError(t, err)

	req := sweepRequest(nil)
	req.Output = domain.OutputOptions{Format: domain.OutputFormatJSON, Directory: "reports"}
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.Proximity)
	assert.Len(t, resp.Divergence.Divergences(), 2)
	assert.Equal(t, []string{filepath.Join("reports", "report.json")}, writer.paths)

	written := formatter.Calls[0].Arguments.Get(0).(*domain.AnalyzeResponse)
	assert.Same(t, resp, written)
}

func TestDivergenceUseCase_Errors(t *testing.T) {
	svc := &mockDivergenceService{}
	svc.On("Analyze", mock.Anything, mock.Anything).Return(nil, errors.New("disk on fire"))
	formatter := &mockFormatter{}

	uc := NewDivergenceUseCase(svc, formatter, &passThroughWriter{})

	req := sweepRequest(&bytes.Buffer{})
	req.Divergence.LocalizeOnly = true
	_, err := uc.Execute(context.Background(), req)
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidInput))

	_, err = uc.Execute(context.Background(), sweepRequest(&bytes.Buffer{}))
	assert.True(t, domain.HasCode(err, domain.ErrCodeAnalysisError))

	// output failures are reported with the response
	svc2 := &mockDivergenceService{}
	svc2.On("Analyze", mock.Anything, mock.Anything).Return(twoDefectSweep(), nil)
	formatter.On("Write", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("closed pipe"))
	uc = NewDivergenceUseCase(svc2, formatter, &passThroughWriter{})
	resp, err := uc.Execute(context.Background(), sweepRequest(&bytes.Buffer{}))
	assert.NotNil(t, resp)
	assert.True(t, domain.HasCode(err, domain.ErrCodeOutputError))
}

func TestDivergenceUseCaseBuilder_Required(t *testing.T) {
	_, err := NewDivergenceUseCaseBuilder().Build()
	assert.Error(t, err)
	_, err = NewDivergenceUseCaseBuilder().WithService(&mockDivergenceService{}).Build()
	assert.Error(t, err)
}
