package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDivergenceRequest_Validate(t *testing.T) {
	valid := func() *DivergenceRequest {
		r := DefaultDivergenceRequest()
		r.DatasetPath = "dataset.json"
		r.WorkDir = "checkouts"
		return r
	}

	tests := []struct {
		name    string
		mutate  func(r *DivergenceRequest)
		wantErr bool
	}{
		{"valid", func(r *DivergenceRequest) {}, false},
		{"log scaled", func(r *DivergenceRequest) { r.Policy = DivergencePolicyLogScaled }, false},
		{"missing dataset", func(r *DivergenceRequest) { r.DatasetPath = "" }, true},
		{"missing work dir", func(r *DivergenceRequest) { r.WorkDir = "" }, true},
		{"unknown policy", func(r *DivergenceRequest) { r.Policy = "median" }, true},
		{"negative gamma", func(r *DivergenceRequest) { r.CrossFileGamma = -1 }, true},
		{"negative scan lines", func(r *DivergenceRequest) { r.PackageScanLines = -5 }, true},
		{"negative workers", func(r *DivergenceRequest) { r.MaxWorkers = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, HasCode(err, ErrCodeInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzeRequest_Validate(t *testing.T) {
	req := AnalyzeRequest{Divergence: *DefaultDivergenceRequest(), Cutoff: CutoffAuto}
	req.Divergence.DatasetPath = "d.json"
	req.Divergence.WorkDir = "w"
	assert.NoError(t, req.Validate())

	req.Cutoff = -2
	assert.Error(t, req.Validate())

	req.Cutoff = 3
	req.Output.Format = "html"
	assert.True(t, HasCode(req.Validate(), ErrCodeUnsupportedFormat))
}

func TestDivergenceResponse_Divergences(t *testing.T) {
	resp := &DivergenceResponse{Results: []DefectResult{
		{Defect: Defect{ID: "A_1"}, Divergence: &DefectDivergence{DefectID: "A_1", Score: 0.5}},
		{Defect: Defect{ID: "A_2"}},
		{Defect: Defect{ID: "A_3"}, Divergence: &DefectDivergence{DefectID: "A_3"}},
	}}
	got := resp.Divergences()
	assert.Len(t, got, 2)
	assert.Equal(t, "A_3", got[1].DefectID)
}

func TestDomainErrorCodes(t *testing.T) {
	err := fmt.Errorf("scoring Lang_1: %w", NewDegenerateDefectError("Lang_1", 1))
	assert.Equal(t, ErrCodeDegenerateDefect, ErrorCode(err))
	assert.True(t, HasCode(err, ErrCodeDegenerateDefect))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))

	cause := errors.New("boom")
	wrapped := NewParseError("A.java", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "[PARSE_ERROR]")
}

func TestNewWarning(t *testing.T) {
	w := NewWarning(NewEmptyLocalizationError("A.java", 3, 4), 1)
	assert.Equal(t, ErrCodeEmptyLocalization, w.Code)
	assert.Equal(t, 1, w.Hunk)
	assert.Contains(t, w.Message, "lines 3-4 of A.java")

	w = NewWarning(errors.New("disk on fire"), -1)
	assert.Equal(t, "", w.Code)
	assert.Equal(t, "disk on fire", w.Message)
}

func TestProximityClassNames(t *testing.T) {
	for _, c := range ProximityClasses() {
		got, err := ParseProximityClassName(string(c))
		assert.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseProximityClassName(" orbit ")
	assert.NoError(t, err)
	assert.Equal(t, ProximityOrbit, got)

	_, err = ParseProximityClassName("Galaxy")
	assert.Error(t, err)

	resp := &ProximityResponse{Defects: []DefectProximity{{DefectID: "A_1", Class: ProximitySprawl}}}
	c, ok := resp.ClassOf("A_1")
	assert.True(t, ok)
	assert.Equal(t, ProximitySprawl, c)
	_, ok = resp.ClassOf("A_2")
	assert.False(t, ok)
}

func TestOutputFormat(t *testing.T) {
	for _, f := range SupportedOutputFormats() {
		assert.True(t, f.IsValid())
	}
	assert.False(t, OutputFormat("html").IsValid())
	assert.Equal(t, ".csv", OutputFormatCSV.Extension())
	assert.Equal(t, ".txt", OutputFormatText.Extension())
}
