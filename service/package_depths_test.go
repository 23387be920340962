package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/domain"
)

const deepPath = "src/main/java/org/example/a/b/c/d/e/f/Deep.java"

const deepJava = `package org.example.a.b.c.d.e.f;

public class Deep {
    int v;
}
`

// addDeepDefect adds Lang_5: ten hunks in a depth-8 package, enough to move
// the corpus median from 3 to 8
func addDeepDefect(t *testing.T, c corpus) {
	t.Helper()
	writeFiles(t, filepath.Join(c.workDir, "Lang_5"), map[string]string{deepPath: deepJava})

	data, err := os.ReadFile(c.dataset)
	require.NoError(t, err)
	records := map[string]domain.DefectRecord{}
	require.NoError(t, json.Unmarshal(data, &records))

	hunks := make(map[string]domain.HunkLocation)
	for i := 0; i < 10; i++ {
		hunks[fmt.Sprint(i)] = hunkAt(deepPath, 4, 4)
	}
	records["Lang_5"] = domain.DefectRecord{BuggyHunks: hunks}

	data, err = json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.dataset, data, 0o644))
}

func TestPackageDepthScanner_MatchesLocalizer(t *testing.T) {
	c := newCorpus(t)
	addDeepDefect(t, c)
	req := c.request()

	depths, err := NewPackageDepthScanner(nil, nil).PackageDepths(context.Background(), req)
	require.NoError(t, err)

	req.LocalizeOnly = true
	resp, err := NewDivergenceService(nil, nil).Analyze(context.Background(), req)
	require.NoError(t, err)
	var localized []int
	for _, r := range resp.Results {
		for _, h := range r.Defect.Hunks {
			localized = append(localized, h.PackageDepth())
		}
	}
	assert.Equal(t, localized, depths)
	assert.Len(t, depths, 17)
}

func TestPackageDepthScanner_IgnoresDefectSelection(t *testing.T) {
	c := newCorpus(t)
	req := c.request()
	all, err := NewPackageDepthScanner(nil, nil).PackageDepths(context.Background(), req)
	require.NoError(t, err)

	req.DefectIDs = []string{"Lang_2"}
	subset, err := NewPackageDepthScanner(nil, nil).PackageDepths(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, all, subset)
}

func TestPackageDepthScanner_MissingDataset(t *testing.T) {
	req := domain.DefaultDivergenceRequest()
	req.DatasetPath = filepath.Join(t.TempDir(), "none.json")
	req.WorkDir = t.TempDir()
	_, err := NewPackageDepthScanner(nil, nil).PackageDepths(context.Background(), *req)
	assert.Error(t, err)
}

func TestProximityService_SubsetUsesCorpusCutoff(t *testing.T) {
	c := newCorpus(t)
	addDeepDefect(t, c)
	ctx := context.Background()

	localize := func(ids []string) []domain.Defect {
		req := c.request()
		req.LocalizeOnly = true
		req.DefectIDs = ids
		resp, err := NewDivergenceService(nil, nil).Analyze(ctx, req)
		require.NoError(t, err)
		var defects []domain.Defect
		for _, r := range resp.Results {
			defects = append(defects, r.Defect)
		}
		return defects
	}

	full := NewProximityService().Classify(localize(nil), domain.CutoffAuto, nil)
	assert.Equal(t, 8.0, full.MedianDepth)
	assert.Equal(t, 4, full.Cutoff)
	assert.Equal(t, domain.ProximityFragment, classOf(t, full, "Lang_2"))

	depths, err := NewPackageDepthScanner(nil, nil).PackageDepths(ctx, c.request())
	require.NoError(t, err)
	subset := NewProximityService().Classify(localize([]string{"Lang_2"}), domain.CutoffAuto, depths)
	require.Len(t, subset.Defects, 1)
	assert.Equal(t, full.Cutoff, subset.Cutoff)
	assert.Equal(t, full.MedianDepth, subset.MedianDepth)
	assert.Equal(t, domain.ProximityFragment, classOf(t, subset, "Lang_2"))

	// without the corpus depths the narrowed run sees only Lang_2's hunks
	alone := NewProximityService().Classify(localize([]string{"Lang_2"}), domain.CutoffAuto, nil)
	assert.Equal(t, domain.ProximitySprawl, classOf(t, alone, "Lang_2"))
}
