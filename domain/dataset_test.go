package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefectRecord_OrderedHunks(t *testing.T) {
	rec := DefectRecord{
		BuggyHunks: map[string]HunkLocation{
			"10":    {File: "C.java", StartLine: 30, EndLine: 31},
			"2":     {File: "B.java", StartLine: 20, EndLine: 20},
			"0":     {File: "A.java", StartLine: 10, EndLine: 12},
			"extra": {File: "Z.java", StartLine: 1, EndLine: 1},
		},
	}

	got := rec.OrderedHunks()
	require.Len(t, got, 4)
	assert.Equal(t, "A.java", got[0].File)
	assert.Equal(t, "B.java", got[1].File)
	assert.Equal(t, "C.java", got[2].File)
	assert.Equal(t, "Z.java", got[3].File)
}

func TestDefectRecord_MethodByLocation(t *testing.T) {
	shared := HunkLocation{File: "A.java", StartLine: 3, EndLine: 4}
	rec := DefectRecord{
		HunkMapping: map[string][]HunkLocation{
			"1": {shared, {File: "A.java", StartLine: 9, EndLine: 9}},
			"0": {shared},
		},
	}

	got := rec.MethodByLocation()
	assert.Equal(t, "0", got[shared])
	assert.Equal(t, "1", got[HunkLocation{File: "A.java", StartLine: 9, EndLine: 9}])
	assert.Len(t, got, 2)
}

func TestDataset_IDs(t *testing.T) {
	ds := &Dataset{Records: map[string]DefectRecord{"Math_5": {}, "Chart_1": {}, "Lang_10": {}}}
	assert.Equal(t, []string{"Chart_1", "Lang_10", "Math_5"}, ds.IDs())
	assert.Equal(t, 3, ds.Len())

	var empty *Dataset
	assert.Nil(t, empty.IDs())
	assert.Equal(t, 0, empty.Len())
}

func TestParseDefectID(t *testing.T) {
	tests := []struct {
		in          string
		wantProject string
		wantNumber  int
		wantErr     bool
	}{
		{"Lang_1", "Lang", 1, false},
		{"Commons_Cli_12", "Commons_Cli", 12, false},
		{"Math_07", "Math", 7, false},
		{"Lang", "", 0, true},
		{"_3", "", 0, true},
		{"Lang_", "", 0, true},
		{"Lang_x", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseDefectID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, HasCode(err, ErrCodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProject, id.Project)
			assert.Equal(t, tt.wantNumber, id.Number)
			assert.Equal(t, tt.in, id.String())
		})
	}

	id, err := ParseDefectID("Math_07")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("work", "Math_07"), id.CheckoutRoot("work"))
}
