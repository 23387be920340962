package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyMean, false},
		{"mean", PolicyMean, false},
		{" MEAN ", PolicyMean, false},
		{"log-scaled", PolicyLogScaled, false},
		{"log_scaled", PolicyLogScaled, false},
		{"median", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivergenceScorer_Degenerate(t *testing.T) {
	s := NewDivergenceScorer(DefaultDivergenceConfig())

	for _, hunks := range [][]*Hunk{nil, {{File: "A.java", Text: "x"}}} {
		res := s.Score(hunks, 5)
		assert.Equal(t, len(hunks), res.HunkCount)
		assert.Equal(t, 0.0, res.Score)
		assert.Empty(t, res.Pairs)
		assert.Equal(t, PolicyMean, res.Policy)
	}
}

func TestDivergenceScorer_PairEnumeration(t *testing.T) {
	s := NewDivergenceScorer(DefaultDivergenceConfig())
	hunks := []*Hunk{
		{File: "a/A.java", Text: "a"},
		{File: "b/B.java", Text: "b"},
		{File: "c/C.java", Text: "c"},
		{File: "d/D.java", Text: "d"},
	}

	res := s.Score(hunks, 2)
	require.Len(t, res.Pairs, 6)
	seen := make(map[[2]int]bool)
	for _, p := range res.Pairs {
		assert.Less(t, p.I, p.J)
		seen[[2]int{p.I, p.J}] = true
	}
	assert.Len(t, seen, 6)

	sum := 0.0
	for _, p := range res.Pairs {
		sum += p.Normalized
	}
	assert.InDelta(t, sum/6, res.Score, 1e-9)
}

func TestDivergenceScorer_Bounds(t *testing.T) {
	idx := Annotate(parseSample(t, indexSampleJava))
	s := NewDivergenceScorer(DefaultDivergenceConfig())

	const file = "src/main/java/org/example/core/Calculator.java"
	defects := [][]*Hunk{
		{
			localizedHunk(0, file, idx, 9, 9, "int sum = a + b;"),
			localizedHunk(1, file, idx, 21, 21, "this.total = 0;"),
		},
		{
			localizedHunk(0, file, idx, 9, 9, "int sum = a + b;"),
			localizedHunk(1, "src/main/java/com/other/Util.java", nil, 3, 3, "return null;"),
			localizedHunk(2, "src/main/java/net/third/deep/Io.java", nil, 7, 9, ""),
		},
		{
			{File: "x/X.java", Text: "zzz", PathSegments: []string{"x"}},
			{File: "y/Y.java", Text: "qqq", PathSegments: []string{"y"}},
		},
	}
	for i, hunks := range defects {
		res := s.Score(hunks, 3)
		assert.GreaterOrEqual(t, res.Score, 0.0, "defect %d", i)
		assert.LessOrEqual(t, res.Score, 1.0, "defect %d", i)
	}

	// unrelated text in different files at the maximum path distance reaches
	// the upper bound
	res := s.Score(defects[2], 2)
	assert.InDelta(t, 1.0, res.Score, 1e-9)
}

func TestDivergenceScorer_Idempotent(t *testing.T) {
	idx := Annotate(parseSample(t, indexSampleJava))
	s := NewDivergenceScorer(DefaultDivergenceConfig())

	const file = "Calculator.java"
	hunks := []*Hunk{
		localizedHunk(0, file, idx, 9, 10, "int sum = a + b;\ntotal += sum;"),
		localizedHunk(1, file, idx, 15, 16, "int old = total;\ntotal = 0;"),
		localizedHunk(2, "util/Other.java", nil, 1, 1, "x"),
	}
	first := s.Score(hunks, 4)
	second := s.Score(hunks, 4)
	assert.Equal(t, first, second)
}

func TestDivergenceScorer_LogScaled(t *testing.T) {
	cfg := DefaultDivergenceConfig()
	cfg.Policy = PolicyLogScaled
	s := NewDivergenceScorer(cfg)
	assert.Equal(t, PolicyLogScaled, s.Policy())

	hunks := []*Hunk{
		{File: "a/A.java", Text: "alpha"},
		{File: "b/B.java", Text: "beta"},
		{File: "c/C.java", Text: "gamma"},
	}
	res := s.Score(hunks, 2)
	require.Len(t, res.Pairs, 3)

	mean := 0.0
	for _, p := range res.Pairs {
		mean += p.Normalized
	}
	mean /= 3
	assert.InDelta(t, math.Log(3)*mean, res.Score, 1e-9)
	assert.Equal(t, PolicyLogScaled, res.Policy)
}

func TestScenario_SameMethodNearIdentical(t *testing.T) {
	idx := Annotate(parseSample(t, indexSampleJava))
	s := NewDivergenceScorer(DefaultDivergenceConfig())
	resolver := NewMethodResolver(nil)
	loc := NewHunkLocalizer(idx)

	const file = "src/main/java/org/example/core/Calculator.java"
	a := localizedHunk(0, file, idx, 9, 9, "int sum = a + b;")
	b := localizedHunk(1, file, idx, 10, 10, "int sum = a - b;")
	for _, h := range []*Hunk{a, b} {
		h.Method, _ = resolver.Resolve(MethodTarget{Root: h.Root, Localizer: loc})
	}
	require.Equal(t, "add", a.Method)
	require.Equal(t, a.Method, b.Method)

	res := s.Score([]*Hunk{a, b}, 4)
	require.Len(t, res.Pairs, 1)
	pair := res.Pairs[0]
	assert.Less(t, pair.Lexical, 0.3)
	assert.Less(t, pair.Syntactic, 0.5)
	assert.Equal(t, 0.0, pair.Path)
	assert.Equal(t, Nucleus, Classify([]*Hunk{a, b}, 1))
}

func TestScenario_UnrelatedPackages(t *testing.T) {
	s := NewDivergenceScorer(DefaultDivergenceConfig())

	a := &Hunk{File: "org/a/Foo.java", Text: "foo.run();", Method: "run"}
	b := &Hunk{File: "com/b/Bar.java", Text: "bar.stop();", Method: "stop"}
	for _, h := range []*Hunk{a, b} {
		h.PathSegments = PathPackageSegments(h.File)
		h.PackageSegments = h.PathSegments
	}

	res := s.Score([]*Hunk{a, b}, 4)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, 1.0, res.Pairs[0].Path)
	assert.Equal(t, 1.0, res.Pairs[0].Syntactic)

	for _, cutoff := range []int{0, 1, 2, 5} {
		class := Classify([]*Hunk{a, b}, cutoff)
		assert.Contains(t, []ProximityClass{Sprawl, Fragment}, class)
	}
}

func TestScenario_SingleHunk(t *testing.T) {
	s := NewDivergenceScorer(DefaultDivergenceConfig())
	hunks := []*Hunk{{File: "src/org/a/Foo.java", Text: "x++;", Method: UnknownMethod, PackageSegments: []string{"org", "a"}}}

	res := s.Score(hunks, 3)
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, Nucleus, Classify(hunks, 0))
}
