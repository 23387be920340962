package analyzer

import (
	"math"
	"regexp"

	"github.com/pmezard/go-difflib/difflib"
)

// LexicalSimilarity scores how alike two text fragments are, in [0, 1]
type LexicalSimilarity interface {
	Similarity(a, b string) float64
	Name() string
}

// SequenceRatio is the longest-matching-block ratio 2*M/T computed over the
// characters of both fragments
type SequenceRatio struct{}

// NewSequenceRatio creates the default lexical similarity
func NewSequenceRatio() *SequenceRatio {
	return &SequenceRatio{}
}

// Name returns the identifier used in run metadata
func (s *SequenceRatio) Name() string {
	return "sequence-ratio"
}

// Similarity returns 1 for two empty fragments and 0 when exactly one is empty
func (s *SequenceRatio) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	// autojunk on: characters that make up over 1% of a fragment of 200 or
	// more are ignored when seeding matches
	matcher := difflib.NewMatcher(runeStrings(a), runeStrings(b))
	return clamp01(matcher.Ratio())
}

// runeStrings splits s into one element per character
func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// codeToken matches identifiers, numbers and single punctuation characters
var codeToken = regexp.MustCompile(`[\p{L}\p{N}_$]+|[^\s\p{L}\p{N}_$]`)

// TokenizeCode splits source text into word and punctuation tokens
func TokenizeCode(s string) []string {
	return codeToken.FindAllString(s, -1)
}

// SentenceBLEU is a smoothed sentence-level BLEU over code tokens, treating
// the first fragment as the reference and the second as the candidate.
// Zero n-gram precisions are smoothed by the decaying scheme of Chen and
// Cherry (method 4) so short fragments do not collapse to zero.
type SentenceBLEU struct {
	maxOrder int
	k        float64
}

// NewSentenceBLEU creates a 4-gram BLEU with uniform weights
func NewSentenceBLEU() *SentenceBLEU {
	return &SentenceBLEU{maxOrder: 4, k: 5}
}

// Name returns the identifier used in run metadata
func (s *SentenceBLEU) Name() string {
	return "sentence-bleu"
}

// Similarity returns the BLEU score of b against a
func (s *SentenceBLEU) Similarity(a, b string) float64 {
	ref := TokenizeCode(a)
	hyp := TokenizeCode(b)
	if len(ref) == 0 && len(hyp) == 0 {
		return 1.0
	}
	if len(ref) == 0 || len(hyp) == 0 {
		return 0.0
	}

	precisions := make([]float64, s.maxOrder)
	matched := make([]int, s.maxOrder)
	for n := 1; n <= s.maxOrder; n++ {
		num, den := clippedMatches(ref, hyp, n)
		matched[n-1] = num
		precisions[n-1] = float64(num) / float64(den)
	}
	if matched[0] == 0 {
		return 0.0
	}

	hypLen := len(hyp)
	incvnt := 1.0
	for i := range precisions {
		if matched[i] == 0 && hypLen > 1 {
			_, den := clippedMatches(ref, hyp, i+1)
			numerator := 1 / (math.Pow(2, incvnt) * s.k / math.Log(float64(hypLen)))
			precisions[i] = numerator / float64(den)
			incvnt++
		}
	}

	weight := 1.0 / float64(s.maxOrder)
	logSum := 0.0
	for _, p := range precisions {
		if p > 0 {
			logSum += weight * math.Log(p)
		}
	}

	return clamp01(brevityPenalty(len(ref), hypLen) * math.Exp(logSum))
}

// clippedMatches counts candidate n-grams also present in the reference,
// each clipped to its reference count. The denominator is never below 1.
func clippedMatches(ref, hyp []string, n int) (int, int) {
	refCounts := ngramCounts(ref, n)
	hypCounts := ngramCounts(hyp, n)

	num, den := 0, 0
	for gram, c := range hypCounts {
		den += c
		if r := refCounts[gram]; r > 0 {
			num += min(c, r)
		}
	}
	return num, max(den, 1)
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		key := tokens[i]
		for _, t := range tokens[i+1 : i+n] {
			key += "\x00" + t
		}
		counts[key]++
	}
	return counts
}

func brevityPenalty(refLen, hypLen int) float64 {
	if hypLen > refLen {
		return 1.0
	}
	if hypLen == 0 {
		return 0.0
	}
	return math.Exp(1 - float64(refLen)/float64(hypLen))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
