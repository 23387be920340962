package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/hunkscope/internal/parser"
)

// UnknownMethod is the identity given to hunks whose method cannot be resolved
const UnknownMethod = "<unknown>"

// MethodSource tells which resolution step produced a method identity
type MethodSource string

const (
	MethodFromMapping   MethodSource = "mapping"
	MethodFromTree      MethodSource = "tree"
	MethodFromSignature MethodSource = "signature"
	MethodUnresolved    MethodSource = "unresolved"
)

// methodSignature matches "<type> name(" and captures both; leading
// modifiers are skipped by the leftmost-match search
var methodSignature = regexp.MustCompile(`(?:^|\s)([\w<>\[\]?.,]+)\s+(\w+)\s*\(`)

// notMethodTypes and notMethodNames reject statements the signature pattern
// also matches, like "} else if (" or "return compute("
var (
	notMethodTypes = map[string]bool{
		"else":   true,
		"return": true,
		"new":    true,
		"throw":  true,
		"case":   true,
		"yield":  true,
		"assert": true,
		"record": true,
	}
	notMethodNames = map[string]bool{
		"if":           true,
		"for":          true,
		"while":        true,
		"switch":       true,
		"catch":        true,
		"synchronized": true,
		"try":          true,
	}
)

// LineSpan identifies a hunk by file and line range
type LineSpan struct {
	File      string
	StartLine int
	EndLine   int
}

// MethodResolver assigns a method identity to a hunk. The first step that
// succeeds wins: the explicit mapping, the enclosing declaration in the
// parsed tree, a signature scan of the enclosing brace block.
type MethodResolver struct {
	mapping map[LineSpan]string
}

// NewMethodResolver creates a resolver backed by an explicit span -> method
// mapping, which may be nil
func NewMethodResolver(mapping map[LineSpan]string) *MethodResolver {
	if mapping == nil {
		mapping = make(map[LineSpan]string)
	}
	return &MethodResolver{mapping: mapping}
}

// CompleteMapping returns mapping when it names a method for every span and
// nil otherwise. Mapping ids and declared method names are different
// namespaces, so a defect uses one or the other for all of its hunks.
func CompleteMapping(mapping map[LineSpan]string, spans []LineSpan) map[LineSpan]string {
	if len(mapping) == 0 || len(spans) == 0 {
		return nil
	}
	for _, span := range spans {
		if mapping[span] == "" {
			return nil
		}
	}
	return mapping
}

// MethodTarget is everything the resolver may consult for one hunk
type MethodTarget struct {
	Span      LineSpan
	Root      *parser.Node
	Localizer *HunkLocalizer
	Lines     []string
}

// Resolve returns the method identity of the target and the step that
// produced it
func (r *MethodResolver) Resolve(target MethodTarget) (string, MethodSource) {
	if name, ok := r.mapping[target.Span]; ok && name != "" {
		return name, MethodFromMapping
	}

	if target.Localizer != nil && target.Root != nil {
		if callable := target.Localizer.EnclosingCallable(target.Root); callable != nil {
			if name := callable.Name(); name != "" {
				return name, MethodFromTree
			}
		}
	}

	if name := ScanEnclosingMethod(target.Lines, target.Span.StartLine, target.Span.EndLine); name != "" {
		return name, MethodFromSignature
	}

	return UnknownMethod, MethodUnresolved
}

// ScanEnclosingMethod finds the method name declared at the opening of the
// innermost brace block that looks like a method body and encloses the
// 1-based line range. Returns "" when none is found.
func ScanEnclosingMethod(lines []string, start, end int) string {
	if len(lines) == 0 {
		return ""
	}
	lo, hi := orderedRange(start, end)
	// work with 0-based indices
	lo, hi = lo-1, hi-1

	for _, block := range enclosingBlocks(lines, lo, hi) {
		if name := signatureBefore(lines, block); name != "" {
			return name
		}
	}
	return ""
}

// braceBlock is a matched { } pair, both ends 0-based
type braceBlock struct {
	openLine, openCol   int
	closeLine, closeCol int
}

// enclosingBlocks returns the blocks enclosing lines [lo, hi], innermost
// first
func enclosingBlocks(lines []string, lo, hi int) []braceBlock {
	var blocks []braceBlock
	for _, b := range matchBraces(lines) {
		if b.openLine <= lo && b.closeLine >= hi {
			blocks = append(blocks, b)
		}
	}

	// innermost first: later opening position is deeper
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && opensAfter(blocks[j], blocks[j-1]); j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
	return blocks
}

func opensAfter(a, b braceBlock) bool {
	if a.openLine != b.openLine {
		return a.openLine > b.openLine
	}
	return a.openCol > b.openCol
}

// matchBraces pairs braces outside comments and string or char literals
func matchBraces(lines []string) []braceBlock {
	type open struct{ line, col int }
	var (
		stack       []open
		blocks      []braceBlock
		inBlockCmt  bool
		inTextBlock bool
	)

	for ln, line := range lines {
		for col := 0; col < len(line); col++ {
			c := line[col]
			switch {
			case inBlockCmt:
				if c == '*' && col+1 < len(line) && line[col+1] == '/' {
					inBlockCmt = false
					col++
				}
			case inTextBlock:
				if strings.HasPrefix(line[col:], `"""`) {
					inTextBlock = false
					col += 2
				}
			case c == '/' && col+1 < len(line) && line[col+1] == '/':
				col = len(line)
			case c == '/' && col+1 < len(line) && line[col+1] == '*':
				inBlockCmt = true
				col++
			case strings.HasPrefix(line[col:], `"""`):
				inTextBlock = true
				col += 2
			case c == '"' || c == '\'':
				col = skipLiteral(line, col, c)
			case c == '{':
				stack = append(stack, open{ln, col})
			case c == '}':
				if len(stack) == 0 {
					continue
				}
				o := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				blocks = append(blocks, braceBlock{o.line, o.col, ln, col})
			}
		}
	}
	return blocks
}

// skipLiteral returns the index of the closing quote of the literal opened at
// col, or the last index of the line when it is unterminated
func skipLiteral(line string, col int, quote byte) int {
	for i := col + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(line) - 1
}

// signatureBefore looks for a method signature on the block's opening line
// and, for signatures split across lines, on the few lines above it
func signatureBefore(lines []string, b braceBlock) string {
	const lookback = 3

	header := lines[b.openLine][:b.openCol]
	for i := 0; i <= lookback; i++ {
		if m := methodSignature.FindStringSubmatch(strings.TrimSpace(header)); m != nil {
			if notMethodTypes[m[1]] || notMethodNames[m[2]] {
				return ""
			}
			return m[2]
		}
		prev := b.openLine - i - 1
		if prev < 0 {
			break
		}
		trimmed := strings.TrimSpace(lines[prev])
		if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") || strings.HasSuffix(trimmed, "{") {
			break
		}
		header = lines[prev] + " " + header
	}
	return ""
}
