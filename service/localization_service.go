package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/internal/analyzer"
	"github.com/ludo-technologies/hunkscope/internal/parser"
)

// LocalizedDefect is a defect whose hunks are ready for scoring
type LocalizedDefect struct {
	Defect   domain.Defect
	Hunks    []*analyzer.Hunk
	Warnings []domain.Warning
}

// sourceFile is one checkout file as seen by the hunks of a defect
type sourceFile struct {
	lines       []string
	index       *analyzer.TreeIndex
	localizer   *analyzer.HunkLocalizer
	pkg         string
	missing     bool
	parseFailed bool
}

// DefectLocalizer reads, parses and localizes the hunks of one defect at a
// time. It owns a tree-sitter parser and is not safe for concurrent use;
// create one per worker.
type DefectLocalizer struct {
	reader    *FileReaderImpl
	patches   *PatchReader
	parser    *parser.Parser
	scanLines int
}

// NewDefectLocalizer creates a localizer with its own parser
func NewDefectLocalizer(reader *FileReaderImpl, patches *PatchReader, scanLines int) *DefectLocalizer {
	if reader == nil {
		reader = NewFileReader()
	}
	if scanLines <= 0 {
		scanLines = analyzer.DefaultPackageScanLines
	}
	return &DefectLocalizer{
		reader:    reader,
		patches:   patches,
		parser:    parser.New(),
		scanLines: scanLines,
	}
}

// Localize resolves every hunk of the record against the defect's checkout.
// Missing files, parse failures and empty ranges degrade the affected hunks
// and are reported as warnings. Only cancellation and malformed ids fail.
func (l *DefectLocalizer) Localize(ctx context.Context, rawID string, rec domain.DefectRecord, workDir string) (*LocalizedDefect, error) {
	id, err := domain.ParseDefectID(rawID)
	if err != nil {
		return nil, err
	}

	out := &LocalizedDefect{
		Defect: domain.Defect{
			ID:           id.String(),
			Project:      id.Project,
			Number:       id.Number,
			CheckoutRoot: id.CheckoutRoot(workDir),
		},
	}

	locations := rec.OrderedHunks()
	patchHunks, err := l.patches.Read(id.String())
	if err != nil {
		slog.Warn("Ignoring unreadable patch", "defect", id.String(), "error", err)
		out.Warnings = append(out.Warnings, domain.NewWarning(err, -1))
		patchHunks = nil
	}
	if patchHunks != nil && len(patchHunks) != len(locations) {
		w := domain.NewPatchMismatchError(id.String(), len(patchHunks), len(locations))
		slog.Warn("Patch and dataset hunk counts differ", "defect", id.String(),
			"patch", len(patchHunks), "dataset", len(locations))
		out.Warnings = append(out.Warnings, domain.NewWarning(w, -1))
		patchHunks = nil
	}

	mapping := make(map[analyzer.LineSpan]string)
	for loc, method := range rec.MethodByLocation() {
		mapping[lineSpan(loc)] = method
	}
	spans := make([]analyzer.LineSpan, len(locations))
	for k, loc := range locations {
		spans[k] = lineSpan(loc)
	}
	complete := analyzer.CompleteMapping(mapping, spans)
	if len(mapping) > 0 && complete == nil {
		slog.Debug("Ignoring partial hunk mapping", "defect", id.String(),
			"mapped", len(mapping), "hunks", len(locations))
	}
	resolver := analyzer.NewMethodResolver(complete)

	files := make(map[string]*sourceFile)
	for k, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, ok := files[loc.File]
		if !ok {
			src = l.load(ctx, out, loc.File, k)
			files[loc.File] = src
		}

		dh := domain.Hunk{
			Index:        k,
			File:         loc.File,
			StartLine:    loc.StartLine,
			EndLine:      loc.EndLine,
			Package:      src.pkg,
			PathSegments: analyzer.PathPackageSegments(loc.File),
			Missing:      src.missing,
			ParseFailed:  src.parseFailed,
		}
		dh.PackageSegments = analyzer.SplitPackage(src.pkg)

		ah := &analyzer.Hunk{
			ID:              k,
			File:            loc.File,
			Index:           src.index,
			PathSegments:    dh.PathSegments,
			PackageSegments: dh.PackageSegments,
		}

		outcome := analyzer.LocalizedUnparsed
		if src.localizer != nil {
			ah.Root, outcome = src.localizer.Localize(loc.StartLine, loc.EndLine)
			if outcome == analyzer.LocalizedFallbackRoot {
				w := domain.NewEmptyLocalizationError(loc.File, loc.StartLine, loc.EndLine)
				slog.Warn("Empty localization", "defect", id.String(), "file", loc.File, "reason", w.Error())
				out.Warnings = append(out.Warnings, domain.NewWarning(w, k))
			}
		}
		dh.Localization = outcome.String()
		if ah.Root != nil {
			dh.SubtreeKind = string(ah.Root.Kind)
		}

		method, source := resolver.Resolve(analyzer.MethodTarget{
			Span:      spans[k],
			Root:      ah.Root,
			Localizer: src.localizer,
			Lines:     src.lines,
		})
		dh.Method, dh.MethodSource = method, string(source)
		ah.Method = method

		if k < len(patchHunks) {
			dh.Text = patchHunks[k].Text()
		} else {
			dh.Text = sliceLines(src.lines, loc.StartLine, loc.EndLine)
		}
		ah.Text = dh.Text

		out.Defect.Hunks = append(out.Defect.Hunks, dh)
		out.Hunks = append(out.Hunks, ah)
	}

	return out, nil
}

// load reads and parses one file of the defect. Failures are recorded as
// warnings against the first hunk that touched the file.
func (l *DefectLocalizer) load(ctx context.Context, out *LocalizedDefect, file string, hunk int) *sourceFile {
	src := &sourceFile{}

	path := l.reader.ResolveCheckoutFile(out.Defect.CheckoutRoot, file)
	if path == "" {
		src.missing = true
		err := domain.NewFileNotFoundError(file, nil)
		slog.Warn("Missing file", "defect", out.Defect.ID, "file", file, "reason", "not found in checkout")
		out.Warnings = append(out.Warnings, domain.NewWarning(err, hunk))
		return src
	}

	text, err := l.reader.ReadText(path)
	if err != nil {
		src.missing = true
		slog.Warn("Unreadable file", "defect", out.Defect.ID, "file", file, "reason", err.Error())
		out.Warnings = append(out.Warnings, domain.NewWarning(err, hunk))
		return src
	}
	src.lines = SplitLines(text)
	src.pkg = analyzer.ExtractPackage(src.lines, file, l.scanLines)

	tree, err := l.parser.Parse(ctx, []byte(text))
	if err != nil {
		src.parseFailed = true
		perr := domain.NewParseError(file, err)
		slog.Warn("Parse failure", "defect", out.Defect.ID, "file", file, "reason", err.Error())
		out.Warnings = append(out.Warnings, domain.NewWarning(perr, hunk))
		return src
	}
	src.index = analyzer.Annotate(tree)
	src.localizer = analyzer.NewHunkLocalizer(src.index)
	return src
}

func lineSpan(loc domain.HunkLocation) analyzer.LineSpan {
	return analyzer.LineSpan{File: loc.File, StartLine: loc.StartLine, EndLine: loc.EndLine}
}

// sliceLines joins the 1-based inclusive line range, clamped to the file
func sliceLines(lines []string, start, end int) string {
	if start > end {
		start, end = end, start
	}
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
