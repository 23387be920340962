package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ludo-technologies/hunkscope/domain"
)

// Column headers of the result tables
var (
	divergenceHeader = []string{"defect_id", "hunk_count", "divergence_score"}
	pairwiseHeader   = []string{"defect_id", "hunk_i", "hunk_j", "lexical_distance",
		"syntactic_distance", "path_distance", "normalized_pair_score"}
	proximityHeader = []string{"defect_id", "proximity_class"}
	summaryHeader   = []string{"proximity_class", "defects", "mean_divergence", "stddev_divergence"}
)

// AnalyzeFormatter renders divergence and proximity results
type AnalyzeFormatter struct{}

// NewAnalyzeFormatter creates a new formatter
func NewAnalyzeFormatter() *AnalyzeFormatter {
	return &AnalyzeFormatter{}
}

// Tables converts the parts of the response that are present into tables,
// in the order divergence, pairwise, proximity, summary
func (f *AnalyzeFormatter) Tables(response *domain.AnalyzeResponse, includeSummary bool) []domain.Table {
	var tables []domain.Table

	if response.Divergence != nil {
		div := domain.Table{Name: domain.TableDivergence, Header: divergenceHeader}
		pairs := domain.Table{Name: domain.TablePairwise, Header: pairwiseHeader}
		for _, d := range response.Divergence.Divergences() {
			div.Rows = append(div.Rows, []string{d.DefectID, strconv.Itoa(d.HunkCount), FormatScore(d.Score)})
			for _, p := range d.Pairs {
				pairs.Rows = append(pairs.Rows, []string{
					d.DefectID,
					strconv.Itoa(p.I),
					strconv.Itoa(p.J),
					FormatScore(p.Lexical),
					FormatScore(p.Syntactic),
					FormatScore(p.Path),
					FormatScore(p.Normalized),
				})
			}
		}
		tables = append(tables, div, pairs)
	}

	if response.Proximity != nil {
		prox := domain.Table{Name: domain.TableProximity, Header: proximityHeader}
		for _, p := range response.Proximity.Defects {
			prox.Rows = append(prox.Rows, []string{p.DefectID, string(p.Class)})
		}
		tables = append(tables, prox)
	}

	if includeSummary && len(response.Summary) > 0 {
		sum := domain.Table{Name: domain.TableSummary, Header: summaryHeader}
		for _, s := range response.Summary {
			sum.Rows = append(sum.Rows, []string{
				string(s.Class),
				strconv.Itoa(s.Defects),
				FormatScore(s.MeanDivergence),
				FormatScore(s.StdDevDivergence),
			})
		}
		tables = append(tables, sum)
	}

	return tables
}

// Write writes every table to the writer in the given format
func (f *AnalyzeFormatter) Write(response *domain.AnalyzeResponse, format domain.OutputFormat, includeSummary bool, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		return f.writeText(response, includeSummary, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, f.document(response, includeSummary))
	case domain.OutputFormatYAML:
		return WriteYAML(writer, f.document(response, includeSummary))
	case domain.OutputFormatCSV:
		for i, t := range f.Tables(response, includeSummary) {
			if i > 0 {
				if _, err := io.WriteString(writer, "\n"); err != nil {
					return domain.NewOutputError("failed to write output", err)
				}
			}
			if err := writeCSVTable(writer, t); err != nil {
				return err
			}
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteDir writes the results into dir. CSV gets one file per table; the
// other formats get a single report file.
func (f *AnalyzeFormatter) WriteDir(response *domain.AnalyzeResponse, format domain.OutputFormat, includeSummary bool, dir string) ([]string, error) {
	if !format.IsValid() {
		return nil, domain.NewUnsupportedFormatError(string(format))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.NewOutputError(fmt.Sprintf("failed to create output directory: %s", dir), err)
	}

	if format != domain.OutputFormatCSV {
		path := filepath.Join(dir, "report"+format.Extension())
		var buf bytes.Buffer
		if err := f.Write(response, format, includeSummary, &buf); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
		}
		return []string{path}, nil
	}

	var paths []string
	for _, t := range f.Tables(response, includeSummary) {
		path := filepath.Join(dir, t.Name+format.Extension())
		var buf bytes.Buffer
		if err := writeCSVTable(&buf, t); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeText renders a title, run metadata and one table per section
func (f *AnalyzeFormatter) writeText(response *domain.AnalyzeResponse, includeSummary bool, writer io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(FormatMainHeader("Hunk Divergence Report"))

	if response.Divergence != nil {
		buf.WriteString(FormatLabel("Policy", response.Divergence.Policy))
		buf.WriteString(FormatLabel("Defects scored", len(response.Divergence.Results)))
		if n := len(response.Divergence.Skipped); n > 0 {
			buf.WriteString(FormatLabel("Defects skipped", n))
		}
	}
	if response.Proximity != nil {
		how := "derived"
		if !response.Proximity.CutoffDerived {
			how = "override"
		}
		buf.WriteString(FormatLabel("Median package depth", response.Proximity.MedianDepth))
		buf.WriteString(FormatLabel("Sprawl cutoff", fmt.Sprintf("%d (%s)", response.Proximity.Cutoff, how)))
	}
	buf.WriteString("\n")

	for _, t := range f.Tables(response, includeSummary) {
		buf.WriteString(FormatSectionHeader(t.Name))
		table := tablewriter.NewWriter(&buf)
		table.SetHeader(t.Header)
		table.SetAutoFormatHeaders(false)
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.AppendBulk(t.Rows)
		table.Render()
		buf.WriteString("\n")
	}

	if response.Divergence != nil {
		for _, s := range response.Divergence.Skipped {
			buf.WriteString(FormatLabel("skipped "+s.DefectID, s.Reason))
		}
	}

	if _, err := writer.Write(buf.Bytes()); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

func writeCSVTable(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return domain.NewOutputError("failed to write CSV rows", err)
	}
	return nil
}

// reportDocument is the JSON and YAML shape of a report
type reportDocument struct {
	Version     string `json:"version" yaml:"version"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64  `json:"duration_ms" yaml:"duration_ms"`

	Policy        domain.DivergencePolicy     `json:"policy,omitempty" yaml:"policy,omitempty"`
	Divergence    []divergenceRow             `json:"divergence,omitempty" yaml:"divergence,omitempty"`
	Pairwise      []pairwiseRow               `json:"pairwise,omitempty" yaml:"pairwise,omitempty"`
	Skipped       []domain.SkippedDefect      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Cutoff        *int                        `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`
	CutoffDerived bool                        `json:"cutoff_derived,omitempty" yaml:"cutoff_derived,omitempty"`
	Proximity     []domain.DefectProximity    `json:"proximity,omitempty" yaml:"proximity,omitempty"`
	Summary       []domain.ClassSummary       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Warnings      map[string][]domain.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type divergenceRow struct {
	DefectID  string  `json:"defect_id" yaml:"defect_id"`
	HunkCount int     `json:"hunk_count" yaml:"hunk_count"`
	Score     float64 `json:"divergence_score" yaml:"divergence_score"`
}

type pairwiseRow struct {
	DefectID string `json:"defect_id" yaml:"defect_id"`

	domain.PairwiseScore `yaml:",inline"`
}

func (f *AnalyzeFormatter) document(response *domain.AnalyzeResponse, includeSummary bool) reportDocument {
	doc := reportDocument{
		Version:     response.Version,
		GeneratedAt: response.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationMs:  response.Duration,
	}

	if response.Divergence != nil {
		doc.Policy = response.Divergence.Policy
		doc.Skipped = response.Divergence.Skipped
		for _, r := range response.Divergence.Results {
			if len(r.Warnings) > 0 {
				if doc.Warnings == nil {
					doc.Warnings = make(map[string][]domain.Warning)
				}
				doc.Warnings[r.Defect.ID] = r.Warnings
			}
		}
		for _, d := range response.Divergence.Divergences() {
			doc.Divergence = append(doc.Divergence, divergenceRow{DefectID: d.DefectID, HunkCount: d.HunkCount, Score: d.Score})
			for _, p := range d.Pairs {
				doc.Pairwise = append(doc.Pairwise, pairwiseRow{DefectID: d.DefectID, PairwiseScore: p})
			}
		}
	}
	if response.Proximity != nil {
		cutoff := response.Proximity.Cutoff
		doc.Cutoff = &cutoff
		doc.CutoffDerived = response.Proximity.CutoffDerived
		doc.Proximity = response.Proximity.Defects
	}
	if includeSummary {
		doc.Summary = response.Summary
	}
	return doc
}
