package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/vgmatch/internal/model"
)

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer; verbose summaries list every comparison
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder
	r.markdown(&b, report)
	return writeFile(path, []byte(b.String()))
}

func (r *Renderer) markdown(b *strings.Builder, report *model.Report) {
	s := report.Summary

	fmt.Fprintf(b, "# vgmatch report\n\n")
	fmt.Fprintf(b, "- Run: `%s`\n", report.RunID)
	if report.Source != "" {
		fmt.Fprintf(b, "- Source: `%s`\n", report.Source)
	}
	fmt.Fprintf(b, "- Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(b, "- Matched: %d of %d (%.1f%%)\n\n", s.Matched, s.Total, s.MatchRate*100)

	fmt.Fprintf(b, "| Comparison | Region | Status | Left paths | Right paths | Shared genotypes |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for _, c := range report.Comparisons {
		shared := strings.Join(c.SharedGenotypes, ", ")
		if c.Failed() {
			shared = c.Error
		}
		fmt.Fprintf(b, "| %s | %s | `%s` %s | %d | %d | %s |\n",
			c.Name, region(&c), c.Code, c.Status, c.Left.Paths, c.Right.Paths, escapePipes(shared))
	}

	mismatches := false
	for _, c := range report.Comparisons {
		if c.Matched || c.Failed() {
			continue
		}
		if !mismatches {
			fmt.Fprintf(b, "\n## Mismatches\n")
			mismatches = true
		}
		fmt.Fprintf(b, "\n### %s (%s)\n\n", c.Name, c.Status)
		fmt.Fprintf(b, "- Shared haplotypes: %s\n", orNone(c.SharedHaplotypes))
		fmt.Fprintf(b, "- Left genotypes: %s\n", orNone(c.Left.Genotypes))
		fmt.Fprintf(b, "- Right genotypes: %s\n", orNone(c.Right.Genotypes))
	}
}

// RenderSummary prints a short summary of the report to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	s := report.Summary

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  vgmatch: %d comparisons\n", s.Total)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")

	if r.verbose || s.Total == 1 {
		for _, c := range report.Comparisons {
			if c.Failed() {
				fmt.Fprintf(w, "  ✗ %s: %s\n", c.Name, c.Error)
				continue
			}
			fmt.Fprintf(w, "  %s %s %s  %s\n", c.Code, c.Name, region(&c), strings.Join(c.SharedGenotypes, " "))
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "  Matched:              %d\n", s.Matched)
	fmt.Fprintf(w, "  Haplotype mismatches: %d\n", s.HaplotypeMismatches)
	fmt.Fprintf(w, "  Zygosity mismatches:  %d\n", s.ZygosityMismatches)
	fmt.Fprintf(w, "  Errors:               %d\n", s.Errors)
	if s.Total-s.Errors > 0 {
		fmt.Fprintf(w, "  Paths per side:       median %.0f, max %.0f\n", s.Paths.Median, s.Paths.Max)
	}
	fmt.Fprintf(w, "\n")
}

func region(c *model.ComparisonReport) string {
	if c.Start == nil || c.Stop == nil {
		return c.Contig
	}
	if c.Contig == "" {
		return fmt.Sprintf("%d-%d", *c.Start, *c.Stop)
	}
	return fmt.Sprintf("%s:%d-%d", c.Contig, *c.Start, *c.Stop)
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
