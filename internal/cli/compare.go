package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vgmatch/internal/model"
	"github.com/ppiankov/vgmatch/internal/pipeline"
)

var (
	outJSON  string
	outMD    string
	timeout  time.Duration
	maxPaths int
	noCache  bool
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Compare two representations of one set of calls",
	Long: `Compare reads one comparison document and reports whether its two
representations describe the same diploid genotype.

A comparison document names a reference (inline sequence or indexed FASTA)
and two lists of loci:

  reference:
    contig: "1"
    sequence: GGTGAGGTTACCAGAGAGTTCAGG
  left:
    - {start: 2, alleles: [TGA, AGC], gt: 0/1}
  right:
    - {start: 2, alleles: [T, A], gt: 0/1}
    - {start: 4, alleles: [A, C], gt: 0/1}

Example:
  vgmatch compare mnp.yaml
  vgmatch compare mnp.yaml --json report.json --md report.md
  vgmatch compare mnp.yaml --max-paths 4096 --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	compareCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	compareCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "comparison timeout")
	compareCmd.Flags().IntVar(&maxPaths, "max-paths", 0, "haplotype path limit per representation (default from config)")
	compareCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the representation cache")
}

func runCompare(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-paths") {
		cfg.Limits.MaxPaths = maxPaths
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Concurrency.Workers = 1

	comparison, err := pipeline.NewLoader(0).LoadComparison(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	m := newMetrics(cfg)
	p := pipeline.NewPipeline(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
		pipeline.WithVersion(Version),
	)
	report := p.Run(ctx, file, []model.Comparison{*comparison})

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if err := writeReport(renderer, report, outJSON, outMD); err != nil {
		return err
	}
	renderer.RenderSummary(os.Stdout, report)

	if err := exportMetrics(cfg, m); err != nil {
		return err
	}
	return failures(report)
}
