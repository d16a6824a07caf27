package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vgmatch/internal/pipeline"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	writeMD      bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run many comparisons from one document in parallel",
	Long: `Batch runs every comparison of a batch document on a worker pool:
- Comparisons without a reference use the document's shared reference
- Each comparison expands both representations concurrently
- Representation graphs are cached across runs unless --no-cache is given
- One JSON report (and optionally Markdown) is written for the whole batch

Example:
  vgmatch batch calls.yaml
  vgmatch batch calls.yaml --concurrency 8 --output-dir ./reports --md
  vgmatch batch calls.yaml --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for reports (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 0, "total timeout for the batch (default from config)")
	batchCmd.Flags().BoolVar(&writeMD, "md", false, "also write a Markdown report")
	batchCmd.Flags().IntVar(&maxPaths, "max-paths", 0, "haplotype path limit per representation (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the representation cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if batchTimeout > 0 {
		cfg.Concurrency.Timeout = batchTimeout
	}
	if writeMD {
		cfg.Output.Markdown = true
	}
	if cmd.Flags().Changed("max-paths") {
		cfg.Limits.MaxPaths = maxPaths
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	batch, err := pipeline.NewLoader(0).LoadBatch(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  vgmatch batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Comparisons:  %d\n", len(batch.Comparisons))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	ctx := context.Background()
	if cfg.Concurrency.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Concurrency.Timeout)
		defer cancel()
	}

	m := newMetrics(cfg)
	p := pipeline.NewPipeline(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
		pipeline.WithVersion(Version),
	)
	report := p.Run(ctx, file, batch.Comparisons)

	base := filepath.Join(cfg.Output.Dir, reportName(file, report.RunID))
	mdPath := ""
	if cfg.Output.Markdown {
		mdPath = base + ".md"
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if err := writeReport(renderer, report, base+".json", mdPath); err != nil {
		return err
	}
	renderer.RenderSummary(os.Stdout, report)
	fmt.Fprintf(os.Stderr, "  Report:    %s.json\n\n", base)

	if err := exportMetrics(cfg, m); err != nil {
		return err
	}
	return failures(report)
}

// reportName combines the document name with the start of the run ID
func reportName(source, runID string) string {
	name := filepath.Base(source)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return name + "-" + runID
}
