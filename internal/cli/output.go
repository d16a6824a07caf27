package cli

import (
	"errors"
	"fmt"

	"github.com/ppiankov/vgmatch/internal/metrics"
	"github.com/ppiankov/vgmatch/internal/model"
	"github.com/ppiankov/vgmatch/internal/pipeline"
)

// ErrComparisonsFailed is returned when some comparison could not be evaluated
var ErrComparisonsFailed = errors.New("comparisons failed")

func writeReport(r *pipeline.Renderer, report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		logger.Info("wrote report", "format", "json", "path", jsonPath)
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		logger.Info("wrote report", "format", "markdown", "path", mdPath)
	}
	return nil
}

// newMetrics returns nil when no textfile export is configured
func newMetrics(cfg *model.Config) *metrics.Metrics {
	if cfg.Metrics.File == "" {
		return nil
	}
	return metrics.New()
}

func exportMetrics(cfg *model.Config, m *metrics.Metrics) error {
	if m == nil {
		return nil
	}
	if err := m.WriteTextfile(cfg.Metrics.File); err != nil {
		return err
	}
	logger.Debug("wrote metrics", "path", cfg.Metrics.File)
	return nil
}

func failures(report *model.Report) error {
	if report.Summary.Errors == 0 {
		return nil
	}
	for _, c := range report.Comparisons {
		if c.Failed() {
			return fmt.Errorf("%w: %d of %d, first %s: %s",
				ErrComparisonsFailed, report.Summary.Errors, report.Summary.Total, c.Name, c.Error)
		}
	}
	return ErrComparisonsFailed
}
