package pipeline

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/ppiankov/vgmatch/internal/match"
	"github.com/ppiankov/vgmatch/internal/model"
)

// Summarize counts outcomes and describes path counts and timings of the
// evaluated comparisons
func Summarize(reports []model.ComparisonReport) model.Summary {
	s := model.Summary{Total: len(reports)}

	var paths, elapsed stats.Float64Data
	for _, r := range reports {
		if r.Failed() {
			s.Errors++
			continue
		}
		switch r.Status {
		case match.StatusMatch.String():
			s.Matched++
		case match.StatusHaplotypeMismatch.String():
			s.HaplotypeMismatches++
		case match.StatusZygosityMismatch.String():
			s.ZygosityMismatches++
		}
		paths = append(paths, float64(r.Left.Paths), float64(r.Right.Paths))
		elapsed = append(elapsed, float64(r.Elapsed)/float64(time.Millisecond))
	}

	if evaluated := s.Total - s.Errors; evaluated > 0 {
		s.MatchRate = float64(s.Matched) / float64(evaluated)
	}
	s.Paths = distribution(paths)
	s.ElapsedMillis = distribution(elapsed)
	return s
}

// distribution is the zero value for an empty sample
func distribution(data stats.Float64Data) model.Distribution {
	if len(data) == 0 {
		return model.Distribution{}
	}

	var d model.Distribution
	d.Min, _ = stats.Min(data)
	d.Max, _ = stats.Max(data)
	d.Mean, _ = stats.Mean(data)
	d.Median, _ = stats.Median(data)
	d.P95, _ = stats.Percentile(data, 95)
	return d
}
