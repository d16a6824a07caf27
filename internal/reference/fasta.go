package reference

import (
	"errors"
	"fmt"
	"os"

	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
)

// ErrEmptyRegion is returned when a requested region holds no bases
var ErrEmptyRegion = errors.New("empty reference region")

// LoadFasta reads [start, stop) of contig from an indexed FASTA file.
// The index is expected next to the file (path + ".fai").
func LoadFasta(path, contig string, start, stop int) (w *Window, err error) {
	if stop <= start {
		return nil, fmt.Errorf("%w: %s:%d-%d", ErrEmptyRegion, contig, start, stop)
	}

	// the seeker panics on unreadable inputs, so check them first
	for _, p := range []string{path, path + ".fai"} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("open reference: %w", err)
		}
	}

	seeker := fasta.NewSeeker(path, "")
	defer func() {
		if closeErr := seeker.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close fasta: %w", closeErr)
		}
	}()

	bases, err := fasta.SeekByName(seeker, contig, start, stop)
	if err != nil {
		return nil, fmt.Errorf("seek %s:%d-%d: %w", contig, start, stop, err)
	}
	dna.AllToUpper(bases)

	return NewWindow(contig, start, dna.BasesToString(bases)), nil
}

// Span returns the smallest region covering every [start, stop) pair, padded
// by margin on both sides and clipped at zero
func Span(margin int, intervals ...[2]int) (int, int, bool) {
	if len(intervals) == 0 {
		return 0, 0, false
	}
	start, stop := intervals[0][0], intervals[0][1]
	for _, iv := range intervals[1:] {
		start = min(start, iv[0])
		stop = max(stop, iv[1])
	}
	start -= margin
	if start < 0 {
		start = 0
	}
	return start, stop + margin, true
}
