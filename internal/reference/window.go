// Package reference provides reference sequences addressable by coordinate range.
package reference

// Window is a stretch of reference sequence starting at Offset
type Window struct {
	Contig string
	Offset int
	Seq    string
}

// NewWindow creates a window over seq whose first base sits at offset
func NewWindow(contig string, offset int, seq string) *Window {
	return &Window{Contig: contig, Offset: offset, Seq: seq}
}

// Slice returns the bases in [start, stop). Ends outside the window are clamped.
func (w *Window) Slice(start, stop int) string {
	s, e := w.clamp(start-w.Offset), w.clamp(stop-w.Offset)
	if s >= e {
		return ""
	}
	return w.Seq[s:e]
}

// Start is the first global coordinate covered by the window
func (w *Window) Start() int {
	return w.Offset
}

// Stop is the global coordinate just past the window
func (w *Window) Stop() int {
	return w.Offset + len(w.Seq)
}

// Covers reports whether [start, stop) lies inside the window
func (w *Window) Covers(start, stop int) bool {
	return start >= w.Start() && stop <= w.Stop() && start <= stop
}

func (w *Window) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > len(w.Seq) {
		return len(w.Seq)
	}
	return i
}
