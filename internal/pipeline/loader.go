package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vgmatch/internal/model"
)

// ErrDocumentTooLarge is returned for input documents over the loader's size limit
var ErrDocumentTooLarge = errors.New("document too large")

// DefaultMaxBytes bounds the size of an input document
const DefaultMaxBytes = 16 << 20

// Loader reads comparison documents from YAML files
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader; a non-positive maxBytes uses DefaultMaxBytes
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// LoadComparison reads a document holding a single comparison
func (l *Loader) LoadComparison(path string) (*model.Comparison, error) {
	var c model.Comparison
	if err := l.decode(path, &c); err != nil {
		return nil, err
	}
	if c.Name == "" {
		c.Name = documentName(path)
	}
	resolvePaths(filepath.Dir(path), c.Reference)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadBatch reads a batch document. Comparisons without a reference use the
// batch-level one; unnamed comparisons are numbered.
func (l *Loader) LoadBatch(path string) (*model.Batch, error) {
	var b model.Batch
	if err := l.decode(path, &b); err != nil {
		return nil, err
	}
	if len(b.Comparisons) == 0 {
		return nil, fmt.Errorf("%w: %s has no comparisons", model.ErrInvalidDocument, path)
	}

	dir := filepath.Dir(path)
	resolvePaths(dir, b.Reference)

	for i := range b.Comparisons {
		c := &b.Comparisons[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("%s-%d", documentName(path), i+1)
		}
		if c.Reference == nil && b.Reference != nil {
			ref := *b.Reference
			c.Reference = &ref
		} else {
			resolvePaths(dir, c.Reference)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("comparison %d: %w", i+1, err)
		}
	}
	return &b, nil
}

func (l *Loader) decode(path string, out any) error {
	data, err := l.read(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s is empty", model.ErrInvalidDocument, path)
		}
		return fmt.Errorf("%w: %s: %v", model.ErrInvalidDocument, path, err)
	}
	return nil
}

// read returns the file contents, refusing anything over the size limit
func (l *Loader) read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrDocumentTooLarge, path, l.maxBytes)
	}
	return data, nil
}

// resolvePaths makes a relative FASTA path relative to the document directory
func resolvePaths(dir string, ref *model.ReferenceSpec) {
	if ref == nil || ref.Fasta == "" || filepath.IsAbs(ref.Fasta) {
		return
	}
	ref.Fasta = filepath.Join(dir, ref.Fasta)
}

// documentName derives a name from the file name without its extension
func documentName(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
