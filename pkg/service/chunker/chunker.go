package chunker

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
)

const (
	// DefaultChunkSize is the window length in characters
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of characters shared by neighbouring chunks
	DefaultChunkOverlap = 200
)

var ErrInvalidWindow = goerr.New("invalid chunk window")

// Chunker splits text into fixed size windows that overlap by a fixed amount.
// Lengths are counted in runes so multi-byte text is never cut mid character.
type Chunker struct {
	size    int
	overlap int
}

// Option is a functional option for Chunker configuration
type Option func(*Chunker)

// WithChunkSize sets the window length
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between consecutive windows
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a Chunker. The overlap must satisfy 0 <= overlap < size.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 || c.overlap < 0 || c.overlap >= c.size {
		return nil, goerr.Wrap(ErrInvalidWindow, "overlap must be in [0, size)",
			goerr.V("size", c.size),
			goerr.V("overlap", c.overlap))
	}

	return c, nil
}

// Size returns the window length
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap length
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into chunks with stride size-overlap. The first chunk plus
// every later chunk without its first overlap runes reproduces text exactly.
// Empty text yields no chunks; text no longer than the window yields one.
func (c *Chunker) Split(text string) []model.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	chunks := make([]model.Chunk, 0, len(runes)/stride+1)

	for start := 0; ; start += stride {
		end := min(start+c.size, len(runes))
		chunks = append(chunks, model.Chunk{
			Text:          string(runes[start:end]),
			SequenceIndex: len(chunks),
			Start:         start,
			End:           end,
		})
		if end == len(runes) {
			break
		}
	}

	return chunks
}
