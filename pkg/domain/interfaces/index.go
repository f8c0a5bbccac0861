package interfaces

import (
	"context"

	"github.com/secmon-lab/casewright/pkg/domain/model"
)

// Embedder turns texts into vectors of a fixed dimension. The i-th vector
// belongs to the i-th input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer builds a searchable index from chunks. Every Build produces a new
// index that holds exactly the given chunks; it never merges with earlier builds.
type Indexer interface {
	Build(ctx context.Context, chunks []model.Chunk) (Index, error)
}

// Index is one built retrieval index
type Index interface {
	// Query returns at most k chunks ordered by descending score
	Query(ctx context.Context, text string, k int) ([]model.ScoredChunk, error)
	// Len returns the number of indexed chunks
	Len() int
	// Drop releases storage held by the index. The index must not be used afterwards.
	Drop(ctx context.Context) error
}
