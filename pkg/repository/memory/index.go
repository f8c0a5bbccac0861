package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
)

// Indexer builds in-process indexes searched by brute-force cosine similarity
type Indexer struct {
	embedder interfaces.Embedder
}

var _ interfaces.Indexer = &Indexer{}

func NewIndexer(embedder interfaces.Embedder) (*Indexer, error) {
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}
	return &Indexer{embedder: embedder}, nil
}

type entry struct {
	chunk     model.Chunk
	embedding []float32
}

type index struct {
	mu       sync.RWMutex
	embedder interfaces.Embedder
	entries  []entry
}

var _ interfaces.Index = &index{}

func (x *Indexer) Build(ctx context.Context, chunks []model.Chunk) (interfaces.Index, error) {
	if len(chunks) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "cannot build index without chunks")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err), "failed to embed chunks",
			goerr.V(model.ChunkCountKey, len(chunks)))
	}
	if len(vectors) != len(chunks) {
		return nil, goerr.Wrap(model.ErrUpstreamFailure, "embedding count mismatch",
			goerr.V(model.ChunkCountKey, len(chunks)), goerr.V("vectors", len(vectors)))
	}

	entries := make([]entry, len(chunks))
	for i := range chunks {
		entries[i] = entry{chunk: chunks[i], embedding: copyVector(vectors[i])}
	}

	return &index{embedder: x.embedder, entries: entries}, nil
}

func (x *index) Query(ctx context.Context, text string, k int) ([]model.ScoredChunk, error) {
	if k <= 0 {
		return []model.ScoredChunk{}, nil
	}

	vectors, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	if len(vectors) != 1 {
		return nil, goerr.New("embedding count mismatch for query", goerr.V("vectors", len(vectors)))
	}
	query := vectors[0]

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]model.ScoredChunk, 0, len(x.entries))
	for _, e := range x.entries {
		hits = append(hits, model.ScoredChunk{
			Chunk: e.chunk,
			Score: cosineSimilarity(query, e.embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].SequenceIndex < hits[j].SequenceIndex
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (x *index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *index) Drop(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
	return nil
}

func copyVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
