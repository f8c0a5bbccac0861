package retriever

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
)

// DefaultTopK is the retrieval depth used by both generation rounds
const DefaultTopK = 5

type Retriever struct {
	topK int
}

type Option func(*Retriever)

func WithTopK(k int) Option {
	return func(r *Retriever) {
		r.topK = k
	}
}

func New(opts ...Option) (*Retriever, error) {
	r := &Retriever{topK: DefaultTopK}
	for _, opt := range opts {
		opt(r)
	}
	if r.topK <= 0 {
		return nil, goerr.New("top-k must be positive", goerr.V("top_k", r.topK))
	}
	return r, nil
}

func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns the top-k chunks of index most similar to query.
// A nil index means no knowledge base has been built yet, which is reported
// as ErrNotInitialized rather than as an empty result.
func (r *Retriever) Retrieve(ctx context.Context, index interfaces.Index, query string) ([]model.ScoredChunk, error) {
	if index == nil {
		return nil, goerr.Wrap(model.ErrNotInitialized, "knowledge base has not been built")
	}

	hits, err := index.Query(ctx, query, r.topK)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err), "failed to query index",
			goerr.V("top_k", r.topK))
	}
	if len(hits) > r.topK {
		hits = hits[:r.topK]
	}
	return hits, nil
}
