package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDimension   = 768
	DefaultBatchSize   = 32
	DefaultConcurrency = 4
)

var (
	ErrEmbeddingCount     = goerr.New("embedding count does not match input count")
	ErrEmbeddingDimension = goerr.New("embedding has unexpected dimension")
)

type client struct {
	llmClient   gollem.LLMClient
	dimension   int
	batchSize   int
	concurrency int
}

type Option func(*client)

func WithDimension(dim int) Option {
	return func(c *client) {
		c.dimension = dim
	}
}

// WithBatchSize sets how many texts are sent in one embedding request
func WithBatchSize(size int) Option {
	return func(c *client) {
		c.batchSize = size
	}
}

// WithConcurrency sets how many embedding requests may be in flight at once
func WithConcurrency(n int) Option {
	return func(c *client) {
		c.concurrency = n
	}
}

// New creates an Embedder backed by the embedding endpoint of llmClient
func New(llmClient gollem.LLMClient, opts ...Option) (interfaces.Embedder, error) {
	if llmClient == nil {
		return nil, goerr.New("llmClient is required")
	}

	c := &client{
		llmClient:   llmClient,
		dimension:   DefaultDimension,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", c.dimension))
	}
	if c.batchSize <= 0 {
		return nil, goerr.New("embedding batch size must be positive", goerr.V("batch_size", c.batchSize))
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}

	return c, nil
}

// Embed returns one vector per text, in input order
func (c *client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	if len(texts) == 0 {
		return result, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		eg.Go(func() error {
			vectors, err := c.embedBatch(ctx, texts[start:end])
			if err != nil {
				return goerr.Wrap(err, "failed to embed batch", goerr.V("offset", start))
			}
			copy(result[start:end], vectors)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.Wrap(ErrEmbeddingCount, "embedding endpoint returned wrong number of vectors",
			goerr.V("expected", len(texts)), goerr.V("actual", len(embeddings)))
	}

	vectors := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		if len(emb) != c.dimension {
			return nil, goerr.Wrap(ErrEmbeddingDimension, "embedding dimension mismatch",
				goerr.V("expected", c.dimension), goerr.V("actual", len(emb)))
		}
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
