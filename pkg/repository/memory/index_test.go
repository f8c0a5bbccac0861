package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/repository/memory"
)

// bagEmbedder counts occurrences of a fixed vocabulary, one dimension per word
type bagEmbedder struct {
	vocabulary []string
	calls      int
	err        error
}

func (e *bagEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.vocabulary))
		for _, word := range strings.Fields(strings.ToLower(text)) {
			for j, v := range e.vocabulary {
				if strings.Trim(word, ".,:;") == v {
					vec[j]++
				}
			}
		}
		out[i] = vec
	}
	return out, nil
}

func newEmbedder() *bagEmbedder {
	return &bagEmbedder{vocabulary: []string{"discount", "checkout", "login", "password", "cart"}}
}

func chunk(seq int, text string) model.Chunk {
	return model.Chunk{Text: text, SequenceIndex: seq, SourceTag: "doc.txt"}
}

func TestNewIndexer(t *testing.T) {
	_, err := memory.NewIndexer(nil)
	gt.Value(t, err).NotNil()
}

func TestIndexBuild(t *testing.T) {
	t.Run("zero chunks is invalid input", func(t *testing.T) {
		emb := newEmbedder()
		indexer, err := memory.NewIndexer(emb)
		gt.NoError(t, err).Required()

		_, err = indexer.Build(t.Context(), nil)
		gt.Error(t, err).Is(model.ErrInvalidInput)
		gt.Number(t, emb.calls).Equal(0)
	})

	t.Run("embedding failure is upstream", func(t *testing.T) {
		boom := errors.New("endpoint down")
		indexer, err := memory.NewIndexer(&bagEmbedder{err: boom})
		gt.NoError(t, err).Required()

		_, err = indexer.Build(t.Context(), []model.Chunk{chunk(0, "a")})
		gt.Error(t, err).Is(boom)
		gt.Error(t, err).Is(model.ErrUpstreamFailure)
	})

	t.Run("each build is independent", func(t *testing.T) {
		indexer, err := memory.NewIndexer(newEmbedder())
		gt.NoError(t, err).Required()

		first, err := indexer.Build(t.Context(), []model.Chunk{chunk(0, "login with password"), chunk(1, "cart")})
		gt.NoError(t, err).Required()
		second, err := indexer.Build(t.Context(), []model.Chunk{chunk(0, "discount at checkout")})
		gt.NoError(t, err).Required()

		gt.Number(t, first.Len()).Equal(2)
		gt.Number(t, second.Len()).Equal(1)

		hits, err := second.Query(t.Context(), "login", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1).Required()
		gt.String(t, hits[0].Text).Equal("discount at checkout")
	})
}

func TestIndexQuery(t *testing.T) {
	indexer, err := memory.NewIndexer(newEmbedder())
	gt.NoError(t, err).Required()

	idx, err := indexer.Build(t.Context(), []model.Chunk{
		chunk(0, "Users can login with a password."),
		chunk(1, "A discount code applies at checkout."),
		chunk(2, "The cart shows items."),
		chunk(3, "Discount codes like SAVE15 reduce the checkout total."),
	})
	gt.NoError(t, err).Required()

	t.Run("orders by descending score", func(t *testing.T) {
		hits, err := idx.Query(t.Context(), "discount checkout", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(2).Required()
		gt.Bool(t, hits[0].Score >= hits[1].Score).True()
		for _, h := range hits {
			gt.Bool(t, h.SequenceIndex == 1 || h.SequenceIndex == 3).True()
		}
	})

	t.Run("ties break by sequence index", func(t *testing.T) {
		hits, err := idx.Query(t.Context(), "unrelated words", 4)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(4).Required()
		for i, h := range hits {
			gt.Number(t, h.SequenceIndex).Equal(i)
		}
	})

	t.Run("k larger than index returns everything", func(t *testing.T) {
		hits, err := idx.Query(t.Context(), "cart", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(4).Required()
		gt.Number(t, hits[0].SequenceIndex).Equal(2)
	})

	t.Run("non-positive k returns nothing", func(t *testing.T) {
		hits, err := idx.Query(t.Context(), "cart", 0)
		gt.NoError(t, err)
		gt.Array(t, hits).Length(0)
	})

	t.Run("source tag is preserved", func(t *testing.T) {
		hits, err := idx.Query(t.Context(), "login", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1).Required()
		gt.String(t, hits[0].SourceTag).Equal("doc.txt")
	})
}

func TestIndexDrop(t *testing.T) {
	indexer, err := memory.NewIndexer(newEmbedder())
	gt.NoError(t, err).Required()

	idx, err := indexer.Build(t.Context(), []model.Chunk{chunk(0, "cart")})
	gt.NoError(t, err).Required()

	gt.NoError(t, idx.Drop(t.Context()))
	gt.Number(t, idx.Len()).Equal(0)
}
