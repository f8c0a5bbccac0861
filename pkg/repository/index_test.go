package repository_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/repository/firestore"
	"github.com/secmon-lab/casewright/pkg/repository/memory"
	"github.com/secmon-lab/casewright/pkg/service/embedding"
)

// keywordEmbedder maps each vocabulary word to one dimension. The final
// dimension carries a small constant so no vector is all zeros, which cosine
// distance in Firestore rejects.
type keywordEmbedder struct {
	vocabulary []string
	dimension  int
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{
		vocabulary: []string{"discount", "checkout", "login", "password", "cart", "refund"},
		dimension:  embedding.DefaultDimension,
	}
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dimension)
		vec[e.dimension-1] = 0.1
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,:;!?")
			for j, v := range e.vocabulary {
				if word == v {
					vec[j]++
				}
			}
		}
		out[i] = vec
	}
	return out, nil
}

var corpus = []model.Chunk{
	{Text: "Users login with a password.", SourceTag: "auth.md", SequenceIndex: 0, Start: 0, End: 28},
	{Text: "A discount code is applied at checkout.", SourceTag: "promo.md", SequenceIndex: 1, Start: 20, End: 59},
	{Text: "The cart lists selected items.", SourceTag: "cart.md", SequenceIndex: 2, Start: 50, End: 80},
	{Text: "A refund is issued to the original card.", SourceTag: "refund.md", SequenceIndex: 3, Start: 70, End: 110},
}

func runIndexTest(t *testing.T, newIndexer func(t *testing.T) interfaces.Indexer) {
	t.Helper()

	t.Run("Build rejects zero chunks", func(t *testing.T) {
		indexer := newIndexer(t)
		_, err := indexer.Build(t.Context(), []model.Chunk{})
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("Query returns the most similar chunk first", func(t *testing.T) {
		indexer := newIndexer(t)
		idx, err := indexer.Build(t.Context(), corpus)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { gt.NoError(t, idx.Drop(context.Background())) })

		gt.Number(t, idx.Len()).Equal(len(corpus))

		hits, err := idx.Query(t.Context(), "discount at checkout", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(2).Required()
		gt.Number(t, hits[0].SequenceIndex).Equal(1)
		gt.String(t, hits[0].Text).Equal("A discount code is applied at checkout.")
		gt.String(t, hits[0].SourceTag).Equal("promo.md")
		gt.Number(t, hits[0].Start).Equal(20)
		gt.Number(t, hits[0].End).Equal(59)
		gt.Bool(t, hits[0].Score >= hits[1].Score).True()
	})

	t.Run("Query never returns more than k", func(t *testing.T) {
		indexer := newIndexer(t)
		idx, err := indexer.Build(t.Context(), corpus)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { gt.NoError(t, idx.Drop(context.Background())) })

		hits, err := idx.Query(t.Context(), "refund", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1).Required()
		gt.Number(t, hits[0].SequenceIndex).Equal(3)

		hits, err = idx.Query(t.Context(), "refund", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(len(corpus))
	})

	t.Run("Rebuild does not merge with earlier build", func(t *testing.T) {
		indexer := newIndexer(t)
		first, err := indexer.Build(t.Context(), corpus)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { gt.NoError(t, first.Drop(context.Background())) })

		second, err := indexer.Build(t.Context(), corpus[2:3])
		gt.NoError(t, err).Required()
		t.Cleanup(func() { gt.NoError(t, second.Drop(context.Background())) })

		hits, err := second.Query(t.Context(), "login password", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1).Required()
		gt.String(t, hits[0].SourceTag).Equal("cart.md")

		hits, err = first.Query(t.Context(), "login password", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1).Required()
		gt.String(t, hits[0].SourceTag).Equal("auth.md")
	})
}

func TestMemoryIndex(t *testing.T) {
	runIndexTest(t, func(t *testing.T) interfaces.Indexer {
		indexer, err := memory.NewIndexer(newKeywordEmbedder())
		gt.NoError(t, err).Required()
		return indexer
	})
}

func newFirestoreIndexer(t *testing.T) interfaces.Indexer {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	indexer, err := firestore.New(context.Background(), projectID, databaseID, newKeywordEmbedder(),
		firestore.WithCollectionPrefix("test_"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, indexer.Close())
	})
	return indexer
}

func TestFirestoreIndex(t *testing.T) {
	runIndexTest(t, newFirestoreIndexer)
}
