package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	chunksCollection = "chunks"
	embeddingField   = "Embedding"
	distanceField    = "Distance"
)

// ChunksCollectionID is the collection ID that carries the vector index
const ChunksCollectionID = chunksCollection

// EmbeddingField is the document field holding the chunk vector
const EmbeddingField = embeddingField

type buildDoc struct {
	ChunkCount int       `firestore:"ChunkCount"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
}

// chunkDoc is the Firestore representation of model.Chunk. Distance is only
// populated on documents returned by a nearest-neighbour query.
type chunkDoc struct {
	Text          string             `firestore:"Text"`
	SourceTag     string             `firestore:"SourceTag"`
	SequenceIndex int                `firestore:"SequenceIndex"`
	Start         int                `firestore:"Start"`
	End           int                `firestore:"End"`
	Embedding     firestore.Vector32 `firestore:"Embedding"`
	Distance      float64            `firestore:"Distance,omitempty"`
}

func toChunkDoc(c model.Chunk, embedding []float32) *chunkDoc {
	return &chunkDoc{
		Text:          c.Text,
		SourceTag:     c.SourceTag,
		SequenceIndex: c.SequenceIndex,
		Start:         c.Start,
		End:           c.End,
		Embedding:     firestore.Vector32(embedding),
	}
}

func fromChunkDoc(d *chunkDoc) model.ScoredChunk {
	return model.ScoredChunk{
		Chunk: model.Chunk{
			Text:          d.Text,
			SourceTag:     d.SourceTag,
			SequenceIndex: d.SequenceIndex,
			Start:         d.Start,
			End:           d.End,
		},
		// Cosine distance is 1 - cosine similarity
		Score: 1 - d.Distance,
	}
}

type index struct {
	client   *firestore.Client
	embedder interfaces.Embedder
	buildRef *firestore.DocumentRef
	count    int
}

var _ interfaces.Index = &index{}

// Build writes chunks and their embeddings to a fresh subcollection
// <prefix>indexes/{buildID}/chunks. A failed build deletes what it wrote.
func (f *Firestore) Build(ctx context.Context, chunks []model.Chunk) (interfaces.Index, error) {
	if len(chunks) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "cannot build index without chunks")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := f.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err), "failed to embed chunks",
			goerr.V(model.ChunkCountKey, len(chunks)))
	}
	if len(vectors) != len(chunks) {
		return nil, goerr.Wrap(model.ErrUpstreamFailure, "embedding count mismatch",
			goerr.V(model.ChunkCountKey, len(chunks)), goerr.V("vectors", len(vectors)))
	}

	buildID := uuid.Must(uuid.NewV7()).String()
	idx := &index{
		client:   f.client,
		embedder: f.embedder,
		buildRef: f.indexesCollection().Doc(buildID),
		count:    len(chunks),
	}

	if err := idx.write(ctx, chunks, vectors); err != nil {
		if dropErr := idx.Drop(ctx); dropErr != nil {
			logging.From(ctx).Warn("failed to clean up partial index build",
				"build_id", buildID, "error", dropErr)
		}
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err), "failed to write index",
			goerr.V(model.BuildIDKey, buildID))
	}

	logging.From(ctx).Debug("firestore index built", "build_id", buildID, "chunks", len(chunks))
	return idx, nil
}

func (x *index) chunks() *firestore.CollectionRef {
	return x.buildRef.Collection(chunksCollection)
}

func (x *index) write(ctx context.Context, chunks []model.Chunk, vectors [][]float32) error {
	if _, err := x.buildRef.Set(ctx, &buildDoc{ChunkCount: len(chunks), CreatedAt: time.Now().UTC()}); err != nil {
		return goerr.Wrap(err, "failed to create build document")
	}

	bulkWriter := x.client.BulkWriter(ctx)
	jobs := make([]bulkJob, 0, len(chunks))
	for i, c := range chunks {
		docRef := x.chunks().Doc(fmt.Sprintf("%08d", c.SequenceIndex))
		job, err := bulkWriter.Set(docRef, toChunkDoc(c, vectors[i]))
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to add Set operation to bulk writer",
				goerr.V("sequence_index", c.SequenceIndex))
		}
		jobs = append(jobs, job)
	}

	// End flushes and waits for all operations to complete
	bulkWriter.End()

	if i, err := awaitJobs(jobs, false); err != nil {
		return goerr.Wrap(err, "failed to write chunk", goerr.V("sequence_index", chunks[i].SequenceIndex))
	}
	return nil
}

// bulkJob is the part of *firestore.BulkWriterJob used after End
type bulkJob interface {
	Results() (*firestore.WriteResult, error)
}

// awaitJobs returns the position and error of the first failed job. With
// ignoreNotFound a delete of an already missing document is not a failure.
func awaitJobs(jobs []bulkJob, ignoreNotFound bool) (int, error) {
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			if ignoreNotFound && status.Code(err) == codes.NotFound {
				continue
			}
			return i, err
		}
	}
	return -1, nil
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

	vq := x.chunks().FindNearest(embeddingField, firestore.Vector32(vectors[0]), k,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	hits := make([]model.ScoredChunk, 0, k)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results", goerr.V(model.BuildIDKey, x.buildRef.ID))
		}

		var d chunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk", goerr.V("doc_id", doc.Ref.ID))
		}
		hits = append(hits, fromChunkDoc(&d))
	}

	return hits, nil
}

func (x *index) Len() int {
	return x.count
}

// Drop deletes every chunk of the build and the build document itself
func (x *index) Drop(ctx context.Context) error {
	iter := x.chunks().Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate chunks for deletion", goerr.V(model.BuildIDKey, x.buildRef.ID))
		}
		refs = append(refs, doc.Ref)
	}

	if len(refs) > 0 {
		bulkWriter := x.client.BulkWriter(ctx)
		jobs := make([]bulkJob, 0, len(refs))
		for _, ref := range refs {
			job, err := bulkWriter.Delete(ref)
			if err != nil {
				bulkWriter.End()
				return goerr.Wrap(err, "failed to add Delete operation to bulk writer")
			}
			jobs = append(jobs, job)
		}
		bulkWriter.End()

		// The build document stays so a later Drop can find the remaining chunks
		if i, err := awaitJobs(jobs, true); err != nil {
			return goerr.Wrap(err, "failed to delete chunk",
				goerr.V(model.BuildIDKey, x.buildRef.ID),
				goerr.V("chunk_id", refs[i].ID))
		}
	}

	if _, err := x.buildRef.Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to delete build document", goerr.V(model.BuildIDKey, x.buildRef.ID))
	}

	return nil
}
