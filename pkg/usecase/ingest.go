package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/service/chunker"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

type IngestUseCase struct {
	indexer interfaces.Indexer
	chunker *chunker.Chunker
}

func NewIngestUseCase(indexer interfaces.Indexer, c *chunker.Chunker) *IngestUseCase {
	return &IngestUseCase{
		indexer: indexer,
		chunker: c,
	}
}

// IngestOutput is the knowledge base in effect after an ingest plus the
// names of documents that yielded no text
type IngestOutput struct {
	KnowledgeBase *KnowledgeBase
	Skipped       []string
	Rebuilt       bool
}

// Build decodes documents, chunks their concatenation and builds a new index.
// The prior knowledge base is returned unchanged when no chunk is produced
// or when the build fails.
func (uc *IngestUseCase) Build(ctx context.Context, prior *KnowledgeBase, docs []model.Document, auxiliaryContent string) (*IngestOutput, error) {
	logger := logging.From(ctx)

	var (
		texts   []string
		spans   []model.SourceSpan
		sources []string
		skipped []string
		offset  int
	)
	sepLen := utf8.RuneCountInString(model.DocumentSeparator)

	for _, doc := range docs {
		text := doc.Text()
		if strings.TrimSpace(text) == "" {
			logger.Warn("document yielded no text, skipping", "document", doc.Name)
			skipped = append(skipped, doc.Name)
			continue
		}

		if len(texts) > 0 {
			offset += sepLen
		}
		n := utf8.RuneCountInString(text)
		spans = append(spans, model.SourceSpan{Name: doc.Name, Start: offset, End: offset + n})
		offset += n

		texts = append(texts, text)
		sources = append(sources, doc.Name)
	}

	if len(texts) == 0 {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrInvalidInput, ErrNoValidDocuments),
			"please check the uploaded files", goerr.V(SkippedKey, skipped))
	}

	chunks := uc.chunker.Split(strings.Join(texts, model.DocumentSeparator))
	if len(chunks) == 0 {
		return &IngestOutput{KnowledgeBase: prior, Skipped: skipped}, nil
	}
	model.TagChunks(chunks, spans)

	index, err := uc.indexer.Build(ctx, chunks)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build index", goerr.V(model.ChunkCountKey, len(chunks)))
	}

	kb := &KnowledgeBase{
		ID:               uuid.Must(uuid.NewV7()).String(),
		Index:            index,
		AuxiliaryContent: strings.TrimSpace(auxiliaryContent),
		ChunkCount:       len(chunks),
		Sources:          sources,
		BuiltAt:          time.Now().UTC(),
	}

	logger.Info("knowledge base built",
		"knowledge_base_id", kb.ID,
		"chunks", kb.ChunkCount,
		"sources", len(sources),
		"skipped", len(skipped),
		"has_auxiliary_content", kb.HasAuxiliaryContent())

	return &IngestOutput{KnowledgeBase: kb, Skipped: skipped, Rebuilt: true}, nil
}
