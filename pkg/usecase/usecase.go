package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/service/chunker"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
	"github.com/secmon-lab/casewright/pkg/service/retriever"
)

type UseCases struct {
	chunker   *chunker.Chunker
	retriever *retriever.Retriever
	recovery  *recovery.Engine
	validator *model.TestCaseValidator

	Ingest   *IngestUseCase
	TestCase *TestCaseUseCase
	Script   *ScriptUseCase
}

type Option func(*UseCases)

func WithChunker(c *chunker.Chunker) Option {
	return func(uc *UseCases) {
		uc.chunker = c
	}
}

func WithRetriever(r *retriever.Retriever) Option {
	return func(uc *UseCases) {
		uc.retriever = r
	}
}

func WithRecovery(e *recovery.Engine) Option {
	return func(uc *UseCases) {
		uc.recovery = e
	}
}

// New wires the ingest, test case and script use cases around one indexer
// and one generator. Components not given by options use their defaults.
func New(indexer interfaces.Indexer, generator interfaces.Generator, opts ...Option) (*UseCases, error) {
	if indexer == nil {
		return nil, goerr.New("indexer is required")
	}
	if generator == nil {
		return nil, goerr.New("generator is required")
	}

	uc := &UseCases{
		validator: model.NewTestCaseValidator(),
	}
	for _, opt := range opts {
		opt(uc)
	}

	if uc.chunker == nil {
		c, err := chunker.New()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create default chunker")
		}
		uc.chunker = c
	}
	if uc.retriever == nil {
		r, err := retriever.New()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create default retriever")
		}
		uc.retriever = r
	}
	if uc.recovery == nil {
		uc.recovery = recovery.New()
	}

	uc.Ingest = NewIngestUseCase(indexer, uc.chunker)
	uc.TestCase = NewTestCaseUseCase(generator, uc.retriever, uc.recovery, uc.validator)
	uc.Script = NewScriptUseCase(generator, uc.retriever, uc.recovery, uc.validator)

	return uc, nil
}
