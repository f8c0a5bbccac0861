package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/cli/config"
	"github.com/secmon-lab/casewright/pkg/service/embedding"
	"github.com/secmon-lab/casewright/pkg/service/generation"
	"github.com/secmon-lab/casewright/pkg/usecase"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// pipelineFlags groups the configuration shared by commands that call the model
type pipelineFlags struct {
	pipeline config.Pipeline
	llm      config.LLM
	index    config.Index
}

func (p *pipelineFlags) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, p.pipeline.Flags()...)
	flags = append(flags, p.llm.Flags()...)
	flags = append(flags, p.index.Flags()...)
	return flags
}

// newSession wires the embedder, index backend and generator into a session.
// The returned function releases backend resources.
func (p *pipelineFlags) newSession(ctx context.Context) (*usecase.Session, func(), error) {
	cfg, err := p.pipeline.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load pipeline config")
	}

	clients, err := p.llm.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure LLM")
	}

	embedder, err := embedding.New(clients.Embedding, cfg.EmbeddingOptions()...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create embedder")
	}

	indexer, closer, err := p.index.Configure(ctx, embedder)
	if err != nil {
		return nil, nil, err
	}

	generator, err := generation.New(clients.Generation, generation.WithJSONMode(p.llm.JSONMode()))
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create generator")
	}

	c, err := cfg.Chunker()
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create chunker")
	}
	r, err := cfg.Retriever()
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create retriever")
	}

	uc, err := usecase.New(indexer, generator,
		usecase.WithChunker(c),
		usecase.WithRetriever(r),
		usecase.WithRecovery(cfg.RecoveryEngine()),
	)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create use cases")
	}

	logging.Default().Info("Pipeline configured",
		slogGroup("pipeline", p.pipeline.LogAttrs()),
		slogGroup("llm", p.llm.LogAttrs()),
		slogGroup("index", p.index.LogAttrs()),
	)

	return usecase.NewSession(uc), closer, nil
}

func slogGroup(key string, attrs []slog.Attr) slog.Attr {
	return slog.Attr{Key: key, Value: slog.GroupValue(attrs...)}
}
