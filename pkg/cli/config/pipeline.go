package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/casewright/pkg/service/chunker"
	"github.com/secmon-lab/casewright/pkg/service/embedding"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
	"github.com/secmon-lab/casewright/pkg/service/retriever"
	"github.com/urfave/cli/v3"
)

// PipelineConfig is the TOML file layout for pipeline tuning
type PipelineConfig struct {
	Chunk     ChunkConfig     `toml:"chunk"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Recovery  RecoveryConfig  `toml:"recovery"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

type ChunkConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

type RecoveryConfig struct {
	ExcerptLimit int `toml:"excerpt_limit"`
}

type EmbeddingConfig struct {
	Dimension   int `toml:"dimension"`
	BatchSize   int `toml:"batch_size"`
	Concurrency int `toml:"concurrency"`
}

// DefaultPipelineConfig returns the values used when no file is given
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Chunk: ChunkConfig{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{TopK: retriever.DefaultTopK},
		Recovery:  RecoveryConfig{ExcerptLimit: recovery.DefaultExcerptLimit},
		Embedding: EmbeddingConfig{
			Dimension:   embedding.DefaultDimension,
			BatchSize:   embedding.DefaultBatchSize,
			Concurrency: embedding.DefaultConcurrency,
		},
	}
}

func (p *PipelineConfig) Validate() error {
	if p.Chunk.Size <= 0 || p.Chunk.Overlap < 0 || p.Chunk.Overlap >= p.Chunk.Size {
		return goerr.Wrap(ErrInvalidChunkWindow, "invalid chunk window",
			goerr.V("size", p.Chunk.Size), goerr.V("overlap", p.Chunk.Overlap))
	}
	if p.Retrieval.TopK <= 0 {
		return goerr.Wrap(ErrInvalidTopK, "invalid retrieval depth", goerr.V("top_k", p.Retrieval.TopK))
	}
	if p.Recovery.ExcerptLimit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "excerpt_limit must not be negative",
			goerr.V(FieldKey, "recovery.excerpt_limit"))
	}
	if p.Embedding.Dimension <= 0 {
		return goerr.Wrap(ErrInvalidDimension, "invalid embedding dimension", goerr.V("dimension", p.Embedding.Dimension))
	}
	if p.Embedding.BatchSize <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "batch_size must be positive", goerr.V(FieldKey, "embedding.batch_size"))
	}
	if p.Embedding.Concurrency <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "concurrency must be positive", goerr.V(FieldKey, "embedding.concurrency"))
	}
	return nil
}

// LoadPipelineConfig reads path over the defaults, so a file only needs the
// keys it changes
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "pipeline config not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	cfg := DefaultPipelineConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return cfg, nil
}

// Pipeline holds the CLI flag pointing at the pipeline TOML file
type Pipeline struct {
	path string
	cfg  *PipelineConfig
}

func (p *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Pipeline configuration file (TOML)",
			Sources:     cli.EnvVars("CASEWRIGHT_CONFIG"),
			Destination: &p.path,
		},
	}
}

func (p *Pipeline) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("path", p.path)}
	if p.cfg != nil {
		attrs = append(attrs,
			slog.Int("chunk_size", p.cfg.Chunk.Size),
			slog.Int("chunk_overlap", p.cfg.Chunk.Overlap),
			slog.Int("top_k", p.cfg.Retrieval.TopK),
			slog.Int("embedding_dimension", p.cfg.Embedding.Dimension),
		)
	}
	return attrs
}

// Configure loads the file when one is set and falls back to defaults otherwise
func (p *Pipeline) Configure() (*PipelineConfig, error) {
	if p.path == "" {
		p.cfg = DefaultPipelineConfig()
		return p.cfg, nil
	}

	cfg, err := LoadPipelineConfig(p.path)
	if err != nil {
		return nil, err
	}
	p.cfg = cfg
	return cfg, nil
}

// Chunker builds the chunker described by the config
func (p *PipelineConfig) Chunker() (*chunker.Chunker, error) {
	return chunker.New(chunker.WithChunkSize(p.Chunk.Size), chunker.WithOverlap(p.Chunk.Overlap))
}

func (p *PipelineConfig) Retriever() (*retriever.Retriever, error) {
	return retriever.New(retriever.WithTopK(p.Retrieval.TopK))
}

func (p *PipelineConfig) RecoveryEngine() *recovery.Engine {
	return recovery.New(recovery.WithExcerptLimit(p.Recovery.ExcerptLimit))
}

func (p *PipelineConfig) EmbeddingOptions() []embedding.Option {
	return []embedding.Option{
		embedding.WithDimension(p.Embedding.Dimension),
		embedding.WithBatchSize(p.Embedding.BatchSize),
		embedding.WithConcurrency(p.Embedding.Concurrency),
	}
}
