package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// LLM holds configuration for the generation and embedding clients
type LLM struct {
	provider          string
	embeddingProvider string
	model             string
	jsonMode          bool

	geminiProject  string
	geminiLocation string
	openaiAPIKey   string `masq:"secret"`
	claudeAPIKey   string `masq:"secret"`
}

// LLMClients are the clients used for generation and for embeddings. They
// may be the same client.
type LLMClients struct {
	Generation gollem.LLMClient
	Embedding  gollem.LLMClient
}

func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider for generation (gemini, openai, claude)",
			Value:       ProviderGemini,
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_LLM_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.StringFlag{
			Name:        "embedding-provider",
			Usage:       "Provider for embeddings (gemini, openai). Defaults to --llm-provider",
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_EMBEDDING_PROVIDER"),
			Destination: &l.embeddingProvider,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Generation model name (provider default when empty)",
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_LLM_MODEL"),
			Destination: &l.model,
		},
		&cli.BoolFlag{
			Name:        "llm-json-mode",
			Usage:       "Request JSON content type and a response schema for test case generation",
			Value:       true,
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_LLM_JSON_MODE"),
			Destination: &l.jsonMode,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("CASEWRIGHT_CLAUDE_API_KEY"),
			Destination: &l.claudeAPIKey,
		},
	}
}

func (l *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", l.provider),
		slog.String("embedding_provider", l.embeddingProviderName()),
		slog.String("model", l.model),
		slog.Bool("json_mode", l.jsonMode),
		slog.String("gemini_project", l.geminiProject),
		slog.String("gemini_location", l.geminiLocation),
		slog.Bool("openai_api_key_set", l.openaiAPIKey != ""),
		slog.Bool("claude_api_key_set", l.claudeAPIKey != ""),
	}
}

func (l *LLM) JSONMode() bool {
	return l.jsonMode
}

func (l *LLM) embeddingProviderName() string {
	if l.embeddingProvider != "" {
		return l.embeddingProvider
	}
	return l.provider
}

// Validate checks provider names and credentials without connecting
func (l *LLM) Validate() error {
	if err := l.validateProvider(l.provider, true); err != nil {
		return err
	}
	emb := l.embeddingProviderName()
	if emb == ProviderClaude {
		return goerr.Wrap(ErrInvalidConfig, "claude does not provide embeddings, set --embedding-provider",
			goerr.V(ProviderKey, emb))
	}
	return l.validateProvider(emb, false)
}

func (l *LLM) validateProvider(provider string, allowClaude bool) error {
	switch provider {
	case ProviderGemini:
		if l.geminiProject == "" {
			return goerr.Wrap(ErrMissingCredential, "gemini-project is required", goerr.V(ProviderKey, provider))
		}
	case ProviderOpenAI:
		if l.openaiAPIKey == "" {
			return goerr.Wrap(ErrMissingCredential, "openai-api-key is required", goerr.V(ProviderKey, provider))
		}
	case ProviderClaude:
		if !allowClaude {
			return goerr.Wrap(ErrUnknownProvider, "provider not supported here", goerr.V(ProviderKey, provider))
		}
		if l.claudeAPIKey == "" {
			return goerr.Wrap(ErrMissingCredential, "claude-api-key is required", goerr.V(ProviderKey, provider))
		}
	default:
		return goerr.Wrap(ErrUnknownProvider, "unknown LLM provider", goerr.V(ProviderKey, provider))
	}
	return nil
}

// Configure creates the generation and embedding clients
func (l *LLM) Configure(ctx context.Context) (*LLMClients, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	gen, err := l.newClient(ctx, l.provider, l.model)
	if err != nil {
		return nil, err
	}

	emb := gen
	if name := l.embeddingProviderName(); name != l.provider {
		emb, err = l.newClient(ctx, name, "")
		if err != nil {
			return nil, err
		}
	}

	return &LLMClients{Generation: gen, Embedding: emb}, nil
}

func (l *LLM) newClient(ctx context.Context, provider, model string) (gollem.LLMClient, error) {
	switch provider {
	case ProviderGemini:
		var opts []gemini.Option
		if model != "" {
			opts = append(opts, gemini.WithModel(model))
		}
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderOpenAI:
		var opts []openai.Option
		if model != "" {
			opts = append(opts, openai.WithModel(model))
		}
		client, err := openai.New(ctx, l.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	case ProviderClaude:
		var opts []claude.Option
		if model != "" {
			opts = append(opts, claude.WithModel(model))
		}
		client, err := claude.New(ctx, l.claudeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "unknown LLM provider", goerr.V(ProviderKey, provider))
	}
}
