package recovery

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

// DefaultExcerptLimit bounds the raw text attached to a decode failure
const DefaultExcerptLimit = 2000

// Strategy decodes raw model text into unvalidated candidates
type Strategy func(text string) ([]model.Candidate, error)

type namedStrategy struct {
	name types.RecoveryStrategy
	fn   Strategy
}

// Engine runs the decoding strategies in a fixed order and returns the
// output of the first one that succeeds. Outputs are never merged.
type Engine struct {
	excerptLimit int
	strategies   []namedStrategy
}

// Result is the output of a successful recovery
type Result struct {
	Candidates []model.Candidate
	Strategy   types.RecoveryStrategy
}

// Option is a functional option for Engine configuration
type Option func(*Engine)

// WithExcerptLimit sets how many runes of the raw text a DecodeError keeps
func WithExcerptLimit(limit int) Option {
	return func(e *Engine) {
		e.excerptLimit = limit
	}
}

// New creates an Engine with the lenient, array scoped and anchored strategies
func New(opts ...Option) *Engine {
	e := &Engine{
		excerptLimit: DefaultExcerptLimit,
		strategies: []namedStrategy{
			{name: types.RecoveryStrategyLenient, fn: ParseLenient},
			{name: types.RecoveryStrategyArrayScoped, fn: ParseArrayScoped},
			{name: types.RecoveryStrategyAnchored, fn: ExtractAnchored},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recover decodes text. When every strategy fails it returns an error that
// wraps *model.DecodeError carrying a bounded excerpt of text.
func (e *Engine) Recover(ctx context.Context, text string) (*Result, error) {
	logger := logging.From(ctx)
	tried := make([]types.RecoveryStrategy, 0, len(e.strategies))

	for _, s := range e.strategies {
		candidates, err := s.fn(text)
		tried = append(tried, s.name)
		if err != nil {
			logger.Debug("recovery strategy failed", "strategy", s.name, "error", err.Error())
			continue
		}

		if s.name != types.RecoveryStrategyLenient {
			logger.Warn("model output needed fallback decoding",
				"strategy", s.name,
				"candidates", len(candidates))
		}
		return &Result{Candidates: candidates, Strategy: s.name}, nil
	}

	return nil, goerr.Wrap(&model.DecodeError{
		Excerpt: excerpt(text, e.excerptLimit),
		Tried:   tried,
	}, "all recovery strategies failed", goerr.V(model.StrategyKey, tried))
}

// Excerpt bounds text to the excerpt limit of the engine
func (e *Engine) Excerpt(text string) string {
	return excerpt(text, e.excerptLimit)
}
