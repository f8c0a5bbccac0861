package model

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/types"
)

// Operation errors. Every failure that crosses the operation boundary wraps one of them.
var (
	ErrNotInitialized     = goerr.New("knowledge base is not initialized")
	ErrDecodeFailure      = goerr.New("model output could not be decoded")
	ErrValidationRejected = goerr.New("record rejected by schema validation")
	ErrUpstreamFailure    = goerr.New("external capability failed")
	ErrInvalidInput       = goerr.New("invalid input")
)

// Reasons a candidate fails validation, always paired with ErrValidationRejected
var (
	ErrMissingRequired  = goerr.New("test case field is missing or null")
	ErrInvalidFieldType = goerr.New("test case field is not a string")
)

// Context keys for error values
const (
	ExcerptKey    = "excerpt"
	StrategyKey   = "strategy"
	PromptSizeKey = "prompt_size"
	ChunkCountKey = "chunk_count"
	DocumentKey   = "document"
	TestIDKey     = "test_id"
	BuildIDKey    = "build_id"

	FieldIDKey      = "field"
	ExpectedTypeKey = "expected_type"
	ActualTypeKey   = "actual_type"
)

// DecodeError carries a bounded excerpt of the text that no strategy could decode.
type DecodeError struct {
	Excerpt string
	Tried   []types.RecoveryStrategy
}

func (e *DecodeError) Error() string {
	if len(e.Tried) == 0 {
		return "model output could not be decoded"
	}
	return fmt.Sprintf("no recovery strategy produced candidates (tried %d)", len(e.Tried))
}

// Is makes errors.Is(err, ErrDecodeFailure) hold for any chain containing a DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailure
}

// ExcerptOf returns the raw text excerpt attached to a decode failure, if any.
func ExcerptOf(err error) string {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Excerpt
	}
	return ""
}

// KindOf classifies err into the closed error kind set. Unclassified errors
// come from external capabilities and are reported as upstream failures.
func KindOf(err error) types.ErrorKind {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return types.ErrorKindNotInitialized
	case errors.Is(err, ErrDecodeFailure):
		return types.ErrorKindDecodeFailure
	case errors.Is(err, ErrValidationRejected):
		return types.ErrorKindValidationRejected
	case errors.Is(err, ErrInvalidInput):
		return types.ErrorKindInvalidInput
	default:
		return types.ErrorKindUpstreamFailure
	}
}
