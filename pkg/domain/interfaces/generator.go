package interfaces

import (
	"context"

	"github.com/secmon-lab/casewright/pkg/domain/model"
)

// Generator sends one prompt to the language model and returns its raw text.
// No retry is performed.
type Generator interface {
	Invoke(ctx context.Context, req model.GenerationRequest) (string, error)
}
