package model

import "github.com/secmon-lab/casewright/pkg/domain/types"

// GenerationRequest is one round trip to the language model
type GenerationRequest struct {
	Prompt string
	Format types.OutputFormat
}
