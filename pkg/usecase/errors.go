package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrNoValidDocuments = goerr.New("no valid documents were parsed")
	ErrBlankIntent      = goerr.New("intent is blank")
	ErrEmptyScript      = goerr.New("script is empty after cleanup")
)

// Context keys for error values
const (
	IntentKey    = "intent"
	SkippedKey   = "skipped"
	CandidateKey = "candidate_index"
)
