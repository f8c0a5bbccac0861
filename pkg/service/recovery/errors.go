package recovery

import "github.com/m-mizutani/goerr/v2"

// Strategy level failures. They never leave the engine: a failed strategy
// hands over to the next one and only the terminal DecodeError is returned.
var (
	ErrNoObject          = goerr.New("no JSON object found")
	ErrMalformedJSON     = goerr.New("text is not valid JSON after repair")
	ErrMissingTestCases  = goerr.New("test_cases array not found")
	ErrNoRecoverableItem = goerr.New("no record could be recovered")
	ErrNoAnchor          = goerr.New("no record anchor found")
)
