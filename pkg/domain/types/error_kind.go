package types

import "fmt"

// ErrorKind classifies a failed operation. The set is closed.
type ErrorKind string

const (
	ErrorKindNotInitialized     ErrorKind = "NotInitialized"
	ErrorKindDecodeFailure      ErrorKind = "DecodeFailure"
	ErrorKindValidationRejected ErrorKind = "ValidationRejected"
	ErrorKindUpstreamFailure    ErrorKind = "UpstreamFailure"
	ErrorKindInvalidInput       ErrorKind = "InvalidInput"
)

// AllErrorKinds returns all valid error kinds
func AllErrorKinds() []ErrorKind {
	return []ErrorKind{
		ErrorKindNotInitialized,
		ErrorKindDecodeFailure,
		ErrorKindValidationRejected,
		ErrorKindUpstreamFailure,
		ErrorKindInvalidInput,
	}
}

// IsValid checks if the error kind is valid
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindNotInitialized,
		ErrorKindDecodeFailure,
		ErrorKindValidationRejected,
		ErrorKindUpstreamFailure,
		ErrorKindInvalidInput:
		return true
	default:
		return false
	}
}

func (k ErrorKind) String() string {
	return string(k)
}

// ParseErrorKind parses a string into an ErrorKind
func ParseErrorKind(s string) (ErrorKind, error) {
	kind := ErrorKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid error kind: %s", s)
	}
	return kind, nil
}
