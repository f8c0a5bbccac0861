package types

import "fmt"

// Status is the tagged outcome returned across the operation boundary
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// AllStatuses returns all valid statuses
func AllStatuses() []Status {
	return []Status{
		StatusSuccess,
		StatusError,
	}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return status, nil
}
