package types

// RecoveryStrategy names the decoder that turned model output into candidates
type RecoveryStrategy string

const (
	RecoveryStrategyLenient     RecoveryStrategy = "lenient_parse"
	RecoveryStrategyArrayScoped RecoveryStrategy = "array_scoped"
	RecoveryStrategyAnchored    RecoveryStrategy = "record_anchored"
)

// AllRecoveryStrategies returns the strategies in cascade order
func AllRecoveryStrategies() []RecoveryStrategy {
	return []RecoveryStrategy{
		RecoveryStrategyLenient,
		RecoveryStrategyArrayScoped,
		RecoveryStrategyAnchored,
	}
}

func (s RecoveryStrategy) String() string {
	return string(s)
}
