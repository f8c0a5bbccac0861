package recovery

import "github.com/secmon-lab/casewright/pkg/domain/types"

var (
	RepairJSON         = repairJSON
	StripComments      = stripComments
	EscapeControls     = escapeControls
	DropTrailingCommas = dropTrailingCommas
	ScanObjects        = scanObjects
)

// NewEngineForTest builds an engine whose strategies are replaced in cascade order
func NewEngineForTest(excerptLimit int, strategies ...Strategy) *Engine {
	names := types.AllRecoveryStrategies()
	e := &Engine{excerptLimit: excerptLimit}
	for i, fn := range strategies {
		e.strategies = append(e.strategies, namedStrategy{name: names[i], fn: fn})
	}
	return e
}
