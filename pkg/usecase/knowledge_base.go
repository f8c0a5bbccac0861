package usecase

import (
	"strings"
	"time"

	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
)

// KnowledgeBase is one built index plus the auxiliary HTML stored beside it.
// It is replaced wholesale by every successful ingest and never mutated.
type KnowledgeBase struct {
	ID               string
	Index            interfaces.Index
	AuxiliaryContent string
	ChunkCount       int
	Sources          []string
	BuiltAt          time.Time
}

func (kb *KnowledgeBase) index() interfaces.Index {
	if kb == nil {
		return nil
	}
	return kb.Index
}

func (kb *KnowledgeBase) auxiliary() string {
	if kb == nil {
		return ""
	}
	return kb.AuxiliaryContent
}

// HasAuxiliaryContent reports whether a non-blank HTML page was ingested
func (kb *KnowledgeBase) HasAuxiliaryContent() bool {
	return strings.TrimSpace(kb.auxiliary()) != ""
}
