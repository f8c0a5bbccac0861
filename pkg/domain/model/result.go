package model

import (
	"time"

	"github.com/secmon-lab/casewright/pkg/domain/types"
)

// IngestResult is the boundary result of building a knowledge base
type IngestResult struct {
	Status     types.Status    `json:"status"`
	Message    string          `json:"message"`
	ErrorKind  types.ErrorKind `json:"error_kind,omitempty"`
	ChunkCount int             `json:"chunk_count"`
	Sources    []string        `json:"sources,omitempty"`
	Skipped    []string        `json:"skipped_documents,omitempty"`
}

// TestCaseResult is the boundary result of a test case generation round
type TestCaseResult struct {
	Status      types.Status           `json:"status"`
	Message     string                 `json:"message"`
	ErrorKind   types.ErrorKind        `json:"error_kind,omitempty"`
	TestCases   []TestCase             `json:"test_cases"`
	Strategy    types.RecoveryStrategy `json:"strategy,omitempty"`
	Rejected    int                    `json:"rejected"`
	RawResponse string                 `json:"raw_response,omitempty"`
}

// ScriptResult is the boundary result of a script generation round
type ScriptResult struct {
	Status    types.Status    `json:"status"`
	Message   string          `json:"message"`
	ErrorKind types.ErrorKind `json:"error_kind,omitempty"`
	Script    string          `json:"script,omitempty"`
	TestCase  *TestCase       `json:"test_case,omitempty"`
}

// PipelineStatus is a snapshot of the knowledge base holder
type PipelineStatus struct {
	State               types.PipelineState `json:"state"`
	KnowledgeBaseID     string              `json:"knowledge_base_id,omitempty"`
	ChunkCount          int                 `json:"chunk_count"`
	Sources             []string            `json:"sources,omitempty"`
	HasAuxiliaryContent bool                `json:"has_auxiliary_content"`
	BuiltAt             *time.Time          `json:"built_at,omitempty"`
	TestCasesGenerated  int                 `json:"test_cases_generated"`
}
