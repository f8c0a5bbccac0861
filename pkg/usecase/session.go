package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/utils/async"
	"github.com/secmon-lab/casewright/pkg/utils/errutil"
)

const (
	msgIngestSuccess    = "Knowledge Base Built Successfully."
	msgNotInitialized   = "Knowledge base not found. Please build the knowledge base first."
	msgNoValidDocuments = "No valid documents were parsed. Please check the uploaded files."
	msgNoChunks         = "Documents produced no text chunks. The previous knowledge base is kept."
)

// Session owns the current knowledge base and serializes operations on it,
// so a rebuild never races a query. Every operation returns a tagged result
// instead of an error.
type Session struct {
	uc *UseCases

	// opMu serializes ingest and generation rounds
	opMu sync.Mutex

	mu        sync.RWMutex
	kb        *KnowledgeBase
	state     types.PipelineState
	generated int
}

// NewSession panics when uc is nil
func NewSession(uc *UseCases) *Session {
	if uc == nil {
		panic("usecase: NewSession called with nil UseCases")
	}
	return &Session{
		uc:    uc,
		state: types.PipelineStateNoIndex,
	}
}

// KnowledgeBase returns the knowledge base currently in effect, or nil
func (s *Session) KnowledgeBase() *KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb
}

func (s *Session) State() types.PipelineState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Status() *model.PipelineStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &model.PipelineStatus{
		State:              s.state,
		TestCasesGenerated: s.generated,
	}
	if s.kb != nil {
		builtAt := s.kb.BuiltAt
		status.KnowledgeBaseID = s.kb.ID
		status.ChunkCount = s.kb.ChunkCount
		status.Sources = append([]string(nil), s.kb.Sources...)
		status.HasAuxiliaryContent = s.kb.HasAuxiliaryContent()
		status.BuiltAt = &builtAt
	}
	return status
}

func (s *Session) setState(state types.PipelineState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// beginGeneration moves to GENERATING when a knowledge base exists and
// returns the function restoring the resting state
func (s *Session) beginGeneration() (*KnowledgeBase, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kb := s.kb
	if kb == nil {
		return nil, func() {}
	}
	s.state = types.PipelineStateGenerating
	return kb, func() { s.setState(types.PipelineStateIndexReady) }
}

// Ingest builds a new knowledge base from docs and the auxiliary HTML page and
// replaces the current one. On any failure the current one stays in effect.
func (s *Session) Ingest(ctx context.Context, docs []model.Document, auxiliaryContent string) *model.IngestResult {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	out, err := s.uc.Ingest.Build(ctx, s.KnowledgeBase(), docs, auxiliaryContent)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to ingest documents")
		msg := failureMessage("Error building knowledge base", err)
		if errors.Is(err, ErrNoValidDocuments) {
			msg = msgNoValidDocuments
		}
		return &model.IngestResult{
			Status:    types.StatusError,
			Message:   msg,
			ErrorKind: model.KindOf(err),
		}
	}

	if !out.Rebuilt {
		return &model.IngestResult{
			Status:    types.StatusError,
			Message:   msgNoChunks,
			ErrorKind: types.ErrorKindInvalidInput,
			Skipped:   out.Skipped,
		}
	}

	s.mu.Lock()
	old := s.kb
	s.kb = out.KnowledgeBase
	s.state = types.PipelineStateIndexReady
	s.generated = 0
	s.mu.Unlock()

	if old != nil && old.Index != nil {
		async.Dispatch(ctx, "failed to drop previous index", func(ctx context.Context) error {
			return old.Index.Drop(ctx)
		})
	}

	return &model.IngestResult{
		Status:     types.StatusSuccess,
		Message:    msgIngestSuccess,
		ChunkCount: out.KnowledgeBase.ChunkCount,
		Sources:    out.KnowledgeBase.Sources,
		Skipped:    out.Skipped,
	}
}

// GenerateTestCases runs one test case round against the current knowledge base
func (s *Session) GenerateTestCases(ctx context.Context, intent string) *model.TestCaseResult {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	kb, done := s.beginGeneration()
	defer done()

	batch, err := s.uc.TestCase.Generate(ctx, kb, intent)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to generate test cases")
		return &model.TestCaseResult{
			Status:      types.StatusError,
			Message:     failureMessage("Error generating test cases", err),
			ErrorKind:   model.KindOf(err),
			TestCases:   []model.TestCase{},
			RawResponse: model.ExcerptOf(err),
		}
	}

	s.mu.Lock()
	s.generated = len(batch.TestCases)
	s.mu.Unlock()

	return &model.TestCaseResult{
		Status:    types.StatusSuccess,
		Message:   fmt.Sprintf("Generated %d test cases successfully.", len(batch.TestCases)),
		TestCases: batch.TestCases,
		Strategy:  batch.Strategy,
		Rejected:  batch.Rejected,
	}
}

// GenerateScript produces an automation script for one test case
func (s *Session) GenerateScript(ctx context.Context, tc model.TestCase) *model.ScriptResult {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	kb, done := s.beginGeneration()
	defer done()

	script, err := s.uc.Script.Generate(ctx, kb, tc)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to generate script")
		return &model.ScriptResult{
			Status:    types.StatusError,
			Message:   failureMessage("Error generating script", err),
			ErrorKind: model.KindOf(err),
		}
	}

	return &model.ScriptResult{
		Status:   types.StatusSuccess,
		Message:  fmt.Sprintf("Script generated successfully for %s.", script.TestCase.TestID),
		Script:   script.Script,
		TestCase: &script.TestCase,
	}
}

// GenerateScriptFromCandidate validates an undecoded test case supplied by a
// caller before generating its script. A record that fails validation is
// reported as invalid input.
func (s *Session) GenerateScriptFromCandidate(ctx context.Context, c model.Candidate) *model.ScriptResult {
	tc, err := s.uc.validator.Validate(c)
	if err != nil {
		err = goerr.Wrap(model.ErrInvalidInput, "test case is incomplete", goerr.V("reason", err.Error()))
		_ = errutil.Handle(ctx, err, "rejected test case for script generation")
		return &model.ScriptResult{
			Status:    types.StatusError,
			Message:   failureMessage("Invalid test case", err),
			ErrorKind: types.ErrorKindInvalidInput,
		}
	}
	return s.GenerateScript(ctx, *tc)
}

func failureMessage(prefix string, err error) string {
	if model.KindOf(err) == types.ErrorKindNotInitialized {
		return msgNotInitialized
	}
	return prefix + ": " + err.Error()
}
