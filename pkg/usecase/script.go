package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/service/prompt"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
	"github.com/secmon-lab/casewright/pkg/service/retriever"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

type ScriptUseCase struct {
	generator interfaces.Generator
	retriever *retriever.Retriever
	recovery  *recovery.Engine
	validator *model.TestCaseValidator
}

func NewScriptUseCase(generator interfaces.Generator, r *retriever.Retriever, e *recovery.Engine, v *model.TestCaseValidator) *ScriptUseCase {
	return &ScriptUseCase{
		generator: generator,
		retriever: r,
		recovery:  e,
		validator: v,
	}
}

// Generate produces one automation script for a validated test case
func (uc *ScriptUseCase) Generate(ctx context.Context, kb *KnowledgeBase, tc model.TestCase) (*model.GeneratedScript, error) {
	if kb.index() == nil {
		return nil, goerr.Wrap(model.ErrNotInitialized, "please build the knowledge base first")
	}

	validated, err := uc.validator.Validate(tc.Candidate())
	if err != nil {
		// A malformed test case at this boundary is bad caller input, not a dropped record
		return nil, goerr.Wrap(model.ErrInvalidInput, "test case is incomplete",
			goerr.V(model.TestIDKey, tc.TestID), goerr.V("reason", err.Error()))
	}

	if !kb.HasAuxiliaryContent() {
		logging.From(ctx).Warn("no target HTML page ingested, script selectors will be guessed",
			model.TestIDKey, validated.TestID)
	}

	query := validated.Feature + " " + validated.TestScenario
	retrieved, err := uc.retriever.Retrieve(ctx, kb.index(), query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve context", goerr.V(model.TestIDKey, validated.TestID))
	}

	p, err := prompt.BuildScriptPrompt(prompt.ScriptInput{
		TestCase:         *validated,
		Retrieved:        retrieved,
		AuxiliaryContent: kb.auxiliary(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build script prompt", goerr.V(model.TestIDKey, validated.TestID))
	}

	raw, err := uc.generator.Invoke(ctx, model.GenerationRequest{Prompt: p, Format: types.OutputFormatText})
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err), "failed to generate script",
			goerr.V(model.TestIDKey, validated.TestID), goerr.V(model.PromptSizeKey, len(p)))
	}

	script := recovery.CleanScript(raw)
	if script == "" {
		return nil, goerr.Wrap(&model.DecodeError{Excerpt: uc.recovery.Excerpt(raw)}, ErrEmptyScript.Error(),
			goerr.V(model.TestIDKey, validated.TestID))
	}

	logging.From(ctx).Info("script generated", model.TestIDKey, validated.TestID, "size", len(script))

	return &model.GeneratedScript{Script: script, TestCase: *validated}, nil
}
