package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/service/prompt"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
	"github.com/secmon-lab/casewright/pkg/service/retriever"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

type TestCaseUseCase struct {
	generator interfaces.Generator
	retriever *retriever.Retriever
	recovery  *recovery.Engine
	validator *model.TestCaseValidator
}

func NewTestCaseUseCase(generator interfaces.Generator, r *retriever.Retriever, e *recovery.Engine, v *model.TestCaseValidator) *TestCaseUseCase {
	return &TestCaseUseCase{
		generator: generator,
		retriever: r,
		recovery:  e,
		validator: v,
	}
}

// Generate runs one retrieval-augmented round for intent and returns every
// candidate that passed validation. Rejected candidates are logged and
// counted, never returned.
func (uc *TestCaseUseCase) Generate(ctx context.Context, kb *KnowledgeBase, intent string) (*model.TestCaseBatch, error) {
	logger := logging.From(ctx)

	if kb.index() == nil {
		return nil, goerr.Wrap(model.ErrNotInitialized, "please build the knowledge base first")
	}
	if strings.TrimSpace(intent) == "" {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrInvalidInput, ErrBlankIntent), "intent must not be blank")
	}

	retrieved, err := uc.retriever.Retrieve(ctx, kb.index(), intent)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve context", goerr.V(IntentKey, intent))
	}

	req := model.GenerationRequest{
		Prompt: prompt.BuildTestCasePrompt(prompt.TestCaseInput{
			Retrieved:        retrieved,
			Intent:           intent,
			AuxiliaryContent: kb.auxiliary(),
		}),
		Format: types.OutputFormatJSON,
	}

	raw, err := uc.generator.Invoke(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err), "failed to generate test cases",
			goerr.V(model.PromptSizeKey, len(req.Prompt)))
	}

	recovered, err := uc.recovery.Recover(ctx, raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode test cases")
	}

	accepted, rejections := uc.validator.ValidateBatch(recovered.Candidates)
	for _, r := range rejections {
		logger.Warn("test case rejected by validation",
			CandidateKey, r.Index,
			"strategy", recovered.Strategy,
			"error", r.Err.Error())
	}

	logger.Info("test cases generated",
		"strategy", recovered.Strategy,
		"accepted", len(accepted),
		"rejected", len(rejections))

	return &model.TestCaseBatch{
		TestCases: accepted,
		Strategy:  recovered.Strategy,
		Rejected:  len(rejections),
	}, nil
}
