package generation

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

var ErrEmptyResponse = goerr.New("LLM returned no text")

// client implements interfaces.Generator on top of a gollem LLM client
type client struct {
	llmClient    gollem.LLMClient
	jsonMode     bool
	systemPrompt string
}

var _ interfaces.Generator = (*client)(nil)

// Option is a functional option for client configuration
type Option func(*client)

// WithJSONMode asks the provider for JSON output constrained by the test
// case schema whenever a request wants JSON. The recovery engine still runs
// on the result, so this only lowers how often it has to fall back.
func WithJSONMode(enabled bool) Option {
	return func(c *client) {
		c.jsonMode = enabled
	}
}

// WithSystemPrompt sets a system prompt sent with every session
func WithSystemPrompt(prompt string) Option {
	return func(c *client) {
		c.systemPrompt = prompt
	}
}

// New creates a Generator backed by llmClient
func New(llmClient gollem.LLMClient, opts ...Option) (interfaces.Generator, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Invoke opens a fresh session, sends the prompt once and returns the raw text
func (c *client) Invoke(ctx context.Context, req model.GenerationRequest) (string, error) {
	var sessionOpts []gollem.SessionOption
	if c.systemPrompt != "" {
		sessionOpts = append(sessionOpts, gollem.WithSessionSystemPrompt(c.systemPrompt))
	}
	if c.jsonMode && req.Format == types.OutputFormatJSON {
		sessionOpts = append(sessionOpts,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(TestCaseSchema()),
		)
	}

	session, err := c.llmClient.NewSession(ctx, sessionOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(req.Prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM",
			goerr.V(model.PromptSizeKey, len(req.Prompt)))
	}

	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrEmptyResponse, "no text in LLM response")
	}

	text := strings.Join(resp.Texts, "")
	logging.From(ctx).Debug("LLM responded",
		"format", req.Format,
		"prompt_size", len(req.Prompt),
		"response_size", len(text))

	return text, nil
}

// TestCaseSchema describes the object the test case prompt asks for
func TestCaseSchema() *gollem.Parameter {
	properties := make(map[string]*gollem.Parameter, len(model.TestCaseFields()))
	descriptions := map[string]string{
		model.FieldTestID:         "Unique identifier such as TC-001",
		model.FieldFeature:        "Feature under test",
		model.FieldTestScenario:   "Concrete steps and inputs",
		model.FieldExpectedResult: "Outcome required by the documentation",
		model.FieldTriggeringRule: "Business rule or requirement the test enforces",
		model.FieldGroundedIn:     "Source documents the test is based on",
	}
	for _, field := range model.TestCaseFields() {
		properties[field] = &gollem.Parameter{
			Type:        gollem.TypeString,
			Description: descriptions[field],
		}
	}

	return &gollem.Parameter{
		Title:       "TestCaseGenerationResponse",
		Description: "Test cases derived from the provided documentation",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"test_cases": {
				Type:        gollem.TypeArray,
				Description: "Generated test cases",
				Items: &gollem.Parameter{
					Type:       gollem.TypeObject,
					Properties: properties,
					Required:   model.TestCaseFields(),
				},
			},
		},
		Required: []string{"test_cases"},
	}
}
