package prompt_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/service/prompt"
)

func retrieved() []model.ScoredChunk {
	return []model.ScoredChunk{
		{Chunk: model.Chunk{Text: "SAVE15 gives 15% off the subtotal.", SourceTag: "product_specs.md"}, Score: 0.92},
		{Chunk: model.Chunk{Text: "Shipping is free above $50."}, Score: 0.71},
	}
}

func TestRenderContext(t *testing.T) {
	t.Run("numbered source tagged blocks", func(t *testing.T) {
		got := prompt.RenderContext(retrieved())
		gt.Value(t, got).Equal("Document 1 [source: product_specs.md]\nSAVE15 gives 15% off the subtotal.\n\n" +
			"Document 2 [source: unknown]\nShipping is free above $50.")
	})

	t.Run("deterministic for the same input", func(t *testing.T) {
		gt.Value(t, prompt.RenderContext(retrieved())).Equal(prompt.RenderContext(retrieved()))
	})

	t.Run("no chunks renders the marker", func(t *testing.T) {
		gt.Value(t, prompt.RenderContext(nil)).Equal(prompt.NoContextMarker)
	})
}

func TestBuildTestCasePrompt(t *testing.T) {
	t.Run("includes context, intent and HTML", func(t *testing.T) {
		p := prompt.BuildTestCasePrompt(prompt.TestCaseInput{
			Retrieved:        retrieved(),
			Intent:           "  Test the discount code feature  ",
			AuxiliaryContent: `<input id="discount-code">`,
		})

		gt.String(t, p).Contains("Document 1 [source: product_specs.md]")
		gt.String(t, p).Contains("Test the discount code feature\n")
		gt.String(t, p).Contains(`<input id="discount-code">`)
		for _, field := range model.TestCaseFields() {
			gt.String(t, p).Contains(field)
		}
		gt.Bool(t, strings.Contains(p, prompt.NotAvailableMarker)).False()
	})

	t.Run("blank HTML is replaced by the marker", func(t *testing.T) {
		for _, aux := range []string{"", "   \n\t"} {
			p := prompt.BuildTestCasePrompt(prompt.TestCaseInput{Intent: "x", AuxiliaryContent: aux})
			gt.String(t, p).Contains(prompt.NotAvailableMarker)
			gt.String(t, p).Contains(prompt.NoContextMarker)
		}
	})
}

func TestBuildScriptPrompt(t *testing.T) {
	tc := model.TestCase{
		TestID:         "TC-001",
		Feature:        "Discount Codes",
		TestScenario:   "Apply \"SAVE15\"",
		ExpectedResult: "15% off",
		TriggeringRule: "SAVE15",
		GroundedIn:     "product_specs.md",
	}

	p, err := prompt.BuildScriptPrompt(prompt.ScriptInput{TestCase: tc, Retrieved: retrieved()})
	gt.NoError(t, err).Required()

	gt.String(t, p).Contains(`"Test_ID": "TC-001"`)
	gt.String(t, p).Contains(`"Test_Scenario": "Apply \"SAVE15\""`)
	gt.String(t, p).Contains(prompt.NotAvailableMarker)
	gt.String(t, p).Contains("Shipping is free above $50.")
	gt.String(t, p).Contains("naming TC-001")
}
