package prompt

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
)

const (
	// NotAvailableMarker stands in for a missing target HTML page
	NotAvailableMarker = "Not available: no target HTML page was provided."
	// NoContextMarker stands in for an empty retrieval result
	NoContextMarker = "No documentation was retrieved for this request."
)

// TestCaseInput is everything the test case prompt is built from
type TestCaseInput struct {
	Retrieved        []model.ScoredChunk
	Intent           string
	AuxiliaryContent string
}

// ScriptInput is everything the script prompt is built from
type ScriptInput struct {
	TestCase         model.TestCase
	Retrieved        []model.ScoredChunk
	AuxiliaryContent string
}

// RenderContext formats retrieved chunks as numbered, source tagged blocks
func RenderContext(chunks []model.ScoredChunk) string {
	if len(chunks) == 0 {
		return NoContextMarker
	}

	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		source := c.SourceTag
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&sb, "Document %d [source: %s]\n", i+1, source)
		sb.WriteString(c.Text)
	}
	return sb.String()
}

func auxiliaryOrMarker(content string) string {
	if strings.TrimSpace(content) == "" {
		return NotAvailableMarker
	}
	return content
}

// BuildTestCasePrompt builds the QA engineer prompt that asks for a JSON
// object holding a test_cases array
func BuildTestCasePrompt(in TestCaseInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert QA engineer. Write test cases for the feature described by the request below, ")
	sb.WriteString("using only the documentation and HTML page provided.\n\n")

	sb.WriteString("## Documentation\n\n")
	sb.WriteString(RenderContext(in.Retrieved))
	sb.WriteString("\n\n")

	sb.WriteString("## Request\n\n")
	sb.WriteString(strings.TrimSpace(in.Intent))
	sb.WriteString("\n\n")

	sb.WriteString("## Target HTML page\n\n")
	sb.WriteString(auxiliaryOrMarker(in.AuxiliaryContent))
	sb.WriteString("\n\n")

	sb.WriteString("## Instructions\n\n")
	sb.WriteString("1. Identify every feature, business rule and validation requirement in the documentation.\n")
	sb.WriteString("2. Cover positive, negative and boundary cases.\n")
	sb.WriteString("3. Every test case has exactly these string fields:\n")
	sb.WriteString("   - Test_ID: unique identifier in the form TC-001\n")
	sb.WriteString("   - Feature: the feature under test\n")
	sb.WriteString("   - Test_Scenario: concrete steps and inputs\n")
	sb.WriteString("   - Expected_Result: the outcome the documentation requires\n")
	sb.WriteString("   - Triggering_Rule: the exact rule or requirement the test enforces\n")
	sb.WriteString("   - Grounded_In: the source document names shown in the documentation blocks\n")
	sb.WriteString("4. Do not invent behaviour the documentation does not state.\n\n")

	sb.WriteString("## Output format\n\n")
	sb.WriteString("Reply with one JSON object and nothing else, for example:\n")
	sb.WriteString(`{
  "test_cases": [
    {
      "Test_ID": "TC-001",
      "Feature": "Discount Code Application",
      "Test_Scenario": "Open the checkout page, enter SAVE15 in the discount code field and press Apply.",
      "Expected_Result": "15% is taken off the subtotal and the new total is shown in the summary.",
      "Triggering_Rule": "SAVE15 is matched case sensitively and gives 15% off the subtotal",
      "Grounded_In": "product_specs.md"
    }
  ]
}`)
	sb.WriteString("\n\n")
	sb.WriteString("Rules: use double quotes for keys and strings, escape quotes inside values, ")
	sb.WriteString("no trailing commas, no comments, no markdown fences, keep each value on a single line.\n")

	return sb.String()
}

// BuildScriptPrompt builds the automation expert prompt for one test case
func BuildScriptPrompt(in ScriptInput) (string, error) {
	tcJSON, err := json.MarshalIndent(in.TestCase, "", "  ")
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode test case for prompt",
			goerr.V(model.TestIDKey, in.TestCase.TestID))
	}

	var sb strings.Builder

	sb.WriteString("You are a senior Python Selenium engineer. Write one complete, runnable script that automates the test case below.\n\n")

	sb.WriteString("## Test case\n\n")
	sb.Write(tcJSON)
	sb.WriteString("\n\n")

	sb.WriteString("## Target HTML page\n\n")
	sb.WriteString(auxiliaryOrMarker(in.AuxiliaryContent))
	sb.WriteString("\n\n")

	sb.WriteString("## Documentation\n\n")
	sb.WriteString(RenderContext(in.Retrieved))
	sb.WriteString("\n\n")

	sb.WriteString("## Requirements\n\n")
	sb.WriteString("- Locate elements with the ids, names or selectors that exist in the HTML page, preferring ids.\n")
	sb.WriteString("- Use WebDriverWait with expected_conditions instead of sleeps.\n")
	sb.WriteString("- Perform every step of Test_Scenario in order.\n")
	sb.WriteString("- Assert every outcome stated in Expected_Result.\n")
	sb.WriteString("- Quit the driver in a finally block.\n")
	fmt.Fprintf(&sb, "- Start with a comment naming %s.\n\n", in.TestCase.TestID)

	sb.WriteString("Reply with Python code only: no markdown fences and no explanation before or after the code.\n")

	return sb.String(), nil
}
