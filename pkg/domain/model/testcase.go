package model

import "github.com/secmon-lab/casewright/pkg/domain/types"

// Test case field names. They double as the JSON keys the model is asked to emit.
const (
	FieldTestID         = "Test_ID"
	FieldFeature        = "Feature"
	FieldTestScenario   = "Test_Scenario"
	FieldExpectedResult = "Expected_Result"
	FieldTriggeringRule = "Triggering_Rule"
	FieldGroundedIn     = "Grounded_In"
)

// TestCaseFields returns the required test case fields in canonical order
func TestCaseFields() []string {
	return []string{
		FieldTestID,
		FieldFeature,
		FieldTestScenario,
		FieldExpectedResult,
		FieldTriggeringRule,
		FieldGroundedIn,
	}
}

// TestCase is a validated test case record
type TestCase struct {
	TestID         string `json:"Test_ID"`
	Feature        string `json:"Feature"`
	TestScenario   string `json:"Test_Scenario"`
	ExpectedResult string `json:"Expected_Result"`
	TriggeringRule string `json:"Triggering_Rule"`
	GroundedIn     string `json:"Grounded_In"`
}

// Candidate converts the record back to its unvalidated form
func (tc TestCase) Candidate() Candidate {
	return Candidate{
		FieldTestID:         tc.TestID,
		FieldFeature:        tc.Feature,
		FieldTestScenario:   tc.TestScenario,
		FieldExpectedResult: tc.ExpectedResult,
		FieldTriggeringRule: tc.TriggeringRule,
		FieldGroundedIn:     tc.GroundedIn,
	}
}

// Candidate is a decoded record that has not been validated yet
type Candidate map[string]any

// TestCaseBatch is the validated output of one generation call
type TestCaseBatch struct {
	TestCases []TestCase
	Strategy  types.RecoveryStrategy
	Rejected  int
}

// GeneratedScript is an automation script produced for one test case
type GeneratedScript struct {
	Script   string
	TestCase TestCase
}
