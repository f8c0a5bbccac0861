package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// TestCaseValidator checks decoded candidates against the test case schema.
// Values are never coerced: a number where a string is expected is a rejection.
type TestCaseValidator struct {
	required []string
}

// NewTestCaseValidator creates a validator for the six required test case fields
func NewTestCaseValidator() *TestCaseValidator {
	return &TestCaseValidator{
		required: TestCaseFields(),
	}
}

// Rejection records why a single candidate was dropped
type Rejection struct {
	Index     int
	Candidate Candidate
	Err       error
}

// Validate converts c into a TestCase or returns an error wrapping
// ErrValidationRejected together with the specific reason.
// Unknown extra keys are ignored.
func (v *TestCaseValidator) Validate(c Candidate) (*TestCase, error) {
	values := make(map[string]string, len(v.required))

	for _, field := range v.required {
		raw, ok := c[field]
		if !ok || raw == nil {
			return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrValidationRejected, ErrMissingRequired),
				"required field not provided",
				goerr.V(FieldIDKey, field))
		}

		s, ok := raw.(string)
		if !ok {
			return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrValidationRejected, ErrInvalidFieldType),
				"value must be string",
				goerr.V(FieldIDKey, field),
				goerr.V(ExpectedTypeKey, "string"),
				goerr.V(ActualTypeKey, fmt.Sprintf("%T", raw)))
		}
		values[field] = s
	}

	return &TestCase{
		TestID:         values[FieldTestID],
		Feature:        values[FieldFeature],
		TestScenario:   values[FieldTestScenario],
		ExpectedResult: values[FieldExpectedResult],
		TriggeringRule: values[FieldTriggeringRule],
		GroundedIn:     values[FieldGroundedIn],
	}, nil
}

// ValidateBatch validates each candidate independently. Accepted records keep
// their input order; a rejection never affects the other candidates.
func (v *TestCaseValidator) ValidateBatch(candidates []Candidate) ([]TestCase, []Rejection) {
	accepted := make([]TestCase, 0, len(candidates))
	var rejected []Rejection

	for i, c := range candidates {
		tc, err := v.Validate(c)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Candidate: c, Err: err})
			continue
		}
		accepted = append(accepted, *tc)
	}

	return accepted, rejected
}
