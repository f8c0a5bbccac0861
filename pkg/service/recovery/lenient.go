package recovery

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/tidwall/gjson"
)

const testCasesKey = "test_cases"

// ParseLenient treats the whole text as one JSON document after removing
// fences and prose around it and repairing common lexical faults. A document
// without a test_cases array is a structural failure; an empty array is not.
func ParseLenient(text string) ([]model.Candidate, error) {
	body, ok := sliceObject(stripFences(text))
	if !ok {
		return nil, goerr.Wrap(ErrNoObject, "no braces in text")
	}

	body = repairJSON(body)
	if !gjson.Valid(body) {
		return nil, goerr.Wrap(ErrMalformedJSON, "repaired object is still invalid")
	}

	arr := gjson.Get(body, testCasesKey)
	if !arr.IsArray() {
		return nil, goerr.Wrap(ErrMissingTestCases, "top level object has no test_cases array")
	}

	items := arr.Array()
	candidates := make([]model.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, toCandidate(item))
	}
	return candidates, nil
}

// toCandidate converts one array element. Non-object elements become empty
// candidates so the validator rejects them one by one.
func toCandidate(item gjson.Result) model.Candidate {
	if !item.IsObject() {
		return model.Candidate{}
	}
	m, ok := item.Value().(map[string]any)
	if !ok {
		return model.Candidate{}
	}
	return model.Candidate(m)
}
