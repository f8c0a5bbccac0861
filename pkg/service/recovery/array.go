package recovery

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/tidwall/gjson"
)

var testCasesArrayStart = regexp.MustCompile(`"test_cases"\s*:\s*\[`)

// ParseArrayScoped locates the test_cases array and decodes every object in
// it on its own, so one corrupt record does not sink its neighbours.
func ParseArrayScoped(text string) ([]model.Candidate, error) {
	loc := testCasesArrayStart.FindStringIndex(text)
	if loc == nil {
		return nil, goerr.Wrap(ErrMissingTestCases, "test_cases array start not found")
	}

	var candidates []model.Candidate
	for _, raw := range scanObjects(text[loc[1]:]) {
		obj := repairJSON(raw)
		if !gjson.Valid(obj) {
			continue
		}
		if r := gjson.Parse(obj); r.IsObject() {
			candidates = append(candidates, toCandidate(r))
		}
	}

	if len(candidates) == 0 {
		return nil, goerr.Wrap(ErrNoRecoverableItem, "no object in test_cases array could be decoded")
	}
	return candidates, nil
}
