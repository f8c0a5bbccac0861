package recovery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
)

// Values used when an anchored record lacks a field
const (
	FallbackFeature        = "Unknown Feature"
	FallbackDescription    = "See raw response"
	FallbackTriggeringRule = "Not specified"
	FallbackGroundedIn     = "Unknown"
)

type fieldPattern struct {
	name     string
	re       *regexp.Regexp
	fallback string
}

// fieldRegexp captures a value on the same line as its field name. The value
// stops at a quote, comma, closing brace or newline, so long prose values
// are cut short.
func fieldRegexp(field string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)["']?` + field + `["']?\s*[:=]\s*["']?([^"',}\n]+)`)
}

func anchorRegexp(field string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)["']?` + field + `["']?\s*[:=]`)
}

var (
	testIDAnchor  = anchorRegexp(model.FieldTestID)
	featureAnchor = anchorRegexp(model.FieldFeature)

	anchoredFields = []fieldPattern{
		{name: model.FieldTestID, re: fieldRegexp(model.FieldTestID)},
		{name: model.FieldFeature, re: fieldRegexp(model.FieldFeature), fallback: FallbackFeature},
		{name: model.FieldTestScenario, re: fieldRegexp(model.FieldTestScenario), fallback: FallbackDescription},
		{name: model.FieldExpectedResult, re: fieldRegexp(model.FieldExpectedResult), fallback: FallbackDescription},
		{name: model.FieldTriggeringRule, re: fieldRegexp(model.FieldTriggeringRule), fallback: FallbackTriggeringRule},
		{name: model.FieldGroundedIn, re: fieldRegexp(model.FieldGroundedIn), fallback: FallbackGroundedIn},
	}
)

// ExtractAnchored is the last resort for text that is not JSON at all. Each
// occurrence of the Test_ID field (or Feature when no Test_ID appears)
// starts a record that runs until the next occurrence. Fields are captured
// with single line patterns and missing ones get placeholder values.
func ExtractAnchored(text string) ([]model.Candidate, error) {
	anchors := testIDAnchor.FindAllStringIndex(text, -1)
	if len(anchors) == 0 {
		anchors = featureAnchor.FindAllStringIndex(text, -1)
	}
	if len(anchors) == 0 {
		return nil, goerr.Wrap(ErrNoAnchor, "neither Test_ID nor Feature appears in text")
	}

	var candidates []model.Candidate
	for i, anchor := range anchors {
		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1][0]
		}

		if c, ok := extractRecord(text[anchor[0]:end], i+1); ok {
			candidates = append(candidates, c)
		}
	}

	if len(candidates) == 0 {
		return nil, goerr.Wrap(ErrNoRecoverableItem, "anchors found but no field could be captured",
			goerr.V("anchors", len(anchors)))
	}
	return candidates, nil
}

func extractRecord(span string, ordinal int) (model.Candidate, bool) {
	c := make(model.Candidate, len(anchoredFields))
	matched := 0

	for _, f := range anchoredFields {
		if m := f.re.FindStringSubmatch(span); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				c[f.name] = v
				matched++
				continue
			}
		}

		if f.name == model.FieldTestID {
			c[f.name] = fmt.Sprintf("TC-%03d", ordinal)
		} else {
			c[f.name] = f.fallback
		}
	}

	return c, matched > 0
}
