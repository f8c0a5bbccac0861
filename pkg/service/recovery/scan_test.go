package recovery_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "line comment", in: "{\"a\": 1 // one\n}", want: "{\"a\": 1 \n}"},
		{name: "block comment", in: `{/* c */"a": 1}`, want: `{"a": 1}`},
		{name: "slashes inside a string", in: `{"url": "https://x/*y*/"}`, want: `{"url": "https://x/*y*/"}`},
		{name: "raw newline inside a string is kept", in: "{\"a\": \"x\ny\"}", want: "{\"a\": \"x\ny\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, recovery.StripComments(tt.in)).Equal(tt.want)
		})
	}
}

func TestEscapeControls(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "newline and tab in a string", in: "{\"a\": \"x\ny\tz\"}", want: `{"a": "x\ny\tz"}`},
		{name: "carriage return", in: "{\"a\": \"x\r\"}", want: `{"a": "x\r"}`},
		{name: "whitespace between tokens untouched", in: "{\n\t\"a\": 1\n}", want: "{\n\t\"a\": 1\n}"},
		{name: "escaped quote keeps string state", in: "{\"a\": \"q\\\"\n\"}", want: `{"a": "q\"\n"}`},
		{name: "comment markers are not interpreted", in: "{\"a\": 1 // c\n}", want: "{\"a\": 1 // c\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, recovery.EscapeControls(tt.in)).Equal(tt.want)
		})
	}
}

func TestDropTrailingCommas(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "before closing brace", in: `{"a": 1,}`, want: `{"a": 1}`},
		{name: "before closing bracket with whitespace", in: "[1, 2,\n  ]", want: "[1, 2\n  ]"},
		{name: "separator kept", in: `{"a": 1, "b": 2}`, want: `{"a": 1, "b": 2}`},
		{name: "comma inside a string", in: `{"a": "x,}"}`, want: `{"a": "x,}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, recovery.DropTrailingCommas(tt.in)).Equal(tt.want)
		})
	}
}
