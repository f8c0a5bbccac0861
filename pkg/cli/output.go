package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/utils/safe"
)

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dimLabel  = color.New(color.FgCyan).SprintFunc()
)

// printStatus writes a one line colored summary of an operation result
func printStatus(w io.Writer, status types.Status, message string) {
	label := okLabel("OK")
	if status != types.StatusSuccess {
		label = failLabel("NG")
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", label, message)
}

func printTestCases(w io.Writer, cases []model.TestCase) {
	for _, tc := range cases {
		_, _ = fmt.Fprintf(w, "  %s %s\n", dimLabel(tc.TestID), tc.TestScenario)
	}
}

// writeReport encodes v as indented JSON to path, or to stdout when path is empty
func writeReport(ctx context.Context, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode report")
	}
	data = append(data, '\n')

	if path == "" {
		safe.Write(ctx, os.Stdout, data)
		return nil
	}

	// #nosec G304 - path is provided by CLI flag
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return goerr.Wrap(err, "failed to open output file", goerr.V("path", path))
	}
	defer safe.Close(ctx, f)

	if _, err := f.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write report", goerr.V("path", path))
	}
	return nil
}
