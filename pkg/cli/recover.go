package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type recoverReport struct {
	Strategy  types.RecoveryStrategy `json:"strategy"`
	TestCases []model.TestCase       `json:"test_cases"`
	Rejected  []rejectedRecord       `json:"rejected,omitempty"`
}

type rejectedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func cmdRecover() *cli.Command {
	var (
		input  string
		output string
		pf     pipelineFlags
	)

	return &cli.Command{
		Name:  "recover",
		Usage: "Decode and validate a saved model response without calling the model",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Usage:       "File holding the raw model response (stdin when omitted)",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Write the JSON report to this file instead of stdout",
				Destination: &output,
			},
		}, pf.pipeline.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := readInput(input)
			if err != nil {
				return err
			}

			cfg, err := pf.pipeline.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load pipeline config")
			}

			report, err := runRecover(ctx, cfg.RecoveryEngine(), raw)
			if err != nil {
				printStatus(os.Stderr, types.StatusError, err.Error())
				return err
			}

			printStatus(os.Stderr, types.StatusSuccess, string(report.Strategy))
			printTestCases(os.Stderr, report.TestCases)
			return writeReport(ctx, output, report)
		},
	}
}

func runRecover(ctx context.Context, engine *recovery.Engine, raw string) (*recoverReport, error) {
	result, err := engine.Recover(ctx, raw)
	if err != nil {
		return nil, err
	}

	accepted, rejected := model.NewTestCaseValidator().ValidateBatch(result.Candidates)
	report := &recoverReport{
		Strategy:  result.Strategy,
		TestCases: accepted,
	}
	for _, r := range rejected {
		logging.From(ctx).Warn("candidate rejected", "index", r.Index, "error", r.Err)
		report.Rejected = append(report.Rejected, rejectedRecord{Index: r.Index, Reason: r.Err.Error()})
	}
	return report, nil
}

func readInput(path string) (string, error) {
	if path == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(raw), nil
	}

	// #nosec G304 - path is provided by CLI flag
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read input", goerr.V("path", path))
	}
	return string(raw), nil
}
