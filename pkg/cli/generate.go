package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/usecase"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var errGenerationFailed = goerr.New("generation failed")

type generateReport struct {
	Ingest    *model.IngestResult   `json:"ingest"`
	TestCases *model.TestCaseResult `json:"test_cases,omitempty"`
	Scripts   []*model.ScriptResult `json:"scripts,omitempty"`
}

func cmdGenerate() *cli.Command {
	var (
		docs        []string
		htmlPath    string
		intent      string
		withScripts bool
		output      string
		pf          pipelineFlags
	)

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "doc",
			Aliases:     []string{"d"},
			Usage:       "Document file to ingest (repeatable)",
			Required:    true,
			Destination: &docs,
		},
		&cli.StringFlag{
			Name:        "html",
			Usage:       "HTML of the page under test, used for script generation",
			Destination: &htmlPath,
		},
		&cli.StringFlag{
			Name:        "intent",
			Aliases:     []string{"i"},
			Usage:       "What the generated test cases should cover",
			Required:    true,
			Destination: &intent,
		},
		&cli.BoolFlag{
			Name:        "scripts",
			Usage:       "Also generate an automation script for every test case",
			Destination: &withScripts,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write the JSON report to this file instead of stdout",
			Destination: &output,
		},
	}
	flags = append(flags, pf.Flags()...)

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Ingest documents and generate test cases in one run",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			documents, err := readDocuments(docs)
			if err != nil {
				return err
			}

			var aux string
			if htmlPath != "" {
				// #nosec G304 - path is provided by CLI flag
				raw, err := os.ReadFile(htmlPath)
				if err != nil {
					return goerr.Wrap(err, "failed to read HTML file", goerr.V("path", htmlPath))
				}
				aux = string(raw)
			}

			session, closer, err := pf.newSession(ctx)
			if err != nil {
				return err
			}
			defer closer()

			report, err := runGenerate(ctx, session, documents, aux, intent, withScripts)
			if werr := writeReport(ctx, output, report); werr != nil {
				return werr
			}
			return err
		},
	}
}

func runGenerate(ctx context.Context, session *usecase.Session, docs []model.Document, aux, intent string, withScripts bool) (*generateReport, error) {
	report := &generateReport{}
	stderr := os.Stderr

	report.Ingest = session.Ingest(ctx, docs, aux)
	printStatus(stderr, report.Ingest.Status, report.Ingest.Message)
	if report.Ingest.Status != types.StatusSuccess {
		return report, goerr.Wrap(errGenerationFailed, "ingest failed", goerr.V("error_kind", report.Ingest.ErrorKind))
	}

	report.TestCases = session.GenerateTestCases(ctx, intent)
	printStatus(stderr, report.TestCases.Status, report.TestCases.Message)
	if report.TestCases.Status != types.StatusSuccess {
		return report, goerr.Wrap(errGenerationFailed, "test case generation failed",
			goerr.V("error_kind", report.TestCases.ErrorKind))
	}
	printTestCases(stderr, report.TestCases.TestCases)

	if !withScripts {
		return report, nil
	}

	for _, tc := range report.TestCases.TestCases {
		result := session.GenerateScript(ctx, tc)
		printStatus(stderr, result.Status, result.Message)
		if result.Status != types.StatusSuccess {
			logging.From(ctx).Warn("script generation failed", "test_id", tc.TestID, "error_kind", result.ErrorKind)
		}
		report.Scripts = append(report.Scripts, result)
	}

	return report, nil
}

func readDocuments(paths []string) ([]model.Document, error) {
	docs := make([]model.Document, 0, len(paths))
	for _, path := range paths {
		// #nosec G304 - path is provided by CLI flag
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read document", goerr.V("path", path))
		}
		docs = append(docs, model.Document{Name: filepath.Base(path), Content: raw})
	}
	return docs, nil
}
