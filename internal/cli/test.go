package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arrayir/shapecheck/internal/harness"
)

// TestResult is the payload of the test command.
type TestResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []TestFailure  `json:"failures,omitempty"`
	Outcomes []TestScenario `json:"outcomes"`
}

// TestScenario is one scenario's result.
type TestScenario struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Pass    bool   `json:"pass"`
}

// TestFailure describes one failed scenario.
type TestFailure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <scenario-dir>",
		Short: "Run conformance scenario files against the pipeline",
		Long: `Test loads every *.yaml scenario in the directory, validates each against
the scenario schema, runs the refinement pipeline on its module, and checks
the outcome against the scenario's expectations.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runTest(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	paths, err := findScenarioFiles(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "scanning scenario directory", err)
	}
	if len(paths) == 0 {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no scenario files found in %s", dir), nil)
	}

	result := TestResult{Total: len(paths)}
	for _, path := range paths {
		sc, err := harness.LoadScenario(path)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, TestFailure{
				Name:    filepath.Base(path),
				Message: err.Error(),
			})
			continue
		}
		formatter.VerboseLog("running scenario %s", sc.Name)
		out, err := harness.Run(sc, filepath.Dir(path))
		if err == nil {
			err = out.Check(sc)
		}
		status := ""
		if out != nil {
			status = out.Status
		}
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, TestFailure{Name: sc.Name, Message: err.Error()})
			result.Outcomes = append(result.Outcomes, TestScenario{Name: sc.Name, Outcome: status, Pass: false})
			continue
		}
		result.Passed++
		result.Outcomes = append(result.Outcomes, TestScenario{Name: sc.Name, Outcome: status, Pass: true})
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d/%d scenario(s) failed", result.Failed, result.Total)
		if opts.Format == "json" {
			return formatter.Failure(ExitFailure, &CLIError{Code: "TEST", Message: msg}, "")
		}
		for _, f := range result.Failures {
			fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", f.Name, f.Message)
		}
		fmt.Fprintf(formatter.Writer, "%s\n", msg)
		return &ExitError{Code: ExitFailure, Message: msg}
	}

	if opts.Format == "json" {
		return formatter.Success(result, "")
	}
	fmt.Fprintf(formatter.Writer, "✓ %d/%d scenario(s) passed\n", result.Passed, result.Total)
	return nil
}

func findScenarioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
