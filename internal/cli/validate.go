package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/parser"
	"github.com/arrayir/shapecheck/internal/pipeline"
)

// ValidateResult is the success payload of the validate command.
type ValidateResult struct {
	Module      string `json:"module"`
	Fingerprint string `json:"fingerprint"`
}

// String renders the text form.
func (r ValidateResult) String() string {
	return fmt.Sprintf("✓ %s has fully static shapes and no residual assertions", r.Module)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <module.air>",
		Short: "Check a textual module for static shapes and residual assertions",
		Long: `Validate runs only the static-shape post-condition check: every result
and block-argument shape must be static and no shape_assertion op may
remain. No refinement is performed; the module is not mutated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, inPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := os.ReadFile(inPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading module", err)
	}
	moduleName := filepath.Base(inPath)

	m, perr := parser.Parse(src, moduleName)
	if perr != nil {
		return formatter.Failure(ExitFailure, &CLIError{
			Code:     diag.ParseFailure.Code(),
			Category: diag.ParseFailure.String(),
			Stage:    pipeline.StageParse,
			Message:  fmt.Sprintf("cannot parse module: %v", perr),
		}, "")
	}

	res, rerr := pipeline.ValidateStatic(m, pipeline.Options{Verbose: opts.Verbose})
	appendJournal(opts, formatter, runRecord(moduleName, res, rerr))
	if rerr != nil {
		return failureError(formatter, rerr, res.RunID)
	}

	return formatter.Success(ValidateResult{
		Module:      moduleName,
		Fingerprint: res.Fingerprint,
	}, res.RunID)
}
