package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arrayir/shapecheck/internal/pipeline"
)

// RefineOptions holds flags for the refine command.
type RefineOptions struct {
	*RootOptions
	Output           string
	EnableAssertions bool
}

// RefineResult is the success payload of the refine command.
type RefineResult struct {
	Module      string `json:"module"`
	Output      string `json:"output"`
	Fingerprint string `json:"fingerprint"`
	Bytes       int    `json:"bytes"`
}

// String renders the text form.
func (r RefineResult) String() string {
	return fmt.Sprintf("✓ refined %s → %s (%d bytes, fingerprint %s)",
		r.Module, r.Output, r.Bytes, r.Fingerprint[:12])
}

// NewRefineCommand creates the refine command.
func NewRefineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RefineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "refine <module.air>",
		Short: "Refine a textual module to static shapes and emit bytecode",
		Long: `Refine parses a textual IR module, runs the shape-refinement pipeline
(inlining, CSE, shape refinement, dynamism canonicalization, shape-assertion
checking), validates that every shape is static, and writes the bytecode form
of the result.

Parse failures, pipeline failures, and serialize failures are reported as
distinct outcomes; any failure blocks bytecode emission.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output bytecode path (default: input with .arbc extension)")
	cmd.Flags().BoolVar(&opts.EnableAssertions, "enable-assertions", true, "whether shape assertions may generate errors")

	return cmd
}

func runRefine(opts *RefineOptions, inPath string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("refining %s (assertions enabled: %t)", moduleName, opts.EnableAssertions)

	popts := pipeline.Options{
		EnableShapeAssertions: opts.EnableAssertions,
		Verbose:               opts.Verbose,
		TraceWriter:           cmd.ErrOrStderr(),
	}

	var bc bytes.Buffer
	res, rerr := pipeline.RefineText(src, moduleName, &bc, popts)
	appendJournal(opts.RootOptions, formatter, runRecord(moduleName, res, rerr))
	if rerr != nil {
		return failureError(formatter, rerr, res.RunID)
	}

	outPath := opts.Output
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".arbc"
	}
	if err := os.WriteFile(outPath, bc.Bytes(), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing bytecode", err)
	}

	return formatter.Success(RefineResult{
		Module:      moduleName,
		Output:      outPath,
		Fingerprint: res.Fingerprint,
		Bytes:       bc.Len(),
	}, res.RunID)
}
