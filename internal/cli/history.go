package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arrayir/shapecheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded refinement runs from the journal",
		Long: `History lists runs recorded in the journal database (--journal),
newest first. Each row carries the run ID, module, outcome, and failure
category if any.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to list (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Journal == "" {
		return WrapExitError(ExitCommandError, "history requires --journal", nil)
	}
	st, err := store.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening journal", err)
	}
	defer st.Close()

	recs, err := st.ListRuns(context.Background(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	if opts.Format == "json" {
		return formatter.Success(recs, "")
	}
	if len(recs) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}
	for _, r := range recs {
		if r.Outcome == store.OutcomeOK {
			fmt.Fprintf(formatter.Writer, "%4d  %s  %-20s  ok    %s\n", r.Seq, r.ID, r.ModuleName, r.Fingerprint[:min(12, len(r.Fingerprint))])
		} else {
			fmt.Fprintf(formatter.Writer, "%4d  %s  %-20s  fail  %s (%s)\n", r.Seq, r.ID, r.ModuleName, r.Category, r.Stage)
		}
	}
	return nil
}
