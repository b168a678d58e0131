package cli

import (
	"context"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/pipeline"
	"github.com/arrayir/shapecheck/internal/store"
)

// appendJournal records one run in the journal database when --journal is
// set. Journaling is observability: a journal write failure is reported but
// does not change the pipeline outcome already computed.
func appendJournal(opts *RootOptions, formatter *OutputFormatter, rec store.RunRecord) {
	if opts.Journal == "" {
		return
	}
	st, err := store.Open(opts.Journal)
	if err != nil {
		formatter.VerboseLog("journal: %v", err)
		return
	}
	defer st.Close()
	if err := st.WriteRun(context.Background(), rec); err != nil {
		formatter.VerboseLog("journal: %v", err)
	}
}

// runRecord builds a journal row from a pipeline result or failure.
func runRecord(moduleName string, res pipeline.Result, rerr error) store.RunRecord {
	rec := store.RunRecord{
		ID:          res.RunID,
		ModuleName:  moduleName,
		Fingerprint: res.Fingerprint,
		Outcome:     store.OutcomeOK,
	}
	if rerr != nil {
		rec.Outcome = store.OutcomeFail
		rec.Fingerprint = ""
		if f, ok := rerr.(*pipeline.Failure); ok {
			rec.Stage = f.Stage
			rec.Category = f.Category.String()
			rec.Report = f.Report.Text()
		} else {
			rec.Report = rerr.Error()
		}
	}
	return rec
}

// failureError renders a pipeline failure through the formatter.
func failureError(formatter *OutputFormatter, rerr error, runID string) error {
	if f, ok := rerr.(*pipeline.Failure); ok {
		return formatter.Failure(ExitFailure, &CLIError{
			Code:     f.Category.Code(),
			Category: f.Category.String(),
			Stage:    f.Stage,
			Message:  f.Error(),
		}, runID)
	}
	return formatter.Failure(ExitFailure, &CLIError{
		Code:    diag.PipelineStageFailure.Code(),
		Message: rerr.Error(),
	}, runID)
}
