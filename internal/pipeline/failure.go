// Package pipeline orchestrates shape refinement: structural verification,
// the refinement stages, the shape-assertion verification pass, and the
// final static-shape validation, with per-call diagnostic aggregation.
package pipeline

import (
	"fmt"

	"github.com/arrayir/shapecheck/internal/diag"
)

// Stage tags carried on failures. Parse, pipeline, and serialize failures of
// the textual entry point share the category taxonomy but are told apart by
// the stage tag.
const (
	StageParse     = "parse"
	StageVerify    = "verify-module"
	StageCheck     = "check-shape-assertions"
	StageValidate  = "validate-static-shapes"
	StageSerialize = "serialize"
)

// Failure is the single structured error a pipeline invocation surfaces. It
// aggregates every diagnostic recorded during the call; nothing is silently
// discarded. All failures are terminal — callers must not retry and must not
// proceed to backend lowering.
type Failure struct {
	Category diag.Category
	Stage    string
	Report   diag.Report
}

// Error implements the error interface with the concatenated diagnostic
// text.
func (f *Failure) Error() string {
	if f.Report.Empty() {
		return fmt.Sprintf("%s: %s", f.Stage, f.Category)
	}
	return fmt.Sprintf("%s: %s:\n%s", f.Stage, f.Category, f.Report.Text())
}

// failure consumes the handler into a Failure.
func failure(c diag.Category, stage string, h *diag.Handler) *Failure {
	return &Failure{Category: c, Stage: stage, Report: h.Consume()}
}
