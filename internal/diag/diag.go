// Package diag provides the per-call diagnostics protocol: a category
// taxonomy with stable codes, a scoped collector acquired at call entry and
// consumed exactly once on every exit path, and run identifiers for tracing.
//
// Nothing here is process-global. Each pipeline invocation owns its Handler;
// diagnostics never persist across calls.
package diag

import (
	"fmt"
	"strings"

	"github.com/arrayir/shapecheck/internal/ir"
)

// Category classifies a diagnostic or a pipeline failure.
type Category int

// Failure categories, in pipeline order. All are terminal for the current
// invocation; nothing retries.
const (
	MalformedInput Category = iota
	ParseFailure
	PipelineStageFailure
	SchemaViolation
	NonStaticOperand
	AssertionFailed
	ResidualDynamicShape
	ResidualAssertion
	SerializeFailure
)

// Stable diagnostic codes (S100-S199), one per category.
var categoryCodes = map[Category]string{
	MalformedInput:       "S100",
	ParseFailure:         "S101",
	PipelineStageFailure: "S102",
	SchemaViolation:      "S110",
	NonStaticOperand:     "S111",
	AssertionFailed:      "S112",
	ResidualDynamicShape: "S120",
	ResidualAssertion:    "S121",
	SerializeFailure:     "S130",
}

var categoryNames = map[Category]string{
	MalformedInput:       "MalformedInput",
	ParseFailure:         "ParseFailure",
	PipelineStageFailure: "PipelineStageFailure",
	SchemaViolation:      "SchemaViolation",
	NonStaticOperand:     "NonStaticOperand",
	AssertionFailed:      "AssertionFailed",
	ResidualDynamicShape: "ResidualDynamicShape",
	ResidualAssertion:    "ResidualAssertion",
	SerializeFailure:     "SerializeFailure",
}

// Code returns the stable S-code for the category.
func (c Category) Code() string { return categoryCodes[c] }

// String returns the category name.
func (c Category) String() string { return categoryNames[c] }

// ParseCategory maps a category name back to its value (used by the scenario
// harness). Returns false for unknown names.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// Diagnostic is one error attached to a source location.
type Diagnostic struct {
	Category Category
	Message  string
	Loc      ir.Location
}

// String renders "loc: [code] message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: [%s] %s", d.Loc, d.Category.Code(), d.Message)
}

// Report is the consumed form of a handler: every diagnostic recorded during
// one call, in emission order.
type Report struct {
	RunID       string
	Diagnostics []Diagnostic
}

// Empty reports whether no diagnostics were recorded.
func (r Report) Empty() bool { return len(r.Diagnostics) == 0 }

// Text concatenates all diagnostics into the single human-readable failure
// message surfaced to callers.
func (r Report) Text() string {
	lines := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Has reports whether any diagnostic carries the given category.
func (r Report) Has(c Category) bool {
	for _, d := range r.Diagnostics {
		if d.Category == c {
			return true
		}
	}
	return false
}
