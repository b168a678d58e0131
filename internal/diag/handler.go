package diag

import (
	"fmt"

	"github.com/arrayir/shapecheck/internal/ir"
)

// Handler is the scoped diagnostic collector for one pipeline invocation.
//
// Lifecycle: acquire with NewHandler at call entry, emit during the call,
// then Consume exactly once on every exit path (success or failure). Consume
// tears the handler down; emitting after consumption panics, which catches
// diagnostics escaping their call scope.
type Handler struct {
	runID    string
	diags    []Diagnostic
	consumed bool
}

// NewHandler creates a collector tagged with a fresh run ID.
func NewHandler(gen RunIDGenerator) *Handler {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Handler{runID: gen.Generate()}
}

// RunID returns the invocation identifier the handler was created with.
func (h *Handler) RunID() string { return h.runID }

// Emit records a diagnostic at a location.
func (h *Handler) Emit(c Category, loc ir.Location, format string, args ...any) {
	if h.consumed {
		panic("diag: emit after consume")
	}
	h.diags = append(h.diags, Diagnostic{
		Category: c,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
	})
}

// Count returns the number of diagnostics recorded so far.
func (h *Handler) Count() int { return len(h.diags) }

// Consume flushes the handler into a Report and marks it torn down. Safe to
// call once per handler; the second call panics.
func (h *Handler) Consume() Report {
	if h.consumed {
		panic("diag: double consume")
	}
	h.consumed = true
	r := Report{RunID: h.runID, Diagnostics: h.diags}
	h.diags = nil
	return r
}
