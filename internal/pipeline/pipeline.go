package pipeline

import (
	"fmt"
	"io"

	"github.com/arrayir/shapecheck/internal/bytecode"
	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
	"github.com/arrayir/shapecheck/internal/parser"
	"github.com/arrayir/shapecheck/internal/passes"
)

// Options configures one pipeline invocation.
type Options struct {
	// EnableShapeAssertions selects full schema validation and discharge of
	// shape_assertion ops. When false, assertions are erased unconditionally
	// without validation.
	EnableShapeAssertions bool

	// Verbose enables per-stage tracing to TraceWriter. Execution is
	// synchronous either way; the flag only adds deterministic stage logs
	// for debugging.
	Verbose bool

	// TraceWriter receives verbose trace lines. Defaults to io.Discard.
	TraceWriter io.Writer

	// RunIDs overrides run-ID generation; tests use a fixed sequence for
	// golden comparison. Defaults to UUIDv7.
	RunIDs diag.RunIDGenerator
}

// Result describes a successful invocation.
type Result struct {
	RunID string
	// Fingerprint is the content hash of the refined module. Empty until the
	// pipeline succeeds.
	Fingerprint string
}

// Refine runs the full refinement pipeline over the module in place.
//
// Fixed stage order, each step gating the next: structural verification,
// call inlining, CSE, shape refinement, dynamism canonicalization, the
// shape-assertion verification pass, and static-shape validation. On success
// the module has fully static result and block-argument shapes and contains
// zero shape_assertion ops.
//
// The module is owned by this call for its duration; no other mutation is
// permitted while Refine runs. The diagnostic handler is scoped to the call
// and consumed on every exit path.
func Refine(m *ir.Module, opts Options) (Result, error) {
	h := diag.NewHandler(opts.RunIDs)
	res := Result{RunID: h.RunID()}
	trace := opts.traceWriter()

	// Verify the module before running passes on it; running the pipeline
	// over malformed IR produces unattributable errors.
	if errs := ir.Verify(m); len(errs) > 0 {
		for _, e := range errs {
			h.Emit(diag.MalformedInput, ir.Location{}, "module verification failed: %s", e.Error())
		}
		return res, failure(diag.MalformedInput, StageVerify, h)
	}

	for _, stage := range refinementStages() {
		if opts.Verbose {
			fmt.Fprintf(trace, "[%s] running stage %s\n", res.RunID, stage.Name())
		}
		if err := stage.Run(m, h); err != nil {
			return res, failure(diag.PipelineStageFailure, stage.Name(), h)
		}
	}

	check := passes.CheckShapeAssertions{Enable: opts.EnableShapeAssertions}
	if opts.Verbose {
		fmt.Fprintf(trace, "[%s] running stage %s (enabled=%t)\n", res.RunID, check.Name(), opts.EnableShapeAssertions)
	}
	if err := check.Run(m, h); err != nil {
		// The walk completed: the report carries diagnostics for every
		// offending assertion, not just the first. The failure category
		// follows the first diagnostic recorded.
		rep := h.Consume()
		cat := diag.AssertionFailed
		if len(rep.Diagnostics) > 0 {
			cat = rep.Diagnostics[0].Category
		}
		return res, &Failure{Category: cat, Stage: StageCheck, Report: rep}
	}

	hasDynamic, hasResidual := validateStaticShapes(m, h)
	rep := h.Consume()
	if hasDynamic {
		return res, &Failure{Category: diag.ResidualDynamicShape, Stage: StageValidate, Report: rep}
	}
	if hasResidual {
		return res, &Failure{Category: diag.ResidualAssertion, Stage: StageValidate, Report: rep}
	}
	res.Fingerprint = ir.Fingerprint(m)
	return res, nil
}

// RefineText parses a textual module against the fixed dialect registry,
// refines it, and serializes the result as bytecode to w on success. Parse,
// pipeline, and serialize failures are three distinct outcomes told apart by
// the failure's stage tag.
func RefineText(src []byte, name string, w io.Writer, opts Options) (Result, error) {
	m, err := parser.Parse(src, name)
	if err != nil {
		h := diag.NewHandler(opts.RunIDs)
		res := Result{RunID: h.RunID()}
		var perr *parser.ParseError
		if pe, ok := err.(*parser.ParseError); ok {
			perr = pe
		}
		if perr != nil {
			h.Emit(diag.ParseFailure, perr.Loc, "cannot parse module: %s", perr.Message)
		} else {
			h.Emit(diag.ParseFailure, ir.Location{}, "cannot parse module: %v", err)
		}
		return res, failure(diag.ParseFailure, StageParse, h)
	}

	res, rerr := Refine(m, opts)
	if rerr != nil {
		return res, rerr
	}

	if err := bytecode.Write(w, m); err != nil {
		h := diag.NewHandler(diag.NewFixedGenerator(res.RunID))
		h.Emit(diag.SerializeFailure, ir.Location{}, "cannot serialize module: %v", err)
		return res, failure(diag.SerializeFailure, StageSerialize, h)
	}
	return res, nil
}

// ValidateStatic runs only the static-shape validator (no refinement). It is
// idempotent on valid modules and mutates nothing.
func ValidateStatic(m *ir.Module, opts Options) (Result, error) {
	h := diag.NewHandler(opts.RunIDs)
	res := Result{RunID: h.RunID()}
	hasDynamic, hasResidual := validateStaticShapes(m, h)
	rep := h.Consume()
	if hasDynamic {
		return res, &Failure{Category: diag.ResidualDynamicShape, Stage: StageValidate, Report: rep}
	}
	if hasResidual {
		return res, &Failure{Category: diag.ResidualAssertion, Stage: StageValidate, Report: rep}
	}
	res.Fingerprint = ir.Fingerprint(m)
	return res, nil
}

// refinementStages returns the fixed, ordered list of opaque refinement
// stages that run before assertion checking.
func refinementStages() []passes.Pass {
	return []passes.Pass{
		passes.InlineCalls{},
		passes.CSE{},
		passes.RefineShapes{},
		passes.CanonicalizeDynamism{},
	}
}

func (o Options) traceWriter() io.Writer {
	if o.TraceWriter != nil {
		return o.TraceWriter
	}
	return io.Discard
}
