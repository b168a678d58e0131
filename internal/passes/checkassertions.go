package passes

import (
	"errors"
	"fmt"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/format"
	"github.com/arrayir/shapecheck/internal/ir"
)

// Shape-assertion schema constants. A shape assertion is an operation with
// target "shape_assertion": operand 0 is the predicate (assert_what), the
// remaining operands feed the error-message template.
const (
	// MaxErrorMessageInputs bounds the variadic error-message operands; the
	// formatter supports exactly this many positional arguments.
	MaxErrorMessageInputs = format.MaxArgs

	attrAPIVersion     = "api_version"
	attrBackendConfig  = "backend_config"
	attrCallTargetName = "call_target_name"
	attrErrorMessage   = "error_message"
	attrHasSideEffect  = "has_side_effect"
)

// ErrAssertionsFailed is returned by CheckShapeAssertions when any assertion
// op failed verification or evaluated to false. The handler holds the
// per-operation diagnostics.
var ErrAssertionsFailed = errors.New("shape assertion check failed")

// CheckShapeAssertions validates, evaluates, and discharges shape-assertion
// operations.
//
// With Enable false every assertion op is erased unconditionally, with no
// schema check. With Enable true each op is schema-checked, its predicate is
// constant-folded, and the op is either erased (predicate true) or reported
// (schema violation, non-static operand, or predicate false).
//
// The walk never stops early: every assertion op present is inspected and
// every diagnostic recorded. The returned error is the OR of all
// per-operation outcomes.
type CheckShapeAssertions struct {
	Enable bool
}

// Name implements Pass.
func (CheckShapeAssertions) Name() string { return "check-shape-assertions" }

// Run implements Pass.
func (p CheckShapeAssertions) Run(m *ir.Module, h *diag.Handler) error {
	failed := false
	for fi := range m.Funcs {
		m.WalkFunc(&m.Funcs[fi], func(oh ir.OpHandle) {
			op := m.Op(oh)
			if op.Target != ir.TargetShapeAssertion {
				return
			}
			if !p.Enable {
				// Assertions globally off: discharge without validation.
				m.EraseOp(oh)
				return
			}
			if !p.checkOne(m, oh, h) {
				failed = true
			}
		})
	}
	if failed {
		return ErrAssertionsFailed
	}
	return nil
}

// checkOne processes a single assertion op and reports whether it was
// discharged cleanly.
func (p CheckShapeAssertions) checkOne(m *ir.Module, oh ir.OpHandle, h *diag.Handler) bool {
	op := m.Op(oh)

	// Check first for ill-formed assertions, rather than failing obscurely
	// on a later step.
	if msg := verifySchema(m, op); msg != "" {
		h.Emit(diag.SchemaViolation, op.Loc, "%s", msg)
		return false
	}

	assertWhat, ok := m.MatchInt(op.Operands[0])
	if !ok {
		h.Emit(diag.NonStaticOperand, op.Loc, "expects static assert_what (operand #0)")
		return false
	}
	if assertWhat != 0 {
		// Predicate statically true: the assertion is trivially satisfied.
		m.EraseOp(oh)
		return true
	}

	inputs := make([]int64, 0, len(op.Operands)-1)
	for i := 1; i < len(op.Operands); i++ {
		v, ok := m.MatchInt(op.Operands[i])
		if !ok {
			h.Emit(diag.NonStaticOperand, op.Loc, "expects static error_message_input (operand #%d)", i)
			return false
		}
		inputs = append(inputs, v)
	}

	// Predicate statically false. The op stays attached: its location
	// anchors the diagnostic.
	tmpl := string(op.Attrs[attrErrorMessage].(ir.StringAttr))
	h.Emit(diag.AssertionFailed, op.Loc, "%s", format.Format(tmpl, inputs))
	return false
}

// verifySchema checks the assertion op against its schema and returns the
// violation message, or "" when the op is well-formed.
func verifySchema(m *ir.Module, op *ir.Operation) string {
	if len(op.Operands) < 1 || len(op.Operands) > 1+MaxErrorMessageInputs {
		return fmt.Sprintf("expects 1 <= size(operands) <= %d", 1+MaxErrorMessageInputs)
	}
	nrInputs := len(op.Operands) - 1
	if len(op.Results) != 0 {
		return "expects size(results) = 0"
	}
	for name := range op.Attrs {
		switch name {
		case attrAPIVersion, attrBackendConfig, attrCallTargetName, attrErrorMessage, attrHasSideEffect:
		default:
			return fmt.Sprintf("%s is not a supported attribute", name)
		}
	}
	if cfg, ok := op.Attrs[attrBackendConfig]; ok {
		if s, isStr := cfg.(ir.StringAttr); !isStr || s != "" {
			return "expects an empty backend_config"
		}
	}
	if name, ok := op.Attrs[attrCallTargetName].(ir.StringAttr); !ok || string(name) != ir.TargetShapeAssertion {
		return fmt.Sprintf("expects call_target_name = %q", ir.TargetShapeAssertion)
	}
	if eff, ok := op.Attrs[attrHasSideEffect].(ir.BoolAttr); !ok || !bool(eff) {
		return "expects has_side_effect=true"
	}

	// operand 0 (assert_what): tensor<i1>
	t := m.Value(op.Operands[0]).Type
	if t.Rank() != 0 || t.Elem != ir.I1 {
		return "expects assert_what (operand #0) to be a constant of type tensor<i1>"
	}

	// operands 1..N (error_message_inputs): tensor<i32> or tensor<i64>
	for i := 0; i < nrInputs; i++ {
		t := m.Value(op.Operands[i+1]).Type
		if t.Rank() != 0 || (t.Elem != ir.I32 && t.Elem != ir.I64) {
			return fmt.Sprintf("expects error_message_input (operand #%d) to be a constant of type tensor<i32> or tensor<i64>", i+1)
		}
	}

	tmpl, ok := op.Attrs[attrErrorMessage].(ir.StringAttr)
	if !ok {
		return "expects an error_message attribute"
	}
	if err := format.ValidateTemplate(string(tmpl), nrInputs); err != nil {
		return err.Error()
	}
	return ""
}
