package passes

import (
	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
)

// CanonicalizeDynamism removes provably static dynamism:
//
//   - elementwise rank-0 integer ops over constants fold to arr.constant;
//   - arr.dynamic_reshape with a fully static result type becomes
//     arr.reshape (the shape operand is dropped);
//   - dead pure ops are erased.
//
// Constant folding here is what makes assert_what operands of downstream
// shape assertions statically matchable.
type CanonicalizeDynamism struct{}

// Name implements Pass.
func (CanonicalizeDynamism) Name() string { return "canonicalize-dynamism" }

// Run implements Pass.
func (CanonicalizeDynamism) Run(m *ir.Module, h *diag.Handler) error {
	for {
		changed := false
		m.Walk(func(oh ir.OpHandle) {
			if canonicalizeOp(m, oh) {
				changed = true
			}
		})
		if !changed {
			break
		}
	}
	eraseDeadPureOps(m)
	return nil
}

func canonicalizeOp(m *ir.Module, oh ir.OpHandle) bool {
	op := m.Op(oh)
	switch {
	case ir.Elementwise(op.Target):
		return foldElementwise(m, op)
	case op.Target == ir.OpDynamicReshape:
		return staticizeReshape(m, op)
	}
	return false
}

func foldElementwise(m *ir.Module, op *ir.Operation) bool {
	if len(op.Operands) != 2 || len(op.Results) != 1 {
		return false
	}
	if m.Value(op.Results[0]).Type.Rank() != 0 {
		return false
	}
	lhs, ok := m.MatchInt(op.Operands[0])
	if !ok {
		return false
	}
	rhs, ok := m.MatchInt(op.Operands[1])
	if !ok {
		return false
	}
	var v int64
	switch op.Target {
	case ir.OpAdd:
		v = lhs + rhs
	case ir.OpMul:
		v = lhs * rhs
	case ir.OpSub:
		v = lhs - rhs
	default:
		return false
	}
	op.Target = ir.OpConstant
	op.Operands = nil
	op.Attrs = map[string]ir.Attr{ir.AttrConstValue: ir.IntAttr(v)}
	return true
}

func staticizeReshape(m *ir.Module, op *ir.Operation) bool {
	if len(op.Operands) != 2 || len(op.Results) != 1 {
		return false
	}
	if !m.Value(op.Results[0]).Type.Static() {
		return false
	}
	op.Target = ir.OpReshape
	op.Operands = op.Operands[:1]
	return true
}

// eraseDeadPureOps drops pure ops none of whose results are used. Runs to
// fixpoint so constant chains disappear entirely.
func eraseDeadPureOps(m *ir.Module) {
	for {
		uses := map[ir.ValueHandle]int{}
		m.Walk(func(oh ir.OpHandle) {
			for _, v := range m.Op(oh).Operands {
				uses[v]++
			}
		})
		erased := false
		m.Walk(func(oh ir.OpHandle) {
			op := m.Op(oh)
			if !ir.Pure(op.Target) {
				return
			}
			for _, r := range op.Results {
				if uses[r] > 0 {
					return
				}
			}
			m.EraseOp(oh)
			erased = true
		})
		if !erased {
			return
		}
	}
}
