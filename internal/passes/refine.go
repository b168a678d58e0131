package passes

import (
	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
)

// RefineShapes propagates statically known dimensions through the module
// until fixpoint:
//
//   - arr.get_dimension_size over a statically known dimension is rewritten
//     in place to arr.constant;
//   - an elementwise result adopts any operand dimension that is static
//     where its own is dynamic;
//   - function result types are refined from the return operand types.
//
// The pass computes no new shapes from scratch; it only narrows dynamic
// dimensions that some operand already knows.
type RefineShapes struct{}

// Name implements Pass.
func (RefineShapes) Name() string { return "refine-shapes" }

// Run implements Pass.
func (RefineShapes) Run(m *ir.Module, h *diag.Handler) error {
	// Fixpoint loop; each iteration narrows at least one dimension, so the
	// total dynamic-dimension count bounds the rounds.
	for {
		changed := false
		m.Walk(func(oh ir.OpHandle) {
			if refineOp(m, oh) {
				changed = true
			}
		})
		if !changed {
			break
		}
	}

	for fi := range m.Funcs {
		refineFuncResults(m, &m.Funcs[fi])
	}
	return nil
}

func refineOp(m *ir.Module, oh ir.OpHandle) bool {
	op := m.Op(oh)
	switch {
	case op.Target == ir.OpGetDimensionSize:
		return refineGetDimensionSize(m, op)
	case ir.Elementwise(op.Target):
		return refineElementwise(m, op)
	}
	return false
}

func refineGetDimensionSize(m *ir.Module, op *ir.Operation) bool {
	if len(op.Operands) != 1 || len(op.Results) != 1 {
		return false
	}
	dimAttr, ok := op.Attrs[ir.AttrDimension].(ir.IntAttr)
	if !ok {
		return false
	}
	t := m.Value(op.Operands[0]).Type
	d := int(dimAttr)
	if d < 0 || d >= t.Rank() || t.Dims[d] == ir.DynamicDim {
		return false
	}
	// Rewrite in place: keeps the op's block position and result handle.
	op.Target = ir.OpConstant
	op.Operands = nil
	op.Attrs = map[string]ir.Attr{ir.AttrConstValue: ir.IntAttr(t.Dims[d])}
	return true
}

func refineElementwise(m *ir.Module, op *ir.Operation) bool {
	if len(op.Results) != 1 {
		return false
	}
	res := m.Value(op.Results[0])
	changed := false
	for _, operand := range op.Operands {
		t := m.Value(operand).Type
		if t.Rank() != res.Type.Rank() {
			continue
		}
		for d, extent := range t.Dims {
			if res.Type.Dims[d] == ir.DynamicDim && extent != ir.DynamicDim {
				res.Type.Dims[d] = extent
				changed = true
			}
		}
	}
	return changed
}

// refineFuncResults narrows the function signature from the types the return
// op actually produces.
func refineFuncResults(m *ir.Module, f *ir.Function) {
	blk := m.Block(m.EntryBlock(f))
	for _, oh := range blk.Ops {
		op := m.Op(oh)
		if op.Target != ir.OpReturn {
			continue
		}
		if len(op.Operands) != len(f.Results) {
			return
		}
		for i, v := range op.Operands {
			t := m.Value(v).Type
			if !f.Results[i].Static() && t.Static() {
				f.Results[i] = t
			}
		}
		return
	}
}
