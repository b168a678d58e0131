package pipeline

import (
	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
)

// validateStaticShapes is the whole-module post-condition check: no dynamic
// shapes, no residual shape assertions. Both checks always run; neither
// short-circuits the other, so the report covers every offending operation.
//
// Checking results and block arguments is sufficient for operands too:
// operands come either from results or from block arguments.
func validateStaticShapes(m *ir.Module, h *diag.Handler) (hasDynamic, hasResidual bool) {
	m.Walk(func(oh ir.OpHandle) {
		op := m.Op(oh)

		opDynamic := false
		for _, r := range op.Results {
			if !m.Value(r).Type.Static() {
				opDynamic = true
			}
		}
		for _, rh := range op.Regions {
			region := m.Region(rh)
			for _, bh := range region.Blocks {
				for _, arg := range m.Block(bh).Args {
					if !m.Value(arg).Type.Static() {
						opDynamic = true
					}
				}
			}
		}
		if opDynamic {
			hasDynamic = true
			h.Emit(diag.ResidualDynamicShape, op.Loc, "'%s' op has dynamic shapes", op.Target)
		}

		if op.Target == ir.TargetShapeAssertion {
			hasResidual = true
			h.Emit(diag.ResidualAssertion, op.Loc, "'%s' op has residual shape assertions", op.Target)
		}
	})

	// Function entry block arguments are the module's public shape surface;
	// they are block arguments of the function body, not of any nested op
	// region, so check them here.
	for fi := range m.Funcs {
		f := &m.Funcs[fi]
		region := m.Region(f.Body)
		for _, bh := range region.Blocks {
			for _, arg := range m.Block(bh).Args {
				if !m.Value(arg).Type.Static() {
					hasDynamic = true
					h.Emit(diag.ResidualDynamicShape, f.Loc, "'%s' func has dynamic argument shapes", f.Name)
				}
			}
		}
	}
	return hasDynamic, hasResidual
}
