package passes

import (
	"fmt"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
)

// maxInlineRounds bounds call-graph depth; a module still containing calls
// after this many rounds is cyclic.
const maxInlineRounds = 32

// InlineCalls replaces every func.call with a copy of the callee body.
// Callee block arguments map to call operands; the callee's return operands
// replace the call results. Only single-block bodies exist in this IR, so
// inlining is a straight splice.
type InlineCalls struct{}

// Name implements Pass.
func (InlineCalls) Name() string { return "inline-calls" }

// Run implements Pass.
func (InlineCalls) Run(m *ir.Module, h *diag.Handler) error {
	for round := 0; round < maxInlineRounds; round++ {
		inlined := false
		for fi := range m.Funcs {
			done, err := inlineInFunc(m, &m.Funcs[fi], h)
			if err != nil {
				return err
			}
			inlined = inlined || done
		}
		if !inlined {
			return nil
		}
	}
	h.Emit(diag.PipelineStageFailure, ir.Location{}, "call inlining did not converge after %d rounds (recursive calls?)", maxInlineRounds)
	return fmt.Errorf("inlining did not converge")
}

func inlineInFunc(m *ir.Module, f *ir.Function, h *diag.Handler) (bool, error) {
	blk := m.EntryBlock(f)
	// Snapshot: splicing rewrites the block op list.
	ops := append([]ir.OpHandle(nil), m.Block(blk).Ops...)
	inlined := false
	for _, oh := range ops {
		op := m.Op(oh)
		if op.Erased || op.Target != ir.OpCall {
			continue
		}
		calleeAttr, ok := op.Attrs[ir.AttrCallee].(ir.StringAttr)
		if !ok {
			h.Emit(diag.PipelineStageFailure, op.Loc, "func.call without a callee attribute")
			return false, fmt.Errorf("call without callee")
		}
		callee := findFunc(m, string(calleeAttr))
		if callee == nil {
			h.Emit(diag.PipelineStageFailure, op.Loc, "func.call references undefined function %q", string(calleeAttr))
			return false, fmt.Errorf("undefined callee")
		}
		if err := spliceBody(m, blk, oh, callee); err != nil {
			h.Emit(diag.PipelineStageFailure, op.Loc, "inlining %q: %v", string(calleeAttr), err)
			return false, err
		}
		inlined = true
	}
	return inlined, nil
}

func findFunc(m *ir.Module, name string) *ir.Function {
	for i := range m.Funcs {
		if m.Funcs[i].Name == name {
			return &m.Funcs[i]
		}
	}
	return nil
}

// spliceBody clones the callee entry block into the caller block just before
// the call op, then erases the call.
func spliceBody(m *ir.Module, callerBlk ir.BlockHandle, call ir.OpHandle, callee *ir.Function) error {
	callOp := m.Op(call)
	calleeBlk := m.Block(m.EntryBlock(callee))
	if len(calleeBlk.Args) != len(callOp.Operands) {
		return fmt.Errorf("expects %d operands, got %d", len(calleeBlk.Args), len(callOp.Operands))
	}

	vmap := make(map[ir.ValueHandle]ir.ValueHandle, len(calleeBlk.Args))
	for i, arg := range calleeBlk.Args {
		vmap[arg] = callOp.Operands[i]
	}

	// Clone callee ops in order. NewOp appends to the block; positions are
	// fixed up below.
	var cloned []ir.OpHandle
	var retOperands []ir.ValueHandle
	for _, ch := range calleeBlk.Ops {
		cop := m.Op(ch)
		if cop.Erased {
			continue
		}
		if cop.Target == ir.OpReturn {
			for _, v := range cop.Operands {
				retOperands = append(retOperands, mapValue(vmap, v))
			}
			continue
		}
		operands := make([]ir.ValueHandle, len(cop.Operands))
		for i, v := range cop.Operands {
			operands[i] = mapValue(vmap, v)
		}
		attrs := make(map[string]ir.Attr, len(cop.Attrs))
		for k, v := range cop.Attrs {
			attrs[k] = v
		}
		resultTypes := make([]ir.TensorType, len(cop.Results))
		for i, r := range cop.Results {
			resultTypes[i] = m.Value(r).Type
		}
		nh := m.NewOp(callerBlk, cop.Target, operands, attrs, resultTypes, cop.Loc)
		// Reread: NewOp may have grown the arena.
		cop = m.Op(ch)
		nop := m.Op(nh)
		for i, r := range cop.Results {
			vmap[r] = nop.Results[i]
		}
		cloned = append(cloned, nh)
	}

	// Reread the call op: the arena may have been reallocated by the clones.
	callOp = m.Op(call)
	if len(retOperands) != len(callOp.Results) {
		return fmt.Errorf("expects %d results, callee returns %d", len(callOp.Results), len(retOperands))
	}
	for i, res := range callOp.Results {
		m.ReplaceAllUses(res, retOperands[i])
	}

	// Move the clones from the block tail to the call site, preserving their
	// relative order, then drop the call.
	blk := m.Block(callerBlk)
	blk.Ops = blk.Ops[:len(blk.Ops)-len(cloned)]
	callIdx := indexOf(blk.Ops, call)
	rest := append([]ir.OpHandle(nil), blk.Ops[callIdx:]...)
	blk.Ops = append(append(blk.Ops[:callIdx], cloned...), rest...)
	m.EraseOp(call)
	return nil
}

func mapValue(vmap map[ir.ValueHandle]ir.ValueHandle, v ir.ValueHandle) ir.ValueHandle {
	if mapped, ok := vmap[v]; ok {
		return mapped
	}
	return v
}

func indexOf(ops []ir.OpHandle, h ir.OpHandle) int {
	for i, o := range ops {
		if o == h {
			return i
		}
	}
	return len(ops)
}
