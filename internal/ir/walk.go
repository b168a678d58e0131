package ir

// Walk visits every live operation in the module in pre-order: functions in
// declaration order, blocks in region order, operations in block order, and
// an operation's nested regions immediately after the operation itself.
//
// The traversal runs over an explicit worklist so stack depth is bounded
// regardless of region nesting. Callbacks may erase the operation they are
// visiting; erased operations queued earlier are skipped when popped.
func (m *Module) Walk(fn func(OpHandle)) {
	for i := range m.Funcs {
		m.WalkFunc(&m.Funcs[i], fn)
	}
}

// WalkFunc visits every live operation of one function, in the same order as
// Walk.
func (m *Module) WalkFunc(f *Function, fn func(OpHandle)) {
	type item struct {
		op     OpHandle
		region RegionHandle
	}
	// Seed with the body region; push in reverse so pops come out in order.
	stack := []item{{op: NilOp, region: f.Body}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.op != NilOp {
			op := m.Op(it.op)
			if op.Erased {
				continue
			}
			fn(it.op)
			// Visit nested regions pre-order, after the op itself. The
			// callback may have erased the op; its regions still hold the
			// diagnostic-relevant structure, so re-check.
			op = m.Op(it.op)
			for i := len(op.Regions) - 1; i >= 0; i-- {
				stack = append(stack, item{op: NilOp, region: op.Regions[i]})
			}
			continue
		}

		region := m.Region(it.region)
		for bi := len(region.Blocks) - 1; bi >= 0; bi-- {
			blk := m.Block(region.Blocks[bi])
			for oi := len(blk.Ops) - 1; oi >= 0; oi-- {
				stack = append(stack, item{op: blk.Ops[oi]})
			}
		}
	}
}
