package passes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
)

// CSE deduplicates identical pure operations within each block. Two ops are
// identical when target, operands, attributes, and result types all match.
// The later op's results are rewired to the earlier op and the later op is
// erased.
type CSE struct{}

// Name implements Pass.
func (CSE) Name() string { return "cse" }

// Run implements Pass.
func (CSE) Run(m *ir.Module, h *diag.Handler) error {
	for fi := range m.Funcs {
		f := &m.Funcs[fi]
		seen := map[string]ir.OpHandle{}
		blk := m.Block(m.EntryBlock(f))
		// Snapshot: erasure rewrites the block op list.
		ops := append([]ir.OpHandle(nil), blk.Ops...)
		for _, oh := range ops {
			op := m.Op(oh)
			if op.Erased || !ir.Pure(op.Target) {
				continue
			}
			key := opKey(m, op)
			prev, dup := seen[key]
			if !dup {
				seen[key] = oh
				continue
			}
			prevOp := m.Op(prev)
			for i, res := range op.Results {
				m.ReplaceAllUses(res, prevOp.Results[i])
			}
			m.EraseOp(oh)
		}
	}
	return nil
}

// opKey builds a structural identity key: target | operands | sorted attrs |
// result types.
func opKey(m *ir.Module, op *ir.Operation) string {
	var b strings.Builder
	b.WriteString(op.Target)
	b.WriteByte('|')
	for _, v := range op.Operands {
		fmt.Fprintf(&b, "%d,", v)
	}
	b.WriteByte('|')
	keys := make([]string, 0, len(op.Attrs))
	for k := range op.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(op.Attrs[k].String())
		b.WriteByte(';')
	}
	b.WriteByte('|')
	for _, r := range op.Results {
		b.WriteString(m.Value(r).Type.String())
		b.WriteByte(',')
	}
	return b.String()
}
