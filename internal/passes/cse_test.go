package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrayir/shapecheck/internal/ir"
	"github.com/arrayir/shapecheck/internal/testutil"
)

func TestCSEDedupesConstants(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	a := testutil.ConstI32(m, blk, 7)
	b := testutil.ConstI32(m, blk, 7)
	use := m.NewOp(blk, ir.OpAdd, []ir.ValueHandle{a, b}, nil,
		[]ir.TensorType{{Elem: ir.I32}}, testutil.Loc(4))

	h := newHandler()
	require.NoError(t, CSE{}.Run(m, h))
	h.Consume()

	// The duplicate is gone and both operands point at the survivor.
	assert.Len(t, m.Block(blk).Ops, 2)
	assert.Equal(t, []ir.ValueHandle{a, a}, m.Op(use).Operands)
}

func TestCSEKeepsDistinctConstants(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	testutil.ConstI32(m, blk, 7)
	testutil.ConstI32(m, blk, 8)

	h := newHandler()
	require.NoError(t, CSE{}.Run(m, h))
	h.Consume()

	assert.Len(t, m.Block(blk).Ops, 2)
}

func TestCSESkipsImpureOps(t *testing.T) {
	// Two identical assertions are both side-effecting; neither is removed.
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	pred := testutil.ConstI1(m, blk, true)
	m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{pred},
		testutil.AssertionAttrs("msg"), nil, testutil.Loc(3))
	m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{pred},
		testutil.AssertionAttrs("msg"), nil, testutil.Loc(4))

	h := newHandler()
	require.NoError(t, CSE{}.Run(m, h))
	h.Consume()

	assert.Len(t, m.Block(blk).Ops, 3)
}

func TestCSERespectsOperandsAndTypes(t *testing.T) {
	m := ir.NewModule("test")
	i32 := ir.TensorType{Elem: ir.I32}
	f := m.NewFunc("main", []ir.TensorType{i32, i32}, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	x, y := m.Block(blk).Args[0], m.Block(blk).Args[1]
	m.NewOp(blk, ir.OpAdd, []ir.ValueHandle{x, y}, nil, []ir.TensorType{i32}, testutil.Loc(2))
	m.NewOp(blk, ir.OpAdd, []ir.ValueHandle{y, x}, nil, []ir.TensorType{i32}, testutil.Loc(3))

	h := newHandler()
	require.NoError(t, CSE{}.Run(m, h))
	h.Consume()

	// Operand order matters; no dedupe.
	assert.Len(t, m.Block(blk).Ops, 2)
}
