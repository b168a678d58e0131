package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrayir/shapecheck/internal/ir"
	"github.com/arrayir/shapecheck/internal/testutil"
)

func TestRefineGetDimensionSize(t *testing.T) {
	m := ir.NewModule("test")
	in := ir.TensorType{Elem: ir.I32, Dims: []int64{4, ir.DynamicDim}}
	f := m.NewFunc("main", []ir.TensorType{in}, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	arg := m.Block(blk).Args[0]

	known := m.NewOp(blk, ir.OpGetDimensionSize, []ir.ValueHandle{arg},
		map[string]ir.Attr{ir.AttrDimension: ir.IntAttr(0)},
		[]ir.TensorType{{Elem: ir.I32}}, testutil.Loc(2))
	unknown := m.NewOp(blk, ir.OpGetDimensionSize, []ir.ValueHandle{arg},
		map[string]ir.Attr{ir.AttrDimension: ir.IntAttr(1)},
		[]ir.TensorType{{Elem: ir.I32}}, testutil.Loc(3))

	h := newHandler()
	require.NoError(t, RefineShapes{}.Run(m, h))
	h.Consume()

	// Dimension 0 is static: the op folds to a constant in place.
	v, ok := m.MatchInt(m.Op(known).Results[0])
	require.True(t, ok)
	assert.Equal(t, int64(4), v)

	// Dimension 1 is dynamic: untouched.
	assert.Equal(t, ir.OpGetDimensionSize, m.Op(unknown).Target)
}

func TestRefineElementwiseAdoptsStaticDims(t *testing.T) {
	m := ir.NewModule("test")
	static := ir.TensorType{Elem: ir.I32, Dims: []int64{2, 3}}
	dyn := ir.TensorType{Elem: ir.I32, Dims: []int64{2, ir.DynamicDim}}
	f := m.NewFunc("main", []ir.TensorType{static, dyn}, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	x, y := m.Block(blk).Args[0], m.Block(blk).Args[1]
	add := m.NewOp(blk, ir.OpAdd, []ir.ValueHandle{x, y}, nil,
		[]ir.TensorType{dyn}, testutil.Loc(2))

	h := newHandler()
	require.NoError(t, RefineShapes{}.Run(m, h))
	h.Consume()

	assert.Equal(t, []int64{2, 3}, m.Value(m.Op(add).Results[0]).Type.Dims)
}

func TestRefinePropagatesThroughChain(t *testing.T) {
	// x (static) + y (dynamic) -> a (dynamic); a + y -> b (dynamic).
	// Both results become static via the fixpoint.
	m := ir.NewModule("test")
	static := ir.TensorType{Elem: ir.I32, Dims: []int64{5}}
	dyn := ir.TensorType{Elem: ir.I32, Dims: []int64{ir.DynamicDim}}
	f := m.NewFunc("main", []ir.TensorType{static, dyn}, []ir.TensorType{dyn}, testutil.Loc(1))
	blk := m.EntryBlock(f)
	x, y := m.Block(blk).Args[0], m.Block(blk).Args[1]
	a := m.NewOp(blk, ir.OpAdd, []ir.ValueHandle{x, y}, nil, []ir.TensorType{dyn}, testutil.Loc(2))
	b := m.NewOp(blk, ir.OpAdd, []ir.ValueHandle{m.Op(a).Results[0], y}, nil, []ir.TensorType{dyn}, testutil.Loc(3))
	m.NewOp(blk, ir.OpReturn, []ir.ValueHandle{m.Op(b).Results[0]}, nil, nil, testutil.Loc(4))

	h := newHandler()
	require.NoError(t, RefineShapes{}.Run(m, h))
	h.Consume()

	assert.Equal(t, []int64{5}, m.Value(m.Op(b).Results[0]).Type.Dims)

	// The function signature narrows from the return operand.
	assert.Equal(t, []int64{5}, m.Funcs[0].Results[0].Dims)
	assert.True(t, m.Funcs[0].Results[0].Static())
}

func TestRefineLeavesUnknowableDims(t *testing.T) {
	m := testutil.DynamicResultModule()
	h := newHandler()
	require.NoError(t, RefineShapes{}.Run(m, h))
	h.Consume()

	// Reshape is not elementwise; nothing narrows its result.
	found := false
	m.Walk(func(oh ir.OpHandle) {
		op := m.Op(oh)
		if op.Target == ir.OpReshape {
			found = true
			assert.False(t, m.Value(op.Results[0]).Type.Static())
		}
	})
	assert.True(t, found)
}
