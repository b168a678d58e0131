package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
	"github.com/arrayir/shapecheck/internal/testutil"
)

func newHandler() *diag.Handler {
	return diag.NewHandler(diag.NewFixedGenerator("run-test"))
}

func TestCheckTruePredicateErased(t *testing.T) {
	m := testutil.AssertionModule(true, nil, "never shown")
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.NoError(t, err)
	assert.True(t, h.Consume().Empty())
	assert.Equal(t, ir.OpHandle(-1), testutil.AssertionOp(m))
}

func TestCheckFalsePredicateFormatted(t *testing.T) {
	m := testutil.AssertionModule(false, []int64{3, 5}, "{0} must be >= {1}")
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.AssertionFailed, r.Diagnostics[0].Category)
	assert.Equal(t, "3 must be >= 5", r.Diagnostics[0].Message)
	assert.Equal(t, testutil.Loc(10), r.Diagnostics[0].Loc)

	// A failed assertion stays attached so reruns still see it.
	assert.NotEqual(t, ir.OpHandle(-1), testutil.AssertionOp(m))
}

func TestCheckDisabledErasesWithoutValidation(t *testing.T) {
	// Structurally malformed op: six operands, wrong attrs. With assertions
	// disabled it is erased with no diagnostic.
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	var operands []ir.ValueHandle
	for i := 0; i < 6; i++ {
		operands = append(operands, testutil.ConstI32(m, blk, int64(i)))
	}
	m.NewOp(blk, ir.TargetShapeAssertion, operands, nil, nil, testutil.Loc(5))
	h := newHandler()

	err := CheckShapeAssertions{Enable: false}.Run(m, h)

	require.NoError(t, err)
	assert.True(t, h.Consume().Empty())
	assert.Equal(t, ir.OpHandle(-1), testutil.AssertionOp(m))
}

func TestCheckTooManyOperands(t *testing.T) {
	m := testutil.AssertionModule(false, []int64{1, 2, 3, 4, 5}, "{0}")
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.SchemaViolation, r.Diagnostics[0].Category)
	assert.Equal(t, "expects 1 <= size(operands) <= 5", r.Diagnostics[0].Message)
}

func TestCheckSchemaViolations(t *testing.T) {
	mutate := func(f func(attrs map[string]ir.Attr)) *ir.Module {
		m := testutil.AssertionModule(false, []int64{1}, "{0}")
		f(m.Op(testutil.AssertionOp(m)).Attrs)
		return m
	}
	tests := []struct {
		name string
		m    *ir.Module
		want string
	}{
		{
			"unsupported attribute",
			mutate(func(a map[string]ir.Attr) { a["mystery"] = ir.IntAttr(1) }),
			"mystery is not a supported attribute",
		},
		{
			"nonempty backend_config",
			mutate(func(a map[string]ir.Attr) { a["backend_config"] = ir.StringAttr("cfg") }),
			"expects an empty backend_config",
		},
		{
			"wrong call target",
			mutate(func(a map[string]ir.Attr) { a["call_target_name"] = ir.StringAttr("other") }),
			`expects call_target_name = "shape_assertion"`,
		},
		{
			"side effect false",
			mutate(func(a map[string]ir.Attr) { a["has_side_effect"] = ir.BoolAttr(false) }),
			"expects has_side_effect=true",
		},
		{
			"missing error_message",
			mutate(func(a map[string]ir.Attr) { delete(a, "error_message") }),
			"expects an error_message attribute",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler()
			err := CheckShapeAssertions{Enable: true}.Run(tt.m, h)
			require.ErrorIs(t, err, ErrAssertionsFailed)
			r := h.Consume()
			require.Len(t, r.Diagnostics, 1)
			assert.Equal(t, diag.SchemaViolation, r.Diagnostics[0].Category)
			assert.Equal(t, tt.want, r.Diagnostics[0].Message)
		})
	}
}

func TestCheckPredicateTypeViolation(t *testing.T) {
	// Predicate of type tensor<i32> instead of tensor<i1>.
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	pred := testutil.ConstI32(m, blk, 1)
	m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{pred},
		testutil.AssertionAttrs("msg"), nil, testutil.Loc(3))
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, "expects assert_what (operand #0) to be a constant of type tensor<i1>", r.Diagnostics[0].Message)
}

func TestCheckTemplateOutOfRange(t *testing.T) {
	// {2} with two inputs is a schema violation even when the predicate holds:
	// schema checking precedes folding.
	m := testutil.AssertionModule(true, []int64{7, 8}, "expected {2} dims")
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.SchemaViolation, r.Diagnostics[0].Category)
	assert.NotEqual(t, ir.OpHandle(-1), testutil.AssertionOp(m))
}

func TestCheckNonStaticPredicate(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunc("main", []ir.TensorType{{Elem: ir.I1}}, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	m.NewOp(blk, ir.TargetShapeAssertion,
		[]ir.ValueHandle{m.Block(blk).Args[0]},
		testutil.AssertionAttrs("msg"), nil, testutil.Loc(2))
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.NonStaticOperand, r.Diagnostics[0].Category)
	assert.Equal(t, "expects static assert_what (operand #0)", r.Diagnostics[0].Message)
}

func TestCheckNonStaticInput(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunc("main", []ir.TensorType{{Elem: ir.I32}}, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	pred := testutil.ConstI1(m, blk, false)
	m.NewOp(blk, ir.TargetShapeAssertion,
		[]ir.ValueHandle{pred, m.Block(blk).Args[0]},
		testutil.AssertionAttrs("{0}"), nil, testutil.Loc(3))
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.NonStaticOperand, r.Diagnostics[0].Category)
	assert.Equal(t, "expects static error_message_input (operand #1)", r.Diagnostics[0].Message)
}

func TestCheckAllAssertionsReported(t *testing.T) {
	// Two failing assertions in one function: the walk does not stop at the
	// first failure.
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	p1 := testutil.ConstI1(m, blk, false)
	p2 := testutil.ConstI1(m, blk, false)
	m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{p1},
		testutil.AssertionAttrs("first failed"), nil, testutil.Loc(4))
	m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{p2},
		testutil.AssertionAttrs("second failed"), nil, testutil.Loc(5))
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 2)
	assert.Equal(t, "first failed", r.Diagnostics[0].Message)
	assert.Equal(t, "second failed", r.Diagnostics[1].Message)
}

func TestCheckMixedOutcomes(t *testing.T) {
	// A passing assertion is erased while a failing sibling is reported.
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, testutil.Loc(1))
	blk := m.EntryBlock(f)
	pTrue := testutil.ConstI1(m, blk, true)
	pFalse := testutil.ConstI1(m, blk, false)
	ok := m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{pTrue},
		testutil.AssertionAttrs("ok"), nil, testutil.Loc(4))
	m.NewOp(blk, ir.TargetShapeAssertion, []ir.ValueHandle{pFalse},
		testutil.AssertionAttrs("boom"), nil, testutil.Loc(5))
	h := newHandler()

	err := CheckShapeAssertions{Enable: true}.Run(m, h)

	require.ErrorIs(t, err, ErrAssertionsFailed)
	assert.True(t, m.Op(ok).Erased)
	r := h.Consume()
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, "boom", r.Diagnostics[0].Message)
}
