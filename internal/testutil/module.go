// Package testutil provides small module builders shared by tests.
package testutil

import (
	"github.com/arrayir/shapecheck/internal/ir"
)

// Loc returns a synthetic test location with the given line.
func Loc(line int) ir.Location {
	return ir.Location{File: "test.air", Line: line, Col: 1}
}

// AssertionAttrs builds the canonical attribute set of a well-formed shape
// assertion with the given error-message template.
func AssertionAttrs(template string) map[string]ir.Attr {
	return map[string]ir.Attr{
		"api_version":      ir.IntAttr(2),
		"backend_config":   ir.StringAttr(""),
		"call_target_name": ir.StringAttr(ir.TargetShapeAssertion),
		"error_message":    ir.StringAttr(template),
		"has_side_effect":  ir.BoolAttr(true),
	}
}

// ConstI1 appends an i1 constant op and returns its result.
func ConstI1(m *ir.Module, blk ir.BlockHandle, v bool) ir.ValueHandle {
	n := int64(0)
	if v {
		n = 1
	}
	oh := m.NewOp(blk, ir.OpConstant, nil,
		map[string]ir.Attr{ir.AttrConstValue: ir.IntAttr(n)},
		[]ir.TensorType{{Elem: ir.I1}}, Loc(1))
	return m.Op(oh).Results[0]
}

// ConstI32 appends an i32 constant op and returns its result.
func ConstI32(m *ir.Module, blk ir.BlockHandle, v int64) ir.ValueHandle {
	oh := m.NewOp(blk, ir.OpConstant, nil,
		map[string]ir.Attr{ir.AttrConstValue: ir.IntAttr(v)},
		[]ir.TensorType{{Elem: ir.I32}}, Loc(1))
	return m.Op(oh).Results[0]
}

// AssertionModule builds a module with one well-formed shape assertion:
// predicate constant, input constants, and the given template.
func AssertionModule(pred bool, inputs []int64, template string) *ir.Module {
	m := ir.NewModule("test")
	f := m.NewFunc("main", nil, nil, Loc(1))
	blk := m.EntryBlock(f)

	operands := []ir.ValueHandle{ConstI1(m, blk, pred)}
	for _, v := range inputs {
		operands = append(operands, ConstI32(m, blk, v))
	}
	m.NewOp(blk, ir.TargetShapeAssertion, operands, AssertionAttrs(template), nil, Loc(10))
	m.NewOp(blk, ir.OpReturn, nil, nil, nil, Loc(11))
	return m
}

// AssertionOp returns the (single) shape-assertion op in m, or -1 if none
// survives.
func AssertionOp(m *ir.Module) ir.OpHandle {
	found := ir.OpHandle(-1)
	m.Walk(func(h ir.OpHandle) {
		if m.Op(h).Target == ir.TargetShapeAssertion {
			found = h
		}
	})
	return found
}

// StaticModule builds a module whose shapes are all static: one function
// passing a tensor<2x3xi32> through.
func StaticModule() *ir.Module {
	m := ir.NewModule("static")
	t := ir.TensorType{Elem: ir.I32, Dims: []int64{2, 3}}
	f := m.NewFunc("main", []ir.TensorType{t}, []ir.TensorType{t}, Loc(1))
	blk := m.EntryBlock(f)
	arg := m.Block(blk).Args[0]
	m.NewOp(blk, ir.OpReturn, []ir.ValueHandle{arg}, nil, nil, Loc(2))
	return m
}

// DynamicResultModule builds a module with one op whose result type carries
// an unknown dimension.
func DynamicResultModule() *ir.Module {
	m := ir.NewModule("dynamic")
	in := ir.TensorType{Elem: ir.I32, Dims: []int64{2, 3}}
	out := ir.TensorType{Elem: ir.I32, Dims: []int64{2, ir.DynamicDim}}
	f := m.NewFunc("main", []ir.TensorType{in}, []ir.TensorType{in}, Loc(1))
	blk := m.EntryBlock(f)
	arg := m.Block(blk).Args[0]
	oh := m.NewOp(blk, ir.OpReshape, []ir.ValueHandle{arg}, nil, []ir.TensorType{out}, Loc(2))
	m.NewOp(blk, ir.OpReturn, []ir.ValueHandle{m.Op(oh).Results[0]}, nil, nil, Loc(3))
	return m
}
