package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrayir/shapecheck/internal/ir"
)

const wellFormed = `module @demo {
  func @main(%arg0: tensor<2x?xi32>) -> (tensor<2x?xi32>) {
    %0 = arr.constant {value = 1} : tensor<i1>
    shape_assertion(%0) {call_target_name = "shape_assertion",
      has_side_effect = true, error_message = "rank must be 2"}
    return(%arg0)
  }
}
`

func TestParseWellFormed(t *testing.T) {
	m, err := Parse([]byte(wellFormed), "demo.air")
	require.NoError(t, err)

	assert.Equal(t, "demo", m.Name)
	require.Len(t, m.Funcs, 1)
	f := &m.Funcs[0]
	assert.Equal(t, "main", f.Name)
	require.Len(t, f.Params, 1)
	assert.Equal(t, "tensor<2x?xi32>", f.Params[0].String())
	require.Len(t, f.Results, 1)

	blk := m.EntryBlock(f)
	ops := m.Block(blk).Ops
	require.Len(t, ops, 3)
	assert.Equal(t, ir.OpConstant, m.Op(ops[0]).Target)
	assert.Equal(t, ir.TargetShapeAssertion, m.Op(ops[1]).Target)
	assert.Equal(t, ir.OpReturn, m.Op(ops[2]).Target)

	// The assertion consumes the constant's result.
	assert.Equal(t, m.Op(ops[0]).Results, m.Op(ops[1]).Operands)
	assert.Equal(t, ir.BoolAttr(true), m.Op(ops[1]).Attrs["has_side_effect"])
	assert.Equal(t, ir.StringAttr("rank must be 2"), m.Op(ops[1]).Attrs["error_message"])
}

func TestParseRecordsLocations(t *testing.T) {
	m, err := Parse([]byte(wellFormed), "demo.air")
	require.NoError(t, err)

	blk := m.EntryBlock(&m.Funcs[0])
	op := m.Op(m.Block(blk).Ops[0])
	assert.Equal(t, ir.Location{File: "demo.air", Line: 3, Col: 5}, op.Loc)
}

func TestParseUnknownTarget(t *testing.T) {
	src := `module @m {
  func @main() {
    arr.bogus()
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, `unknown operation "arr.bogus"`)
	assert.Equal(t, 3, perr.Loc.Line)
}

func TestParseUndefinedValue(t *testing.T) {
	src := `module @m {
  func @main() {
    return(%ghost)
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use of undefined value %ghost")
}

func TestParseRedefinedValue(t *testing.T) {
	src := `module @m {
  func @main() {
    %0 = arr.constant {value = 1} : tensor<i32>
    %0 = arr.constant {value = 2} : tensor<i32>
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redefinition of value %0")
}

func TestParseBadElementType(t *testing.T) {
	src := `module @m {
  func @main(%a: tensor<2xf16>) {
    return(%a)
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported element type "f16"`)
}

func TestParseBadDimension(t *testing.T) {
	src := `module @m {
  func @main(%a: tensor<-2xi32>) {
    return(%a)
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid dimension "-2"`)
}

func TestParseResultArityMismatch(t *testing.T) {
	src := `module @m {
  func @main() {
    %0, %1 = arr.constant {value = 1} : tensor<i32>
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares 2 results but 1 result types")
}

func TestParseDuplicateAttribute(t *testing.T) {
	src := `module @m {
  func @main() {
    %0 = arr.constant {value = 1, value = 2} : tensor<i32>
  }
}`
	_, err := Parse([]byte(src), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate attribute "value"`)
}

func TestParseTruncatedInput(t *testing.T) {
	_, err := Parse([]byte("module @m {\n  func @main() {\n"), "m.air")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of input")
}

func TestParseComments(t *testing.T) {
	src := `// leading comment
module @m {
  func @main() {
    // body comment
    %0 = arr.constant {value = 3} : tensor<i32> // trailing
  }
}`
	m, err := Parse([]byte(src), "m.air")
	require.NoError(t, err)
	blk := m.EntryBlock(&m.Funcs[0])
	require.Len(t, m.Block(blk).Ops, 1)
	v, ok := m.MatchInt(m.Op(m.Block(blk).Ops[0]).Results[0])
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestParseMultiFunctionWithCall(t *testing.T) {
	src := `module @m {
  func @helper(%x: tensor<i32>) -> (tensor<i32>) {
    return(%x)
  }
  func @main(%a: tensor<i32>) -> (tensor<i32>) {
    %0 = func.call(%a) {callee = "helper"} : tensor<i32>
    return(%0)
  }
}`
	m, err := Parse([]byte(src), "m.air")
	require.NoError(t, err)
	require.Len(t, m.Funcs, 2)

	blk := m.EntryBlock(&m.Funcs[1])
	call := m.Op(m.Block(blk).Ops[0])
	assert.Equal(t, ir.OpCall, call.Target)
	assert.Equal(t, ir.StringAttr("helper"), call.Attrs[ir.AttrCallee])
}
