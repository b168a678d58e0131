package ir

import (
	"fmt"
	"strings"
)

// DynamicDim marks a dimension whose extent is not statically known.
const DynamicDim int64 = -1

// ElemKind classifies tensor element types.
type ElemKind uint8

const (
	// ElemInt is a signless integer element type.
	ElemInt ElemKind = iota
	// ElemFloat is a floating-point element type.
	ElemFloat
)

// ElemType is a tensor element type: kind plus bit width.
type ElemType struct {
	Kind ElemKind
	Bits uint8
}

// Common element types.
var (
	I1  = ElemType{Kind: ElemInt, Bits: 1}
	I32 = ElemType{Kind: ElemInt, Bits: 32}
	I64 = ElemType{Kind: ElemInt, Bits: 64}
	F32 = ElemType{Kind: ElemFloat, Bits: 32}
	F64 = ElemType{Kind: ElemFloat, Bits: 64}
)

// String renders the element type in textual-IR form ("i32", "f64").
func (e ElemType) String() string {
	switch e.Kind {
	case ElemFloat:
		return fmt.Sprintf("f%d", e.Bits)
	default:
		return fmt.Sprintf("i%d", e.Bits)
	}
}

// TensorType is a ranked tensor type. A rank-0 tensor has empty Dims.
type TensorType struct {
	Elem ElemType
	Dims []int64
}

// Rank returns the number of dimensions.
func (t TensorType) Rank() int { return len(t.Dims) }

// Static reports whether every dimension is statically known.
func (t TensorType) Static() bool {
	for _, d := range t.Dims {
		if d == DynamicDim {
			return false
		}
	}
	return true
}

// String renders the type in textual-IR form ("tensor<2x?xi32>").
func (t TensorType) String() string {
	var b strings.Builder
	b.WriteString("tensor<")
	for _, d := range t.Dims {
		if d == DynamicDim {
			b.WriteString("?x")
		} else {
			fmt.Fprintf(&b, "%dx", d)
		}
	}
	b.WriteString(t.Elem.String())
	b.WriteString(">")
	return b.String()
}

// Location is a source position carried from the textual IR (or synthesized
// by builders). Diagnostics anchor to it.
type Location struct {
	File string
	Line int
	Col  int
}

// Unknown reports whether the location carries no position information.
func (l Location) Unknown() bool { return l.File == "" && l.Line == 0 }

// String renders "file:line:col", or "<unknown>" when unset.
func (l Location) String() string {
	if l.Unknown() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Attr is a named-attribute value: string, integer, or boolean.
type Attr interface {
	attr()
	String() string
}

// StringAttr is a string attribute value.
type StringAttr string

// IntAttr is an integer attribute value.
type IntAttr int64

// BoolAttr is a boolean attribute value.
type BoolAttr bool

func (StringAttr) attr() {}
func (IntAttr) attr()    {}
func (BoolAttr) attr()   {}

func (a StringAttr) String() string { return fmt.Sprintf("%q", string(a)) }
func (a IntAttr) String() string    { return fmt.Sprintf("%d", int64(a)) }
func (a BoolAttr) String() string {
	if a {
		return "true"
	}
	return "false"
}
