// Package parser reads the textual IR form into an ir.Module.
//
// The accepted syntax is a compact MLIR-flavored notation:
//
//	module @name {
//	  func @main(%arg0: tensor<2x?xi32>) -> (tensor<2xi32>) {
//	    %0 = arr.constant {value = 1} : tensor<i1>
//	    shape_assertion(%0) {call_target_name = "shape_assertion",
//	      has_side_effect = true, error_message = "static rank expected"}
//	    return(%arg0)
//	  }
//	}
//
// Operation targets are checked against the fixed dialect registry in the ir
// package; unknown targets are parse failures, not deferred errors. Line
// comments start with "//".
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arrayir/shapecheck/internal/ir"
)

// ParseError is a parse failure at a source position.
type ParseError struct {
	Loc     ir.Location
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

// Parse reads src as a textual module. name is the file name recorded in
// source locations.
func Parse(src []byte, name string) (*ir.Module, error) {
	p := &parser{src: string(src), file: name, line: 1, col: 1}
	m, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	return m, nil
}

type parser struct {
	src  string
	pos  int
	line int
	col  int
	file string

	m *ir.Module
	// values maps SSA names to handles within the current function.
	values map[string]ir.ValueHandle
}

func (p *parser) loc() ir.Location {
	return ir.Location{File: p.file, Line: p.line, Col: p.col}
}

func (p *parser) errf(loc ir.Location, format string, args ...any) error {
	return &ParseError{Loc: loc, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseModule() (*ir.Module, error) {
	if err := p.expectWord("module"); err != nil {
		return nil, err
	}
	name, err := p.expectSymbol('@')
	if err != nil {
		return nil, err
	}
	p.m = ir.NewModule(name)
	if err := p.expectRune('{'); err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.next()
			break
		}
		if p.eof() {
			return nil, p.errf(p.loc(), "unexpected end of input, expected 'func' or '}'")
		}
		if err := p.parseFunc(); err != nil {
			return nil, err
		}
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errf(p.loc(), "trailing input after module")
	}
	return p.m, nil
}

func (p *parser) parseFunc() error {
	funcLoc := p.loc()
	if err := p.expectWord("func"); err != nil {
		return err
	}
	name, err := p.expectSymbol('@')
	if err != nil {
		return err
	}
	if err := p.expectRune('('); err != nil {
		return err
	}

	var paramNames []string
	var paramTypes []ir.TensorType
	p.skipSpace()
	for p.peek() != ')' {
		pname, err := p.expectSymbol('%')
		if err != nil {
			return err
		}
		if err := p.expectRune(':'); err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		paramNames = append(paramNames, pname)
		paramTypes = append(paramTypes, t)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			p.skipSpace()
		}
	}
	p.next() // ')'

	var results []ir.TensorType
	p.skipSpace()
	if p.peekWord("->") {
		p.skipWord("->")
		results, err = p.parseTypeList()
		if err != nil {
			return err
		}
	}

	f := p.m.NewFunc(name, paramTypes, results, funcLoc)
	blk := p.m.EntryBlock(f)
	p.values = make(map[string]ir.ValueHandle, len(paramNames))
	for i, pn := range paramNames {
		if _, dup := p.values[pn]; dup {
			return p.errf(funcLoc, "duplicate parameter name %%%s", pn)
		}
		p.values[pn] = p.m.Block(blk).Args[i]
	}

	if err := p.expectRune('{'); err != nil {
		return err
	}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.next()
			return nil
		}
		if p.eof() {
			return p.errf(p.loc(), "unexpected end of input in function %q", name)
		}
		if err := p.parseOp(blk); err != nil {
			return err
		}
	}
}

func (p *parser) parseOp(blk ir.BlockHandle) error {
	p.skipSpace()
	opLoc := p.loc()

	var resultNames []string
	if p.peek() == '%' {
		for {
			rn, err := p.expectSymbol('%')
			if err != nil {
				return err
			}
			resultNames = append(resultNames, rn)
			p.skipSpace()
			if p.peek() == ',' {
				p.next()
				p.skipSpace()
				continue
			}
			break
		}
		if err := p.expectRune('='); err != nil {
			return err
		}
	}

	target, err := p.expectIdent()
	if err != nil {
		return err
	}
	if !ir.RegisteredTarget(target) {
		return p.errf(opLoc, "unknown operation %q: not in the supported dialect set", target)
	}

	var operands []ir.ValueHandle
	p.skipSpace()
	if p.peek() == '(' {
		p.next()
		p.skipSpace()
		for p.peek() != ')' {
			vn, err := p.expectSymbol('%')
			if err != nil {
				return err
			}
			v, ok := p.values[vn]
			if !ok {
				return p.errf(opLoc, "use of undefined value %%%s", vn)
			}
			operands = append(operands, v)
			p.skipSpace()
			if p.peek() == ',' {
				p.next()
				p.skipSpace()
			}
		}
		p.next() // ')'
	}

	attrs, err := p.parseAttrs()
	if err != nil {
		return err
	}

	var resultTypes []ir.TensorType
	p.skipSpace()
	if p.peek() == ':' {
		p.next()
		resultTypes, err = p.parseTypeList()
		if err != nil {
			return err
		}
	}
	if len(resultTypes) != len(resultNames) {
		return p.errf(opLoc, "op %q declares %d results but %d result types", target, len(resultNames), len(resultTypes))
	}

	oh := p.m.NewOp(blk, target, operands, attrs, resultTypes, opLoc)
	op := p.m.Op(oh)
	for i, rn := range resultNames {
		if _, dup := p.values[rn]; dup {
			return p.errf(opLoc, "redefinition of value %%%s", rn)
		}
		p.values[rn] = op.Results[i]
	}
	return nil
}

func (p *parser) parseAttrs() (map[string]ir.Attr, error) {
	attrs := map[string]ir.Attr{}
	p.skipSpace()
	if p.peek() != '{' {
		return attrs, nil
	}
	p.next()
	p.skipSpace()
	for p.peek() != '}' {
		keyLoc := p.loc()
		key, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, dup := attrs[key]; dup {
			return nil, p.errf(keyLoc, "duplicate attribute %q", key)
		}
		if err := p.expectRune('='); err != nil {
			return nil, err
		}
		val, err := p.parseAttrValue()
		if err != nil {
			return nil, err
		}
		attrs[key] = val
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			p.skipSpace()
		}
	}
	p.next() // '}'
	return attrs, nil
}

func (p *parser) parseAttrValue() (ir.Attr, error) {
	p.skipSpace()
	loc := p.loc()
	switch c := p.peek(); {
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return ir.StringAttr(s), nil
	case c == '-' || (c >= '0' && c <= '9'):
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return ir.IntAttr(n), nil
	default:
		word, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch word {
		case "true":
			return ir.BoolAttr(true), nil
		case "false":
			return ir.BoolAttr(false), nil
		}
		return nil, p.errf(loc, "invalid attribute value %q", word)
	}
}

func (p *parser) parseTypeList() ([]ir.TensorType, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.next()
		var ts []ir.TensorType
		p.skipSpace()
		for p.peek() != ')' {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ts = append(ts, t)
			p.skipSpace()
			if p.peek() == ',' {
				p.next()
				p.skipSpace()
			}
		}
		p.next() // ')'
		return ts, nil
	}
	var ts []ir.TensorType
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			p.skipSpace()
			continue
		}
		return ts, nil
	}
}

// parseType reads "tensor<...>" with "?" for dynamic dims, e.g.
// tensor<i1>, tensor<4xi32>, tensor<2x?xf64>.
func (p *parser) parseType() (ir.TensorType, error) {
	loc := p.loc()
	if err := p.expectWord("tensor"); err != nil {
		return ir.TensorType{}, err
	}
	if p.peek() != '<' {
		return ir.TensorType{}, p.errf(p.loc(), "expected '<' after tensor")
	}
	p.next()
	start := p.pos
	for !p.eof() && p.peek() != '>' {
		p.next()
	}
	if p.eof() {
		return ir.TensorType{}, p.errf(loc, "unterminated tensor type")
	}
	body := p.src[start:p.pos]
	p.next() // '>'
	return parseTypeBody(body, loc)
}

func parseTypeBody(body string, loc ir.Location) (ir.TensorType, error) {
	parts := strings.Split(body, "x")
	elemStr := parts[len(parts)-1]
	elem, ok := elemTypes[elemStr]
	if !ok {
		return ir.TensorType{}, &ParseError{Loc: loc, Message: fmt.Sprintf("unsupported element type %q", elemStr)}
	}
	dims := make([]int64, 0, len(parts)-1)
	for _, d := range parts[:len(parts)-1] {
		if d == "?" {
			dims = append(dims, ir.DynamicDim)
			continue
		}
		n, err := strconv.ParseInt(d, 10, 64)
		if err != nil || n < 0 {
			return ir.TensorType{}, &ParseError{Loc: loc, Message: fmt.Sprintf("invalid dimension %q", d)}
		}
		dims = append(dims, n)
	}
	return ir.TensorType{Elem: elem, Dims: dims}, nil
}

var elemTypes = map[string]ir.ElemType{
	"i1":  ir.I1,
	"i32": ir.I32,
	"i64": ir.I64,
	"f32": ir.F32,
	"f64": ir.F64,
}
