package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestModule() *Module {
	m := NewModule("m")
	f := m.NewFunc("main", []TensorType{{Elem: I32}}, nil, Location{})
	blk := m.EntryBlock(f)
	m.NewOp(blk, OpReturn, []ValueHandle{m.Block(blk).Args[0]}, nil, nil, Location{})
	return m
}

func TestVerifyValidModule(t *testing.T) {
	assert.Empty(t, Verify(validTestModule()))
}

func TestVerifyEmptyTarget(t *testing.T) {
	m := validTestModule()
	blk := m.EntryBlock(&m.Funcs[0])
	m.NewOp(blk, "", nil, nil, nil, Location{})

	errs := Verify(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEmptyTarget, errs[0].Code)
}

func TestVerifyDanglingOperand(t *testing.T) {
	m := validTestModule()
	blk := m.EntryBlock(&m.Funcs[0])
	oh := m.NewOp(blk, OpReshape, nil, nil, nil, Location{})
	m.Op(oh).Operands = []ValueHandle{9999}

	errs := Verify(m)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrBadHandle, errs[0].Code)
}

func TestVerifyBlockBackrefMismatch(t *testing.T) {
	m := NewModule("m")
	f1 := m.NewFunc("a", nil, nil, Location{})
	m.NewFunc("b", nil, nil, Location{})
	oh := m.NewOp(m.EntryBlock(&m.Funcs[0]), OpReturn, nil, nil, nil, Location{})
	_ = f1
	// Corrupt the back-reference.
	m.Op(oh).Block = m.EntryBlock(&m.Funcs[1])

	errs := Verify(m)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrBlockBackref, errs[0].Code)
}

func TestVerifyReportsAllViolations(t *testing.T) {
	m := validTestModule()
	blk := m.EntryBlock(&m.Funcs[0])
	m.NewOp(blk, "", nil, nil, nil, Location{})
	oh := m.NewOp(blk, OpReshape, nil, nil, nil, Location{})
	m.Op(oh).Operands = []ValueHandle{-5}

	// Not fail-fast: both violations reported.
	errs := Verify(m)
	assert.GreaterOrEqual(t, len(errs), 2)
}
