package ir

// Handle types index the Module arenas. The zero module has empty arenas, so
// any handle obtained from one module is meaningless in another.
type (
	OpHandle     int32
	RegionHandle int32
	BlockHandle  int32
	ValueHandle  int32
)

// Nil handles mark absent references (e.g. the defining op of a block
// argument).
const (
	NilOp     OpHandle     = -1
	NilRegion RegionHandle = -1
	NilBlock  BlockHandle  = -1
	NilValue  ValueHandle  = -1
)

// Module is the root of the IR tree. It owns every node through its arenas;
// functions, regions, blocks and operations reference each other only through
// handles into these arenas.
type Module struct {
	Name  string
	Funcs []Function

	ops     []Operation
	regions []Region
	blocks  []Block
	values  []Value
}

// Function is a top-level function with a single body region.
type Function struct {
	Name    string
	Params  []TensorType
	Results []TensorType
	Body    RegionHandle
	Loc     Location
}

// Region is an ordered list of blocks nested under an operation or function.
type Region struct {
	Blocks []BlockHandle
}

// Block holds block arguments and an ordered operation list.
type Block struct {
	Args []ValueHandle
	Ops  []OpHandle
}

// Operation is an IR node: a target identifier, ordered operands, named
// attributes, results, and zero or more nested regions.
type Operation struct {
	Target   string
	Operands []ValueHandle
	Attrs    map[string]Attr
	Results  []ValueHandle
	Regions  []RegionHandle
	Loc      Location

	// Block is the owning block; set when the op is appended, cleared on
	// erasure.
	Block  BlockHandle
	Erased bool
}

// Value is an SSA value: a block argument (Def == NilOp) or an operation
// result.
type Value struct {
	Type TensorType
	Def  OpHandle
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// Op returns the arena node for h. The pointer stays valid for the life of
// the module (arenas never compact).
func (m *Module) Op(h OpHandle) *Operation { return &m.ops[h] }

// Region returns the arena node for h.
func (m *Module) Region(h RegionHandle) *Region { return &m.regions[h] }

// Block returns the arena node for h.
func (m *Module) Block(h BlockHandle) *Block { return &m.blocks[h] }

// Value returns the arena node for h.
func (m *Module) Value(h ValueHandle) *Value { return &m.values[h] }

// NumOps returns the arena size, counting erased operations.
func (m *Module) NumOps() int { return len(m.ops) }

// NewRegion allocates an empty region.
func (m *Module) NewRegion() RegionHandle {
	m.regions = append(m.regions, Region{})
	return RegionHandle(len(m.regions) - 1)
}

// NewBlock allocates a block with the given argument types and appends it to
// region r.
func (m *Module) NewBlock(r RegionHandle, argTypes []TensorType) BlockHandle {
	args := make([]ValueHandle, len(argTypes))
	for i, t := range argTypes {
		m.values = append(m.values, Value{Type: cloneType(t), Def: NilOp})
		args[i] = ValueHandle(len(m.values) - 1)
	}
	m.blocks = append(m.blocks, Block{Args: args})
	h := BlockHandle(len(m.blocks) - 1)
	m.regions[r].Blocks = append(m.regions[r].Blocks, h)
	return h
}

// NewFunc allocates a function with a one-block body whose block arguments
// mirror the parameter types.
func (m *Module) NewFunc(name string, params, results []TensorType, loc Location) *Function {
	body := m.NewRegion()
	m.NewBlock(body, params)
	m.Funcs = append(m.Funcs, Function{
		Name:    name,
		Params:  params,
		Results: results,
		Body:    body,
		Loc:     loc,
	})
	return &m.Funcs[len(m.Funcs)-1]
}

// EntryBlock returns the first block of a function body.
func (m *Module) EntryBlock(f *Function) BlockHandle {
	return m.regions[f.Body].Blocks[0]
}

// NewOp allocates an operation, creates its result values, and appends it to
// block b.
func (m *Module) NewOp(b BlockHandle, target string, operands []ValueHandle, attrs map[string]Attr, resultTypes []TensorType, loc Location) OpHandle {
	h := OpHandle(len(m.ops))
	results := make([]ValueHandle, len(resultTypes))
	for i, t := range resultTypes {
		m.values = append(m.values, Value{Type: cloneType(t), Def: h})
		results[i] = ValueHandle(len(m.values) - 1)
	}
	if attrs == nil {
		attrs = map[string]Attr{}
	}
	m.ops = append(m.ops, Operation{
		Target:   target,
		Operands: operands,
		Attrs:    attrs,
		Results:  results,
		Regions:  nil,
		Loc:      loc,
		Block:    b,
	})
	m.blocks[b].Ops = append(m.blocks[b].Ops, h)
	return h
}

// cloneType copies the dims slice so in-place shape refinement on one value
// never aliases another value's type.
func cloneType(t TensorType) TensorType {
	if len(t.Dims) == 0 {
		return t
	}
	dims := make([]int64, len(t.Dims))
	copy(dims, t.Dims)
	t.Dims = dims
	return t
}

// EraseOp unlinks the operation from its block and marks it erased. Handles
// to the op remain valid; Walk skips erased nodes.
func (m *Module) EraseOp(h OpHandle) {
	op := &m.ops[h]
	if op.Erased {
		return
	}
	if op.Block != NilBlock {
		blk := &m.blocks[op.Block]
		for i, o := range blk.Ops {
			if o == h {
				blk.Ops = append(blk.Ops[:i], blk.Ops[i+1:]...)
				break
			}
		}
	}
	op.Block = NilBlock
	op.Erased = true
}

// ReplaceAllUses rewires every operand reference from old to new across the
// module.
func (m *Module) ReplaceAllUses(old, new ValueHandle) {
	for i := range m.ops {
		op := &m.ops[i]
		if op.Erased {
			continue
		}
		for j, v := range op.Operands {
			if v == old {
				op.Operands[j] = new
			}
		}
	}
}
