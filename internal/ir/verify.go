package ir

import "fmt"

// Structural verification error codes (V100-V199).
const (
	ErrBadHandle     = "V100" // handle out of arena range
	ErrEmptyTarget   = "V101" // operation with empty target identifier
	ErrBlockBackref  = "V102" // op/block membership disagreement
	ErrResultBackref = "V103" // result value not defined by its op
	ErrErasedInBlock = "V104" // erased op still linked into a block
	ErrEmptyBody     = "V105" // function body with no blocks
)

// StructError is a structural well-formedness violation.
type StructError struct {
	Field   string
	Message string
	Code    string
}

// Error implements the error interface.
func (e StructError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Verify checks the module tree for structural well-formedness: handle
// ranges, op/block membership, and result back-references. Returns all
// violations found (does not fail-fast). Semantic properties (shapes,
// assertion schemas) are out of scope here.
func Verify(m *Module) []StructError {
	var errs []StructError

	validOp := func(h OpHandle) bool { return h >= 0 && int(h) < len(m.ops) }
	validRegion := func(h RegionHandle) bool { return h >= 0 && int(h) < len(m.regions) }
	validBlock := func(h BlockHandle) bool { return h >= 0 && int(h) < len(m.blocks) }
	validValue := func(h ValueHandle) bool { return h >= 0 && int(h) < len(m.values) }

	for fi := range m.Funcs {
		f := &m.Funcs[fi]
		field := fmt.Sprintf("funcs[%d] (%s)", fi, f.Name)
		if !validRegion(f.Body) {
			errs = append(errs, StructError{field, "body region handle out of range", ErrBadHandle})
			continue
		}
		if len(m.regions[f.Body].Blocks) == 0 {
			errs = append(errs, StructError{field, "function body has no blocks", ErrEmptyBody})
		}
	}

	for bi := range m.blocks {
		blk := &m.blocks[bi]
		for _, oh := range blk.Ops {
			field := fmt.Sprintf("blocks[%d]", bi)
			if !validOp(oh) {
				errs = append(errs, StructError{field, "op handle out of range", ErrBadHandle})
				continue
			}
			op := &m.ops[oh]
			if op.Erased {
				errs = append(errs, StructError{field,
					fmt.Sprintf("erased op %d still linked into block", oh), ErrErasedInBlock})
			}
			if op.Block != BlockHandle(bi) {
				errs = append(errs, StructError{field,
					fmt.Sprintf("op %d block back-reference disagrees with membership", oh), ErrBlockBackref})
			}
		}
	}

	for oi := range m.ops {
		op := &m.ops[oi]
		if op.Erased {
			continue
		}
		field := fmt.Sprintf("ops[%d] (%s)", oi, op.Target)
		if op.Target == "" {
			errs = append(errs, StructError{field, "empty target identifier", ErrEmptyTarget})
		}
		for i, v := range op.Operands {
			if !validValue(v) {
				errs = append(errs, StructError{field,
					fmt.Sprintf("operand #%d value handle out of range", i), ErrBadHandle})
			}
		}
		for i, v := range op.Results {
			if !validValue(v) {
				errs = append(errs, StructError{field,
					fmt.Sprintf("result #%d value handle out of range", i), ErrBadHandle})
				continue
			}
			if m.values[v].Def != OpHandle(oi) {
				errs = append(errs, StructError{field,
					fmt.Sprintf("result #%d not defined by this op", i), ErrResultBackref})
			}
		}
		for i, r := range op.Regions {
			if !validRegion(r) {
				errs = append(errs, StructError{field,
					fmt.Sprintf("region #%d handle out of range", i), ErrBadHandle})
			}
		}
		if op.Block != NilBlock && !validBlock(op.Block) {
			errs = append(errs, StructError{field, "block back-reference out of range", ErrBadHandle})
		}
	}

	return errs
}
