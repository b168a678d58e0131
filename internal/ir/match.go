package ir

// Constant op vocabulary shared by the matcher and the refinement passes.
const (
	// OpConstant is the integer constant op ("arr.constant" with a "value"
	// attribute).
	OpConstant = "arr.constant"
	// AttrConstValue names the constant payload attribute.
	AttrConstValue = "value"
)

// MatchInt constant-folds a value to a statically known integer. It succeeds
// only when the value is the result of an arr.constant op with an integer
// payload; anything else (block arguments, non-constant ops, non-integer
// payloads) is not statically known.
func (m *Module) MatchInt(v ValueHandle) (int64, bool) {
	if v == NilValue {
		return 0, false
	}
	def := m.Value(v).Def
	if def == NilOp {
		return 0, false
	}
	op := m.Op(def)
	if op.Erased || op.Target != OpConstant {
		return 0, false
	}
	a, ok := op.Attrs[AttrConstValue].(IntAttr)
	if !ok {
		return 0, false
	}
	return int64(a), true
}
