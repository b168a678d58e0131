package ir

// Registered operation targets. The textual parser accepts exactly this
// vocabulary; anything else is a parse failure. The set is fixed at build
// time (no runtime dialect registration).
const (
	// TargetShapeAssertion is the runtime shape precondition emitted by the
	// tracing frontend. The verification pass discharges or reports it.
	TargetShapeAssertion = "shape_assertion"

	// OpReturn terminates a function body.
	OpReturn = "return"

	// OpCall invokes another function in the module ("callee" attribute).
	OpCall = "func.call"

	// Elementwise integer arithmetic.
	OpAdd = "arr.add"
	OpMul = "arr.mul"
	OpSub = "arr.sub"

	// OpGetDimensionSize reads one dimension extent ("dimension" attribute)
	// as a rank-0 i32.
	OpGetDimensionSize = "arr.get_dimension_size"

	// OpReshape reshapes to the static result type; OpDynamicReshape takes
	// the target shape as a second operand.
	OpReshape        = "arr.reshape"
	OpDynamicReshape = "arr.dynamic_reshape"
)

// Attribute names used by the registered ops.
const (
	AttrCallee    = "callee"
	AttrDimension = "dimension"
)

var registeredTargets = map[string]bool{
	TargetShapeAssertion: true,
	OpReturn:             true,
	OpCall:               true,
	OpConstant:           true,
	OpAdd:                true,
	OpMul:                true,
	OpSub:                true,
	OpGetDimensionSize:   true,
	OpReshape:            true,
	OpDynamicReshape:     true,
}

// RegisteredTarget reports whether name is in the supported op vocabulary.
func RegisteredTarget(name string) bool { return registeredTargets[name] }

// Elementwise reports whether the target is elementwise integer arithmetic
// (shape-preserving, foldable over constants).
func Elementwise(target string) bool {
	switch target {
	case OpAdd, OpMul, OpSub:
		return true
	}
	return false
}

// Pure reports whether the target is side-effect free and therefore eligible
// for common-subexpression elimination.
func Pure(target string) bool {
	switch target {
	case OpConstant, OpAdd, OpMul, OpSub, OpGetDimensionSize, OpReshape, OpDynamicReshape:
		return true
	}
	return false
}
