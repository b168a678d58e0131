package ir

// Version constants for the IR encoding and the tool.
const (
	// BytecodeVersion is the binary module format version.
	BytecodeVersion = 1

	// ToolVersion is the shapecheck release version.
	ToolVersion = "0.1.0"
)
