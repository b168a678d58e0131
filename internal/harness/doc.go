// Package harness runs conformance scenarios for the refinement pipeline.
//
// A scenario is a YAML file naming a textual IR module and the expected
// pipeline outcome (success, or a failure category plus message substrings).
// Scenario files are validated against an embedded CUE schema before strict
// YAML decoding, so typos fail loudly instead of silently skipping checks.
//
// Golden-file comparison (goldie) pins the rendered outcome of each
// scenario; regenerate with:
//
//	go test ./internal/harness -update
package harness
