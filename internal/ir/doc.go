// Package ir provides the arena-indexed intermediate representation for
// shapecheck.
//
// This package is the foundational layer: all other internal packages import
// ir; ir imports nothing internal. This keeps the IR free of circular
// dependencies.
//
// Key design constraints:
//   - Nodes live in arenas owned by the Module and are referenced by integer
//     handles, never by raw pointers between nodes.
//   - Ownership is strictly tree-shaped (module → function → region → block →
//     operation → result); operand references are non-owning back-links.
//   - Traversal uses an explicit worklist (Walk), never recursive pointer
//     chasing, so stack depth stays bounded on deep modules.
//   - Erasing an operation unlinks it from its block and marks it erased;
//     arenas never compact, so existing handles stay valid.
package ir
