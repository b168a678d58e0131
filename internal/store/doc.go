// Package store provides the durable run journal: one SQLite row per
// pipeline invocation, recording outcome, failure category, and the
// diagnostic report.
//
// The journal is append-only observability. It never feeds results back into
// compilation; there is no caching or reuse of refined modules.
//
// Ordering uses a logical sequence number per journal, not wall-clock
// timestamps; run IDs are UUIDv7 and therefore time-sortable on their own.
package store
