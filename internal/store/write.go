package store

import (
	"context"
	"fmt"
)

// RunRecord is one journal row.
type RunRecord struct {
	ID          string
	Seq         int64
	ModuleName  string
	Fingerprint string
	Outcome     string // "ok" | "fail"
	Stage       string // failing stage tag, empty on success
	Category    string // failure category name, empty on success
	Report      string // concatenated diagnostic text
}

// Run outcomes.
const (
	OutcomeOK   = "ok"
	OutcomeFail = "fail"
)

// WriteRun appends a run record. The sequence number is assigned here
// (max+1) under the single-writer connection. Duplicate run IDs are silently
// ignored (ON CONFLICT DO NOTHING) for idempotency.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("write run: empty run id")
	}
	if rec.Outcome != OutcomeOK && rec.Outcome != OutcomeFail {
		return fmt.Errorf("write run: invalid outcome %q", rec.Outcome)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, module_name, fingerprint, outcome, stage, category, report)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.ModuleName,
		rec.Fingerprint,
		rec.Outcome,
		rec.Stage,
		rec.Category,
		rec.Report,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}
