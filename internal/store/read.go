package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a run ID has no journal row.
var ErrNotFound = errors.New("run not found")

// ListRuns returns journal rows in sequence order, newest first. limit <= 0
// means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := `
		SELECT id, seq, module_name, fingerprint, outcome, stage, category, report
		FROM runs ORDER BY seq DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Seq, &r.ModuleName, &r.Fingerprint, &r.Outcome, &r.Stage, &r.Category, &r.Report); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return recs, nil
}

// GetRun returns one journal row by run ID.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, error) {
	var r RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, module_name, fingerprint, outcome, stage, category, report
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.ModuleName, &r.Fingerprint, &r.Outcome, &r.Stage, &r.Category, &r.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}
