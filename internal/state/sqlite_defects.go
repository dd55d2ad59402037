package state

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// SaveDefects replaces the defects of a run and updates its defect count.
func (s *SQLiteStore) SaveDefects(runID string, defects []core.Defect) error {
	if s.db == nil {
		return ErrNotOpened
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`UPDATE runs SET defect_count = ? WHERE id = ?`, len(defects), runID)
	if err != nil {
		return fmt.Errorf("failed to update defect count: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update defect count: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if _, err := tx.Exec(`DELETE FROM defects WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete existing defects: %w", err)
	}

	for i, d := range defects {
		_, err := tx.Exec(
			`INSERT INTO defects (run_id, seq, rule, severity, line, text, version) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, d.Rule, d.Severity.String(), d.Line, d.Text, d.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert defect: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("saved defects", slog.String("run", runID), slog.Int("count", len(defects)))
	return nil
}

// GetDefects returns the defects of a run in the order they were saved.
func (s *SQLiteStore) GetDefects(runID string) ([]core.Defect, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.Query(
		`SELECT rule, severity, line, text, version FROM defects WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get defects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	defects := []core.Defect{}
	for rows.Next() {
		var (
			d        core.Defect
			severity string
		)
		if err := rows.Scan(&d.Rule, &severity, &d.Line, &d.Text, &d.Version); err != nil {
			return nil, fmt.Errorf("failed to scan defect: %w", err)
		}
		sev, ok := core.ParseSeverity(severity)
		if !ok {
			return nil, fmt.Errorf("defect of run %s has unknown severity %q", runID, severity)
		}
		d.Severity = sev
		defects = append(defects, d)
	}
	return defects, rows.Err()
}
