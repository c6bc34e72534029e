package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bobarin/scenecast/internal/models"
)

// UpsertProcessStatus records the current status for a process. Terminal
// statuses stick: once a row reads completed or failed, later updates are
// no-ops. Details accumulate across updates, later keys overwriting earlier
// ones.
func (db *DB) UpsertProcessStatus(ctx context.Context, processID string, status models.ProcessStatus, details models.JSONB) error {
	query := `
		INSERT INTO process_status (process_id, status, details, updated_at)
		VALUES ($1, $2, COALESCE($3, '{}'::jsonb), NOW())
		ON CONFLICT (process_id) DO UPDATE SET
			status = EXCLUDED.status,
			details = process_status.details || EXCLUDED.details,
			updated_at = NOW()
		WHERE process_status.status NOT IN ('completed', 'failed')
	`

	if _, err := db.ExecContext(ctx, query, processID, status, details); err != nil {
		return fmt.Errorf("failed to upsert process status: %w", err)
	}
	return nil
}

// GetProcessStatus fetches one process record.
func (db *DB) GetProcessStatus(ctx context.Context, processID string) (*models.ProcessRecord, error) {
	query := `
		SELECT process_id, status, details, updated_at
		FROM process_status
		WHERE process_id = $1
	`

	rec := &models.ProcessRecord{}
	err := db.QueryRowContext(ctx, query, processID).Scan(
		&rec.ProcessID, &rec.Status, &rec.Details, &rec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("process not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get process status: %w", err)
	}

	return rec, nil
}

// ListProcessStatuses returns the most recently updated process records.
func (db *DB) ListProcessStatuses(ctx context.Context, limit int) ([]models.ProcessRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT process_id, status, details, updated_at
		FROM process_status
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list process statuses: %w", err)
	}
	defer rows.Close()

	var records []models.ProcessRecord
	for rows.Next() {
		var rec models.ProcessRecord
		if err := rows.Scan(&rec.ProcessID, &rec.Status, &rec.Details, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan process status: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
