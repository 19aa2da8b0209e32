package database

import (
	"database/sql"
	"fmt"
)

// GetRefreshState returns the last-triggered timestamp for the given public
// trigger id. Returns (0, nil) when the trigger has never fired.
func (db *DB) GetRefreshState(id string) (int64, error) {
	var last sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT last_triggered_at FROM public_refresh_state WHERE id = ?
	`, id).Scan(&last)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get refresh state: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return last.Int64, nil
}

// SetRefreshState records the trigger timestamp for the given id
func (db *DB) SetRefreshState(id string, triggeredAt int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO public_refresh_state (id, last_triggered_at)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET last_triggered_at = excluded.last_triggered_at
	`, id, triggeredAt)

	if err != nil {
		return fmt.Errorf("failed to set refresh state: %w", err)
	}
	return nil
}
