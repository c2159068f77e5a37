package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

// settingsRepository stores one device profile's identity entries in the
// device_settings table.
type settingsRepository struct {
	db        *sql.DB
	profileID uuid.UUID
}

func NewSettingsRepository(db *sql.DB, profileID uuid.UUID) ports.KeyValueStore {
	return &settingsRepository{
		db:        db,
		profileID: profileID,
	}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM device_settings WHERE profile_id = $1 AND key = $2`
	var value string
	err := r.db.QueryRowContext(ctx, query, r.profileID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO device_settings (profile_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW();
	`
	_, err := r.db.ExecContext(ctx, query, r.profileID, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM device_settings WHERE profile_id = $1 AND key = $2`
	_, err := r.db.ExecContext(ctx, query, r.profileID, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) Close() error {
	return r.db.Close()
}
