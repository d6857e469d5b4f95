package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

type SettingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) ListEnabled(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s", ColCode, TableCompanySetting, ColEnabled, ColCode)
	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *SettingRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", TableCompanySetting)
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count settings: %w", err)
	}
	return n, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, code string, enabled bool) error {
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) ON DUPLICATE KEY UPDATE %s = VALUES(%s)",
		TableCompanySetting, ColCode, ColEnabled, ColEnabled, ColEnabled)
	if _, err := r.db.ExecContext(ctx, query, code, enabled); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", code, err)
	}
	return nil
}
