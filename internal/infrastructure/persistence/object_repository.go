package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	"github.com/nexuscrm/fieldstudio/pkg/errors"
)

type ObjectRepository struct {
	db *sql.DB
}

func NewObjectRepository(db *sql.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

func (r *ObjectRepository) List(ctx context.Context) ([]models.ObjectRecord, error) {
	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s ORDER BY %s", ColAPIName, ColLabel, ColPluralLabel, TableObjectDefinition, ColAPIName)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var objects []models.ObjectRecord
	for rows.Next() {
		var obj models.ObjectRecord
		if err := rows.Scan(&obj.APIName, &obj.Label, &obj.PluralLabel); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (r *ObjectRepository) Get(ctx context.Context, apiName string) (*models.ObjectRecord, error) {
	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s = ?", ColAPIName, ColLabel, ColPluralLabel, TableObjectDefinition, ColAPIName)
	var obj models.ObjectRecord
	err := r.db.QueryRowContext(ctx, query, apiName).Scan(&obj.APIName, &obj.Label, &obj.PluralLabel)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("Object", apiName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load object %s: %w", apiName, err)
	}
	return &obj, nil
}

func (r *ObjectRepository) Upsert(ctx context.Context, obj models.ObjectRecord) error {
	query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE %s = VALUES(%s), %s = VALUES(%s)",
		TableObjectDefinition, ColAPIName, ColLabel, ColPluralLabel, ColLabel, ColLabel, ColPluralLabel, ColPluralLabel)
	if _, err := r.db.ExecContext(ctx, query, obj.APIName, obj.Label, obj.PluralLabel); err != nil {
		return fmt.Errorf("failed to save object %s: %w", obj.APIName, err)
	}
	return nil
}
