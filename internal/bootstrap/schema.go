package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nexuscrm/fieldstudio/internal/infrastructure/persistence"
	"github.com/nexuscrm/fieldstudio/internal/logger"
)

// SchemaStatements returns the DDL for every table the server needs, in creation order.
func SchemaStatements() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s VARCHAR(512) NOT NULL PRIMARY KEY,
	%s VARCHAR(64) NOT NULL,
	%s MEDIUMTEXT NOT NULL,
	%s VARCHAR(36) NOT NULL,
	%s DATETIME NOT NULL
)`, persistence.TableMetadataDocument,
			persistence.ColPath, persistence.ColDocType, persistence.ColContent, persistence.ColRevision, persistence.ColUpdatedAt),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s VARCHAR(255) NOT NULL PRIMARY KEY,
	%s VARCHAR(255) NOT NULL,
	%s VARCHAR(255) NOT NULL DEFAULT ''
)`, persistence.TableObjectDefinition,
			persistence.ColAPIName, persistence.ColLabel, persistence.ColPluralLabel),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s VARCHAR(255) NOT NULL PRIMARY KEY,
	%s BOOLEAN NOT NULL DEFAULT FALSE
)`, persistence.TableCompanySetting,
			persistence.ColCode, persistence.ColEnabled),
	}
}

// InitializeSchema creates the tables when they do not exist yet.
func InitializeSchema(ctx context.Context, db *sql.DB) error {
	logger.Info("Initializing schema")
	for _, stmt := range SchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
