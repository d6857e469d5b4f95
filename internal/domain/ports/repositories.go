package ports

import (
	"context"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
)

// DocumentRepository stores metadata documents.
type DocumentRepository interface {
	// Get returns a NotFoundError when no document exists at path.
	Get(ctx context.Context, path string) (*models.Document, error)

	// List returns the documents whose path starts with prefix, ordered by path.
	List(ctx context.Context, prefix string) ([]*models.Document, error)

	// Create fails with a ConflictError when the path is taken.
	Create(ctx context.Context, doc *models.Document) error

	// Put inserts or replaces the document.
	Put(ctx context.Context, doc *models.Document) error
}

// ObjectRepository stores business object definitions.
type ObjectRepository interface {
	List(ctx context.Context) ([]models.ObjectRecord, error)
	Get(ctx context.Context, apiName string) (*models.ObjectRecord, error)
	Upsert(ctx context.Context, obj models.ObjectRecord) error
}

// SettingRepository stores company setting switches.
type SettingRepository interface {
	ListEnabled(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Upsert(ctx context.Context, code string, enabled bool) error
}
