package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	"github.com/nexuscrm/fieldstudio/internal/infrastructure/database"
	"github.com/nexuscrm/fieldstudio/pkg/errors"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

var documentColumns = strings.Join([]string{ColPath, ColDocType, ColContent, ColRevision, ColUpdatedAt}, ", ")

func (r *DocumentRepository) Get(ctx context.Context, path string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", documentColumns, TableMetadataDocument, ColPath)
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, path))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("Metadata", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", path, err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, prefix string) ([]*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE ? ORDER BY %s", documentColumns, TableMetadataDocument, ColPath, ColPath)
	rows, err := r.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents under %s: %w", prefix, err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	stamp(doc)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)", TableMetadataDocument, documentColumns)
	_, err := r.db.ExecContext(ctx, query, doc.Path, doc.DocType, string(doc.Content), doc.Revision, doc.UpdatedAt)
	if database.IsDuplicateKey(err) {
		return errors.NewConflictError("Metadata", ColPath, doc.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to create document %s: %w", doc.Path, err)
	}
	return nil
}

func (r *DocumentRepository) Put(ctx context.Context, doc *models.Document) error {
	stamp(doc)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE %s = VALUES(%s), %s = VALUES(%s), %s = VALUES(%s), %s = VALUES(%s)",
		TableMetadataDocument, documentColumns,
		ColDocType, ColDocType, ColContent, ColContent, ColRevision, ColRevision, ColUpdatedAt, ColUpdatedAt)
	if _, err := r.db.ExecContext(ctx, query, doc.Path, doc.DocType, string(doc.Content), doc.Revision, doc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.Path, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var content string
	if err := row.Scan(&doc.Path, &doc.DocType, &content, &doc.Revision, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Content = []byte(content)
	return &doc, nil
}

// stamp assigns a fresh revision to every write.
func stamp(doc *models.Document) {
	doc.Revision = uuid.NewString()
	doc.UpdatedAt = time.Now().UTC().Truncate(time.Second)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
