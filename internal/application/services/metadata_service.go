package services

import (
	"context"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
	"github.com/nexuscrm/fieldstudio/internal/logger"
	appErrors "github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/nexuscrm/fieldstudio/pkg/metadata/xmldoc"
)

// MetadataService exposes stored XML documents as generic JSON trees.
type MetadataService struct {
	docs ports.DocumentRepository
}

func NewMetadataService(docs ports.DocumentRepository) *MetadataService {
	return &MetadataService{docs: docs}
}

// GetDocument returns {rootElement: content} for the document at p. Single
// children come back as scalars, exactly as the XML conversion yields them.
func (s *MetadataService) GetDocument(ctx context.Context, p string) (map[string]any, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	tree, err := xmldoc.Decode(doc.Content)
	if err != nil {
		return nil, appErrors.NewInternalError("malformed metadata document "+p, err)
	}
	return tree, nil
}

// PutDocument stores tree as the XML document at p, creating it when missing.
func (s *MetadataService) PutDocument(ctx context.Context, p string, tree map[string]any) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	content, err := xmldoc.Encode(tree)
	if err != nil {
		return appErrors.NewValidationError("body", err.Error())
	}
	doc := &models.Document{Path: p, DocType: docTypeFor(p), Content: content}
	if err := s.docs.Put(ctx, doc); err != nil {
		return err
	}
	logger.Debug("Metadata document saved", "path", p, "revision", doc.Revision)
	return nil
}
