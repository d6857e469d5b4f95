package services

import (
	"path"
	"strings"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	appErrors "github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/nexuscrm/fieldstudio/pkg/metadata"
	"github.com/nexuscrm/fieldstudio/pkg/metadata/xmldoc"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
)

// decodeRoot decodes a stored document and returns the content of its root element.
func decodeRoot(doc *models.Document, root string) (map[string]any, error) {
	tree, err := xmldoc.Decode(doc.Content)
	if err != nil {
		return nil, appErrors.NewInternalError("malformed metadata document "+doc.Path, err)
	}
	content, ok := tree[root].(map[string]any)
	if !ok {
		return nil, appErrors.NewInternalError("metadata document "+doc.Path+" has no "+root+" element", nil)
	}
	return content, nil
}

func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.Contains(p, "..") || path.Clean(p) != p {
		return "", appErrors.NewValidationError("path", "Invalid metadata path")
	}
	return p, nil
}

func docTypeFor(p string) string {
	if _, _, ok := metadata.ParseFieldPath(p); ok {
		return models.DocTypeField
	}
	if _, ok := valueset.NameFromPath(p); ok {
		return models.DocTypeGlobalValueSet
	}
	return models.DocTypeOther
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
