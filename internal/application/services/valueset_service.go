package services

import (
	"context"
	"strings"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
	"github.com/nexuscrm/fieldstudio/internal/logger"
	"github.com/nexuscrm/fieldstudio/pkg/capabilities"
	appErrors "github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/nexuscrm/fieldstudio/pkg/metadata/xmldoc"
	apimodels "github.com/nexuscrm/fieldstudio/pkg/models"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
)

// ValueSetService manages global value sets shared between drop-down list fields.
type ValueSetService struct {
	docs ports.DocumentRepository
}

func NewValueSetService(docs ports.DocumentRepository) *ValueSetService {
	return &ValueSetService{docs: docs}
}

// List returns every global value set ordered by name.
func (s *ValueSetService) List(ctx context.Context) ([]apimodels.GlobalValueSetSummary, error) {
	docs, err := s.docs.List(ctx, valueset.PathPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]apimodels.GlobalValueSetSummary, 0, len(docs))
	for _, doc := range docs {
		name, ok := valueset.NameFromPath(doc.Path)
		if !ok {
			continue
		}
		summary := apimodels.GlobalValueSetSummary{
			Name:       name,
			SourcePath: doc.Path,
			RootKey:    valueset.DefaultRootKey,
			ItemKey:    valueset.DefaultItemKey,
		}
		if body, err := decodeRoot(doc, valueset.DefaultRootKey); err == nil {
			summary.Title = str(body[valueset.KeyTitle])
		} else {
			logger.Warn("Global value set without readable title", "path", doc.Path, "error", err)
		}
		out = append(out, summary)
	}
	return out, nil
}

// Create stores a new value set whose options are the given values in order.
func (s *ValueSetService) Create(ctx context.Context, req apimodels.CreateGlobalValueSetRequest) (*apimodels.GlobalValueSetSummary, error) {
	if err := valueset.ValidateName(req.Name); err != nil {
		return nil, appErrors.NewValidationError("name", err.Error())
	}
	var values []string
	for _, v := range req.Values {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, appErrors.NewValidationError("values", "At least one value is required")
	}
	if capabilities.HasDuplicates(values) {
		return nil, appErrors.NewValidationError("values", "Values must be unique")
	}

	vs := valueset.ValueSet{Title: strings.TrimSpace(req.Title), Sorting: valueset.SortingNone, Options: valueset.FromValues(values)}
	content, err := xmldoc.Encode(vs.Document(valueset.DefaultRootKey, valueset.DefaultItemKey))
	if err != nil {
		return nil, appErrors.NewInternalError("encode value set", err)
	}
	p := valueset.PathFor(req.Name)
	err = s.docs.Create(ctx, &models.Document{Path: p, DocType: models.DocTypeGlobalValueSet, Content: content})
	if appErrors.IsConflict(err) {
		return nil, appErrors.NewConflictError("Global value set", "name", req.Name)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Global value set created", "name", req.Name, "values", len(values))
	return &apimodels.GlobalValueSetSummary{
		Name:       req.Name,
		Title:      vs.Title,
		SourcePath: p,
		RootKey:    valueset.DefaultRootKey,
		ItemKey:    valueset.DefaultItemKey,
	}, nil
}
