package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
	"github.com/nexuscrm/fieldstudio/internal/logger"
	"github.com/nexuscrm/fieldstudio/pkg/capabilities"
	appErrors "github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/metadata"
	"github.com/nexuscrm/fieldstudio/pkg/metadata/xmldoc"
)

// FieldService reads and writes field definitions of business objects.
type FieldService struct {
	docs    ports.DocumentRepository
	objects ports.ObjectRepository
}

func NewFieldService(docs ports.DocumentRepository, objects ports.ObjectRepository) *FieldService {
	return &FieldService{docs: docs, objects: objects}
}

// ListFields returns a reference to every field of object, ordered by path.
// Documents that cannot be decoded are skipped.
func (s *FieldService) ListFields(ctx context.Context, object string) ([]fieldtypes.FieldRef, error) {
	if _, err := s.objects.Get(ctx, object); err != nil {
		return nil, err
	}
	docs, err := s.docs.List(ctx, metadata.FieldPrefix(object))
	if err != nil {
		return nil, err
	}

	refs := make([]fieldtypes.FieldRef, 0, len(docs))
	for _, doc := range docs {
		attrs, err := decodeRoot(doc, metadata.FieldRootElement)
		if err != nil {
			logger.Warn("Skipping unreadable field document", "path", doc.Path, "error", err)
			continue
		}
		refs = append(refs, fieldtypes.FieldRef{
			Type:     fieldtypes.FieldType(str(attrs[fieldtypes.AttrType])),
			APICode:  str(attrs[fieldtypes.AttrAPICode]),
			Label:    str(attrs[fieldtypes.AttrLabel]),
			FilePath: doc.Path,
		})
	}
	return refs, nil
}

// GetField returns the stored attributes of one field as decoded from its document.
func (s *FieldService) GetField(ctx context.Context, object, code string) (fieldtypes.Attributes, error) {
	doc, err := s.docs.Get(ctx, metadata.FieldPath(object, code))
	if appErrors.IsNotFound(err) {
		return nil, appErrors.NewNotFoundError("Field", object+"."+code)
	}
	if err != nil {
		return nil, err
	}
	attrs, err := decodeRoot(doc, metadata.FieldRootElement)
	if err != nil {
		return nil, err
	}
	return fieldtypes.Attributes(attrs), nil
}

// UpdateField replaces the definition of an existing field. The apiCode and type
// of a field never change.
func (s *FieldService) UpdateField(ctx context.Context, object, code string, attrs fieldtypes.Attributes) (fieldtypes.Attributes, error) {
	current, err := s.GetField(ctx, object, code)
	if err != nil {
		return nil, err
	}
	attrs = copyAttrs(attrs)

	switch given := str(attrs[fieldtypes.AttrAPICode]); {
	case given == "":
		attrs[fieldtypes.AttrAPICode] = code
	case given != code:
		return nil, appErrors.NewValidationError(fieldtypes.AttrAPICode, "API code cannot be changed")
	}
	switch given := str(attrs[fieldtypes.AttrType]); {
	case given == "":
		attrs[fieldtypes.AttrType] = current[fieldtypes.AttrType]
	case given != str(current[fieldtypes.AttrType]):
		return nil, appErrors.NewValidationError(fieldtypes.AttrType, "Field type cannot be changed")
	}

	out, err := s.normalize(ctx, attrs)
	if err != nil {
		return nil, err
	}
	content, err := encodeField(out)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{Path: metadata.FieldPath(object, code), DocType: models.DocTypeField, Content: content}
	if err := s.docs.Put(ctx, doc); err != nil {
		return nil, err
	}
	logger.Info("Field updated", "object", object, "apiCode", code, "revision", doc.Revision)
	return out, nil
}

// CreateField adds a new field to object.
func (s *FieldService) CreateField(ctx context.Context, object string, attrs fieldtypes.Attributes) (fieldtypes.Attributes, error) {
	if _, err := s.objects.Get(ctx, object); err != nil {
		return nil, err
	}
	out, err := s.normalize(ctx, copyAttrs(attrs))
	if err != nil {
		return nil, err
	}
	content, err := encodeField(out)
	if err != nil {
		return nil, err
	}
	code := str(out[fieldtypes.AttrAPICode])
	doc := &models.Document{Path: metadata.FieldPath(object, code), DocType: models.DocTypeField, Content: content}
	err = s.docs.Create(ctx, doc)
	if appErrors.IsConflict(err) {
		return nil, appErrors.NewConflictError("Field", fieldtypes.AttrAPICode, code)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Field created", "object", object, "apiCode", code, "type", out[fieldtypes.AttrType])
	return out, nil
}

// normalize validates attrs and returns them in their persisted shape.
func (s *FieldService) normalize(ctx context.Context, attrs fieldtypes.Attributes) (fieldtypes.Attributes, error) {
	if err := fieldtypes.Validate(attrs); err != nil {
		return nil, translateValidation(err)
	}
	def, err := fieldtypes.Parse(attrs)
	if err != nil {
		return nil, translateValidation(err)
	}

	switch def.Type {
	case fieldtypes.TypeAddress:
		cols := fieldtypes.AddressColumns(def.APICode)
		def.Address = &cols
	case fieldtypes.TypeLookup:
		if err := s.checkLookup(ctx, def.Lookup); err != nil {
			return nil, err
		}
	}
	return def.Flatten(), nil
}

func (s *FieldService) checkLookup(ctx context.Context, lookup *fieldtypes.LookupAttributes) error {
	if _, err := s.objects.Get(ctx, lookup.ReferencedObject); err != nil {
		if appErrors.IsNotFound(err) {
			return appErrors.NewValidationError(fieldtypes.AttrReferencedObject, "Unknown object "+lookup.ReferencedObject)
		}
		return err
	}
	if capabilities.HasDuplicates(lookup.DisplayColumns) {
		return appErrors.NewValidationError(fieldtypes.AttrDisplayColumns, "Display columns must be unique")
	}
	refs, err := s.ListFields(ctx, lookup.ReferencedObject)
	if err != nil {
		return err
	}
	codes := make([]string, 0, len(refs))
	for _, r := range refs {
		codes = append(codes, r.APICode)
	}
	if ok, missing := capabilities.Subset(lookup.DisplayColumns, codes); !ok {
		return appErrors.NewValidationError(fieldtypes.AttrDisplayColumns,
			fmt.Sprintf("%s has no field %s", lookup.ReferencedObject, missing[0]))
	}
	return nil
}

func translateValidation(err error) error {
	var verrs fieldtypes.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return appErrors.NewFieldsValidationError(verrs)
	case errors.Is(err, fieldtypes.ErrUnsupportedFieldType):
		return appErrors.NewUnsupportedError(strings.TrimPrefix(err.Error(), "unsupported "))
	default:
		return err
	}
}

func encodeField(attrs fieldtypes.Attributes) ([]byte, error) {
	content, err := xmldoc.Encode(map[string]any{metadata.FieldRootElement: map[string]any(attrs)})
	if err != nil {
		return nil, appErrors.NewValidationError("body", err.Error())
	}
	return content, nil
}

func copyAttrs(attrs fieldtypes.Attributes) fieldtypes.Attributes {
	out := make(fieldtypes.Attributes, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
