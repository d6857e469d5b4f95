package services

import (
	"context"

	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
	apimodels "github.com/nexuscrm/fieldstudio/pkg/models"
	"golang.org/x/sync/errgroup"
)

const objectFieldConcurrency = 4

// ObjectService lists business objects together with their fields.
type ObjectService struct {
	objects ports.ObjectRepository
	fields  *FieldService
}

func NewObjectService(objects ports.ObjectRepository, fields *FieldService) *ObjectService {
	return &ObjectService{objects: objects, fields: fields}
}

func (s *ObjectService) ListDefinitions(ctx context.Context) ([]apimodels.ObjectDefinition, error) {
	records, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]apimodels.ObjectDefinition, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(objectFieldConcurrency)
	for i, rec := range records {
		out[i] = apimodels.ObjectDefinition{APIName: rec.APIName, Label: rec.Label, PluralLabel: rec.PluralLabel}
		g.Go(func() error {
			refs, err := s.fields.ListFields(gctx, rec.APIName)
			if err != nil {
				return err
			}
			out[i].Fields = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
