package client

import (
	"context"
	"net/http"

	"github.com/nexuscrm/fieldstudio/pkg/capabilities"
	"github.com/nexuscrm/fieldstudio/pkg/models"
)

// ListObjectDefinitions returns every business object with its fields.
func (c *Client) ListObjectDefinitions(ctx context.Context) ([]models.ObjectDefinition, error) {
	body, err := c.query(ctx, ObjectDefinitionsKey, "/api/object-definitions")
	if err != nil {
		return nil, err
	}
	var defs []models.ObjectDefinition
	if err := decode(body, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// ListGlobalValueSets returns the shared value sets a drop-down list can use.
func (c *Client) ListGlobalValueSets(ctx context.Context) ([]models.GlobalValueSetSummary, error) {
	body, err := c.query(ctx, GlobalValueSetsKey, "/api/global-value-sets")
	if err != nil {
		return nil, err
	}
	var sets []models.GlobalValueSetSummary
	if err := decode(body, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// CreateGlobalValueSet creates a shared value set from plain values.
func (c *Client) CreateGlobalValueSet(ctx context.Context, req models.CreateGlobalValueSetRequest) (*models.GlobalValueSetSummary, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/global-value-sets", req)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(GlobalValueSetsKey)
	var summary models.GlobalValueSetSummary
	if err := decode(body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetCapabilities resolves the enabled company settings.
func (c *Client) GetCapabilities(ctx context.Context) (capabilities.Set, error) {
	body, err := c.query(ctx, CapabilitiesKey, "/api/settings/capabilities")
	if err != nil {
		return capabilities.Set{}, err
	}
	var resp models.CapabilitiesResponse
	if err := decode(body, &resp); err != nil {
		return capabilities.Set{}, err
	}
	return capabilities.New(resp.Capabilities...), nil
}
