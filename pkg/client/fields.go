package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/models"
)

// ListFields returns the field references of an object.
func (c *Client) ListFields(ctx context.Context, object string) ([]fieldtypes.FieldRef, error) {
	body, err := c.query(ctx, FieldListKey(object), "/api/object-fields/"+url.PathEscape(object))
	if err != nil {
		return nil, err
	}
	var refs []fieldtypes.FieldRef
	if err := decode(body, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// GetFieldAttributes returns the flattened metadata of a field as stored.
func (c *Client) GetFieldAttributes(ctx context.Context, object, code string) (fieldtypes.Attributes, error) {
	body, err := c.query(ctx, FieldKey(object, code), fieldPath(object, code))
	if err != nil {
		return nil, err
	}
	var attrs fieldtypes.Attributes
	if err := decode(body, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// GetField fetches a field and parses it into its typed variant.
func (c *Client) GetField(ctx context.Context, object, code string) (fieldtypes.FieldDefinition, error) {
	attrs, err := c.GetFieldAttributes(ctx, object, code)
	if err != nil {
		return fieldtypes.FieldDefinition{}, err
	}
	def, err := fieldtypes.Parse(attrs)
	if err != nil {
		return fieldtypes.FieldDefinition{}, fmt.Errorf("field %s.%s: %w", object, code, err)
	}
	return def, nil
}

// UpdateField replaces a field's metadata. The field and its object's list are
// invalidated only when the server accepts the change.
func (c *Client) UpdateField(ctx context.Context, object, code string, attrs fieldtypes.Attributes) (*models.MutationResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPut, fieldPath(object, code), attrs)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(FieldKey(object, code), FieldListKey(object), ObjectDefinitionsKey)
	return decodeMutation(body)
}

// CreateField adds a field to an object.
func (c *Client) CreateField(ctx context.Context, object string, attrs fieldtypes.Attributes) (*models.MutationResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/object-fields/"+url.PathEscape(object), attrs)
	if err != nil {
		return nil, err
	}
	code := fmt.Sprint(attrs[fieldtypes.AttrAPICode])
	c.cache.Invalidate(FieldKey(object, code), FieldListKey(object), ObjectDefinitionsKey)
	return decodeMutation(body)
}

func fieldPath(object, code string) string {
	return "/api/object-fields/" + url.PathEscape(object) + "/" + url.PathEscape(code)
}

func decodeMutation(body []byte) (*models.MutationResponse, error) {
	var resp models.MutationResponse
	if len(body) == 0 {
		return &resp, nil
	}
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
