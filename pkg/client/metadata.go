package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// GetMetadata returns a metadata document as raw JSON.
func (c *Client) GetMetadata(ctx context.Context, path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "/")
	return c.query(ctx, MetadataKey(path), "/api/metadata/"+path)
}

// PutMetadata replaces a metadata document with the given raw JSON.
func (c *Client) PutMetadata(ctx context.Context, path string, doc []byte) error {
	path = strings.TrimPrefix(path, "/")
	if _, err := c.doRequest(ctx, http.MethodPut, "/api/metadata/"+path, json.RawMessage(doc)); err != nil {
		return err
	}
	c.cache.Invalidate(MetadataKey(path), GlobalValueSetsKey)
	return nil
}
