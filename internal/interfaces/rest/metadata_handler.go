package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetadataService defines the interface for raw metadata document access
type MetadataService interface {
	GetDocument(ctx context.Context, path string) (map[string]any, error)
	PutDocument(ctx context.Context, path string, tree map[string]any) error
}

// MetadataHandler handles /api/metadata/*path
type MetadataHandler struct {
	svc MetadataService
}

func NewMetadataHandler(svc MetadataService) *MetadataHandler {
	return &MetadataHandler{svc: svc}
}

// Get handles GET /api/metadata/*path
func (h *MetadataHandler) Get(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.svc.GetDocument(c.Request.Context(), c.Param("path"))
	})
}

// Put handles PUT /api/metadata/*path
func (h *MetadataHandler) Put(c *gin.Context) {
	var tree map[string]any
	if !BindJSON(c, &tree) {
		return
	}
	if err := h.svc.PutDocument(c.Request.Context(), c.Param("path"), tree); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{ResponseMessage: "Metadata saved successfully"})
}
