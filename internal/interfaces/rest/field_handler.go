package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/models"
)

// FieldService defines the interface for field definition operations
type FieldService interface {
	ListFields(ctx context.Context, object string) ([]fieldtypes.FieldRef, error)
	GetField(ctx context.Context, object, code string) (fieldtypes.Attributes, error)
	UpdateField(ctx context.Context, object, code string, attrs fieldtypes.Attributes) (fieldtypes.Attributes, error)
	CreateField(ctx context.Context, object string, attrs fieldtypes.Attributes) (fieldtypes.Attributes, error)
}

// FieldHandler handles the object field endpoints
type FieldHandler struct {
	svc FieldService
}

func NewFieldHandler(svc FieldService) *FieldHandler {
	return &FieldHandler{svc: svc}
}

// List handles GET /api/object-fields/:object
func (h *FieldHandler) List(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.svc.ListFields(c.Request.Context(), c.Param("object"))
	})
}

// Get handles GET /api/object-fields/:object/:fieldCode
func (h *FieldHandler) Get(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.svc.GetField(c.Request.Context(), c.Param("object"), c.Param("fieldCode"))
	})
}

// Update handles PUT /api/object-fields/:object/:fieldCode
func (h *FieldHandler) Update(c *gin.Context) {
	var attrs fieldtypes.Attributes
	if !BindJSON(c, &attrs) {
		return
	}
	field, err := h.svc.UpdateField(c.Request.Context(), c.Param("object"), c.Param("fieldCode"), attrs)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MutationResponse{Message: "Field updated successfully", Field: field})
}

// Create handles POST /api/object-fields/:object
func (h *FieldHandler) Create(c *gin.Context) {
	var attrs fieldtypes.Attributes
	if !BindJSON(c, &attrs) {
		return
	}
	field, err := h.svc.CreateField(c.Request.Context(), c.Param("object"), attrs)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.MutationResponse{Message: "Field created successfully", Field: field})
}
