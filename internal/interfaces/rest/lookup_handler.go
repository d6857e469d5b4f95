package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexuscrm/fieldstudio/pkg/models"
)

// ObjectService lists object definitions for the lookup pickers
type ObjectService interface {
	ListDefinitions(ctx context.Context) ([]models.ObjectDefinition, error)
}

// ValueSetService manages global value sets
type ValueSetService interface {
	List(ctx context.Context) ([]models.GlobalValueSetSummary, error)
	Create(ctx context.Context, req models.CreateGlobalValueSetRequest) (*models.GlobalValueSetSummary, error)
}

// SettingsService reads company settings
type SettingsService interface {
	Capabilities(ctx context.Context) ([]string, error)
}

// LookupHandler serves the reference data the editors pick from
type LookupHandler struct {
	objects   ObjectService
	valueSets ValueSetService
	settings  SettingsService
}

func NewLookupHandler(objects ObjectService, valueSets ValueSetService, settings SettingsService) *LookupHandler {
	return &LookupHandler{objects: objects, valueSets: valueSets, settings: settings}
}

// ObjectDefinitions handles GET /api/object-definitions
func (h *LookupHandler) ObjectDefinitions(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.objects.ListDefinitions(c.Request.Context())
	})
}

// GlobalValueSets handles GET /api/global-value-sets
func (h *LookupHandler) GlobalValueSets(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.valueSets.List(c.Request.Context())
	})
}

// CreateGlobalValueSet handles POST /api/global-value-sets
func (h *LookupHandler) CreateGlobalValueSet(c *gin.Context) {
	var req models.CreateGlobalValueSetRequest
	if !BindJSON(c, &req) {
		return
	}
	summary, err := h.valueSets.Create(c.Request.Context(), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// Capabilities handles GET /api/settings/capabilities
func (h *LookupHandler) Capabilities(c *gin.Context) {
	codes, err := h.settings.Capabilities(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	c.JSON(http.StatusOK, models.CapabilitiesResponse{Capabilities: codes})
}
