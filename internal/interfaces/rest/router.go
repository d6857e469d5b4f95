package rest

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler the API router mounts.
type Handlers struct {
	Fields   *FieldHandler
	Metadata *MetadataHandler
	Lookups  *LookupHandler
}

// RegisterRoutes mounts the /api routes on r.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	api := r.Group("/api")

	fields := api.Group("/object-fields")
	{
		fields.GET("/:object", h.Fields.List)
		fields.POST("/:object", h.Fields.Create)
		fields.GET("/:object/:fieldCode", h.Fields.Get)
		fields.PUT("/:object/:fieldCode", h.Fields.Update)
	}

	api.GET("/metadata/*path", h.Metadata.Get)
	api.PUT("/metadata/*path", h.Metadata.Put)

	api.GET("/object-definitions", h.Lookups.ObjectDefinitions)
	api.GET("/global-value-sets", h.Lookups.GlobalValueSets)
	api.POST("/global-value-sets", h.Lookups.CreateGlobalValueSet)
	api.GET("/settings/capabilities", h.Lookups.Capabilities)
}
