package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/domain/pricing"
	"github.com/intu-mobility/service-ride/internal/platform/response"
)

// CatalogHandler serves the static catalogs: vehicle classes and
// quick-access places. Both are public, no authentication needed.
type CatalogHandler struct {
	catalog *pricing.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *pricing.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes registers the catalog routes on the given router group.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/vehicles", h.ListVehicles)
	r.GET("/api/v1/places/quick-access", h.ListQuickAccessPlaces)
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *CatalogHandler) ListVehicles(c *gin.Context) {
	response.Success(c, h.catalog.List())
}

// ListQuickAccessPlaces handles GET /api/v1/places/quick-access.
func (h *CatalogHandler) ListQuickAccessPlaces(c *gin.Context) {
	response.Success(c, application.QuickAccessPlaces())
}
