package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/platform/auth"
	"github.com/intu-mobility/service-ride/internal/platform/middleware"
	"github.com/intu-mobility/service-ride/internal/platform/response"
)

// AdminTripHandler handles admin HTTP requests for trip oversight.
type AdminTripHandler struct {
	service *application.TripService
}

// NewAdminTripHandler creates a new AdminTripHandler.
func NewAdminTripHandler(service *application.TripService) *AdminTripHandler {
	return &AdminTripHandler{service: service}
}

// RegisterRoutes registers admin trip routes.
func (h *AdminTripHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/trips", h.ListTrips)
		admin.GET("/stats/trips", h.TripStats)
	}
}

// ListTrips handles GET /api/v1/admin/trips.
func (h *AdminTripHandler) ListTrips(c *gin.Context) {
	page, limit := parsePagination(c)

	trips, total, err := h.service.ListAllTrips(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, trips, total, page, limit)
}

// TripStats handles GET /api/v1/admin/stats/trips.
func (h *AdminTripHandler) TripStats(c *gin.Context) {
	counts, err := h.service.CountByStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, counts)
}
