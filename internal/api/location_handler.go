package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
)

// LocationHandler handles API endpoints related to the shared location suggestions.
type LocationHandler struct {
	locationService core.LocationService
	logger          *zap.Logger
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(ls core.LocationService, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{locationService: ls, logger: logger}
}

// ListLocations handles GET /locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, LocationsResponse{Locations: h.locationService.ListLocations(c.Request.Context())})
}

// AddLocation handles POST /locations
func (h *LocationHandler) AddLocation(c *gin.Context) {
	var req models.AddLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	locations, added, err := h.locationService.AddLocationIfNew(c.Request.Context(), req.Location)
	if err != nil {
		if errors.Is(err, core.ErrRemoteSync) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Saved locally but could not sync with the shared workspace", Details: err.Error()})
			return
		}
		h.logger.Error("Failed to add location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, LocationsResponse{Locations: locations, Added: added})
}
