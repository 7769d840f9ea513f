package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
)

const maxImportBytes = 5 << 20

// PlanHandler handles API endpoints related to plans.
type PlanHandler struct {
	planService core.PlanService
	logger      *zap.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(ps core.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planService: ps, logger: logger}
}

// mapPlanErrorToStatus maps errors from core.PlanService to HTTP status codes and ErrorResponse.
func (h *PlanHandler) mapPlanErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrPlanNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Plan not found"}
	case errors.Is(err, core.ErrDuplicatePlace):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "A plan with that name already exists", Details: err.Error()}
	case errors.Is(err, core.ErrPlaceRequired):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Place is required"}
	case errors.Is(err, core.ErrLocationRequired):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Location is required"}
	case errors.Is(err, core.ErrInvalidRating):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Rating must be between 0 and 5"}
	case errors.Is(err, core.ErrInvalidReorder), errors.Is(err, core.ErrInvalidImport),
		errors.Is(err, core.ErrMissingPlanID), errors.Is(err, core.ErrInvalidPlan):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrRemoteSync):
		// The change is kept locally and will be superseded by the next remote delivery.
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: "Saved locally but could not sync with the shared workspace", Details: err.Error()}
	default:
		h.logger.Error("Internal Server Error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// ListPlans handles GET /plans
// Query: q, status, type, time, sort (none|az|za) and repeated or comma-separated types, times, owners.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var filter models.PlanFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}
	filter.TagTypes = splitTags(filter.TagTypes)
	filter.TagTimes = splitTags(filter.TagTimes)
	filter.TagOwners = splitTags(filter.TagOwners)

	plans := h.planService.ListPlans(c.Request.Context(), filter)
	c.JSON(http.StatusOK, PlanListResponse{Plans: plans, Count: len(plans)})
}

// CreatePlan handles POST /plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.PlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), actorOf(session), req)
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlan handles GET /plans/:planId
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// UpdatePlan handles PUT /plans/:planId
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), actorOf(session), c.Param("planId"), req)
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan handles DELETE /plans/:planId
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), actorOf(session), c.Param("planId")); err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Plan deleted"})
}

// ToggleFavorite handles POST /plans/:planId/favorite
func (h *PlanHandler) ToggleFavorite(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	plan, err := h.planService.ToggleFavorite(c.Request.Context(), actorOf(session), c.Param("planId"))
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ReorderPlans handles POST /plans/reorder
func (h *PlanHandler) ReorderPlans(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	updated, err := h.planService.ReorderPlans(c.Request.Context(), actorOf(session), req)
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, ReorderResponse{Updated: updated})
}

// ExportPlans handles GET /plans/export and answers with a downloadable JSON file.
func (h *PlanHandler) ExportPlans(c *gin.Context) {
	export := h.planService.ExportPlans(c.Request.Context())
	c.Header("Content-Disposition", `attachment; filename="`+core.ExportFileName(export.ExportedAt)+`"`)
	c.IndentedJSON(http.StatusOK, export)
}

// ImportPlans handles POST /plans/import
// The export file may be sent as the raw JSON body or as a multipart "file" field.
func (h *PlanHandler) ImportPlans(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	data, err := readImportBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read import file", Details: err.Error()})
		return
	}

	result, err := h.planService.ImportPlans(c.Request.Context(), actorOf(session), data)
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func readImportBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

// splitTags accepts both repeated query parameters and comma-separated values.
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
