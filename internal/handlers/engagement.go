// internal/handlers/engagement.go
package handlers

import (
	"net/http"

	"swipevault/internal/errs"
	"swipevault/internal/middleware"
	"swipevault/internal/models"
	"swipevault/internal/services"
	"swipevault/internal/utils"

	"github.com/gin-gonic/gin"
)

// EngagementHandler records client-reported impression/dwell/open signals.
type EngagementHandler struct {
	engagement *services.EngagementService
}

func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

type engagementBatchRequest struct {
	Events []models.EngagementRequest `json:"events" binding:"required,min=1"`
}

// Ingest handles POST /engagement.
func (h *EngagementHandler) Ingest(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	var req engagementBatchRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	result, err := h.engagement.Ingest(c.Request.Context(), userID, req.Events)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, utils.MsgEngagementLogged, gin.H{"processed": result.Processed})
}
