// internal/handlers/feed.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"swipevault/internal/errs"
	"swipevault/internal/middleware"
	"swipevault/internal/services"
	"swipevault/internal/utils"

	"github.com/gin-gonic/gin"
)

// FeedHandler serves the ranked, rerankable, diversity-adjusted feed.
type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Get handles GET /feed.
func (h *FeedHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	pagination := utils.GetPaginationParams(c)

	var sessionID *string
	if sid := c.Query("sessionId"); sid != "" {
		sessionID = &sid
	}

	params := services.FeedParams{
		Category:    c.DefaultQuery("category", "All"),
		Limit:       pagination.Limit,
		Offset:      pagination.Offset,
		SessionID:   sessionID,
		ExcludeIDs:  splitCSV(c.Query("excludeIds")),
		EngagedIDs:  splitCSV(c.Query("engagedIds")),
		EngagedCats: splitCSV(c.Query("engagedCategories")),
		SkippedCats: splitCSV(c.Query("skippedCategories")),
		CardsShown:  atoiDefault(c.Query("cardsShown"), 0),
	}

	resp, err := h.feed.GetFeed(c.Request.Context(), userID, params)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "feed retrieved", resp)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func atoiDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
