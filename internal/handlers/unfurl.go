// internal/handlers/unfurl.go
package handlers

import (
	"net/http"

	"swipevault/internal/errs"
	"swipevault/internal/middleware"
	"swipevault/internal/unfurl"
	"swipevault/internal/utils"

	"github.com/gin-gonic/gin"
)

// UnfurlHandler exposes a preview-only unfurl (POST /unfurl): fetch and
// parse a URL's metadata without saving it to the library.
type UnfurlHandler struct {
	fetcher *unfurl.Fetcher
}

func NewUnfurlHandler(fetcher *unfurl.Fetcher) *UnfurlHandler {
	return &UnfurlHandler{fetcher: fetcher}
}

type unfurlRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *UnfurlHandler) Preview(c *gin.Context) {
	var req unfurlRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	result, err := h.fetcher.Unfurl(c.Request.Context(), req.URL)
	if err != nil {
		middleware.Fail(c, errs.Wrap(errs.UnsafeTarget, "could not fetch url", err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "preview fetched", result)
}
