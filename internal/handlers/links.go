// internal/handlers/links.go
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

// LinksHandler exposes direct CRUD over a user's library: adding a link or
// note, listing, patching status/shown/liked state, and deletion.
type LinksHandler struct {
	links  *services.LinksService
	ingest *services.IngestService
}

func NewLinksHandler(links *services.LinksService, ingest *services.IngestService) *LinksHandler {
	return &LinksHandler{links: links, ingest: ingest}
}

// addRequest unions the two shapes POST /links accepts: a bare URL, or a
// pasted note with a title and body text.
type addRequest struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
}

// Add handles POST /links. The body is either {"url": "..."} or
// {"title", "text", "categories"} for a pasted note.
func (h *LinksHandler) Add(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	var req addRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if req.URL != "" {
		entry, err := h.ingest.IngestURL(c.Request.Context(), userID, req.URL)
		if err != nil && !errs.IsConflict(err) {
			middleware.Fail(c, err)
			return
		}
		status := http.StatusCreated
		if errs.IsConflict(err) {
			status = http.StatusConflict
		}
		utils.SuccessResponse(c, status, utils.MsgEntryCreated, entry)
		return
	}

	if req.Title == "" || req.Text == "" {
		middleware.Fail(c, errs.New(errs.Validation, "either url, or title and text, are required"))
		return
	}

	entry, err := h.ingest.IngestNote(c.Request.Context(), userID, models.AddNoteRequest{
		Title:      req.Title,
		Text:       req.Text,
		Categories: req.Categories,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, utils.MsgEntryCreated, entry)
}

// List handles GET /links.
func (h *LinksHandler) List(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	if c.Query("stats") == "true" {
		stats, err := h.links.Stats(c.Request.Context(), userID)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "stats retrieved", stats)
		return
	}

	params := services.ListParams{
		Status: c.Query("status"),
		Limit:  utils.GetPaginationParams(c).Limit,
	}
	entries, err := h.links.List(c.Request.Context(), userID, params)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "links retrieved", entries)
}

// Patch handles PATCH /links/:id.
func (h *LinksHandler) Patch(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	var req services.PatchRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	entry, err := h.links.Patch(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "entry updated", entry)
}

// Delete handles DELETE /links/:id.
func (h *LinksHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	if err := h.links.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, utils.MsgEntryDeleted, nil)
}
