// internal/handlers/upload.go
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

// UploadHandler covers image ingestion (POST /upload) and bulk URL import
// (PUT /upload).
type UploadHandler struct {
	ingest *services.IngestService
}

func NewUploadHandler(ingest *services.IngestService) *UploadHandler {
	return &UploadHandler{ingest: ingest}
}

type uploadImageRequest struct {
	Title     string `json:"title" binding:"required"`
	ImageData string `json:"imageData" binding:"required"`
}

// AddImage handles POST /upload: a base64-encoded image pasted or dropped
// by the client.
func (h *UploadHandler) AddImage(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	var req uploadImageRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if len(req.ImageData) > utils.MaxImageSizeMB*1024*1024 {
		middleware.Fail(c, errs.New(errs.Validation, utils.ErrFileTooLarge))
		return
	}

	entry, err := h.ingest.IngestImage(c.Request.Context(), userID, req.Title, req.ImageData)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, utils.MsgEntryCreated, entry)
}

// BulkAdd handles PUT /upload: importing up to MaxBulkURLImport URLs at
// once, reporting a per-URL outcome instead of failing the whole request.
func (h *UploadHandler) BulkAdd(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		middleware.Fail(c, errs.New(errs.AuthRequired, "authentication required"))
		return
	}

	var req models.BulkAddRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	if len(req.URLs) > utils.MaxBulkURLImport {
		middleware.Fail(c, errs.New(errs.Validation, "too many urls in one bulk import"))
		return
	}

	results := h.ingest.BulkIngestURLs(c.Request.Context(), userID, req.URLs)
	utils.SuccessResponse(c, http.StatusOK, "bulk import processed", gin.H{"results": results})
}
