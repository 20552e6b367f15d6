package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"gstrates/internal/domain"
	"gstrates/internal/middleware"
	"gstrates/internal/service"
)

// DocumentHandler handles rate schedule uploads.
type DocumentHandler struct {
	ingestService service.IngestService
	maxBytes      int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(ingestService service.IngestService, maxFileSizeMB int64) *DocumentHandler {
	return &DocumentHandler{ingestService: ingestService, maxBytes: maxFileSizeMB * 1024 * 1024}
}

// Upload handles POST /api/v1/admin/documents (multipart field "file").
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file")
		return
	}

	report, err := h.ingestService.Ingest(c.Request.Context(), service.IngestInput{
		FileName:   header.Filename,
		Data:       data,
		UploadedBy: middleware.GetSubject(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, report)
}
