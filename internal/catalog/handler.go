package catalog

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/filedrop/service/internal/response"
)

// FileInfoResponse is the body returned by GET /file-info.
type FileInfoResponse struct {
	TotalFiles int    `json:"totalFiles" example:"12"`
	TotalSize  string `json:"totalSize"  example:"3.27 MB"`
}

// Handler holds HTTP handlers for catalog endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new catalog Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Library godoc
//
//	@Summary	List stored files
//	@Tags		library
//	@Produce	json
//	@Success	200	{array}		Entry
//	@Failure	500	{object}	response.Envelope
//	@Router		/library [get]
func (h *Handler) Library(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list library", zap.Error(err))
		response.InternalError(w)
		return
	}
	response.OK(w, entries)
}

// FileInfo godoc
//
//	@Summary	Storage usage summary
//	@Tags		library
//	@Produce	json
//	@Success	200	{object}	FileInfoResponse
//	@Failure	500	{object}	response.Envelope
//	@Router		/file-info [get]
func (h *Handler) FileInfo(w http.ResponseWriter, r *http.Request) {
	usage, err := h.svc.UsageSummary(r.Context())
	if err != nil {
		h.logger.Error("summarise usage", zap.Error(err))
		response.InternalError(w)
		return
	}
	response.OK(w, FileInfoResponse{
		TotalFiles: usage.TotalFiles,
		TotalSize:  FormatMegabytes(usage.TotalSizeBytes),
	})
}
