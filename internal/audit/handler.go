package audit

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/filedrop/service/internal/response"
)

const defaultRecent = 50

// Handler exposes the audit log to administrators.
type Handler struct {
	reader Reader
	logger *zap.Logger
}

// NewHandler creates a new audit Handler. reader may be nil when the audit
// log is disabled.
func NewHandler(reader Reader, logger *zap.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// Recent godoc
//
//	@Summary	Recent lifecycle events
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Maximum number of events (1-500)"	default(50)
//	@Success	200		{array}		Event
//	@Failure	400		{object}	response.Envelope
//	@Failure	401		{object}	response.Envelope
//	@Failure	404		{object}	response.Envelope
//	@Failure	500		{object}	response.Envelope
//	@Router		/admin/audit [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		response.NotFound(w, "audit log is disabled")
		return
	}

	limit := defaultRecent
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRecent {
			response.BadRequest(w, "limit must be between 1 and "+strconv.Itoa(maxRecent))
			return
		}
		limit = n
	}

	events, err := h.reader.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("read audit log", zap.Error(err))
		response.InternalError(w)
		return
	}
	if events == nil {
		events = []Event{}
	}
	response.OK(w, events)
}
