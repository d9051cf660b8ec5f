package retention

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/filedrop/service/internal/response"
)

// Handler exposes manual sweeps to administrators.
type Handler struct {
	sweeper *Sweeper
	logger  *zap.Logger
}

// NewHandler creates a new retention Handler.
func NewHandler(sweeper *Sweeper, logger *zap.Logger) *Handler {
	return &Handler{sweeper: sweeper, logger: logger}
}

// Sweep godoc
//
//	@Summary	Run a retention sweep now
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	Report
//	@Failure	401	{object}	response.Envelope
//	@Failure	409	{object}	response.Envelope
//	@Failure	500	{object}	response.Envelope
//	@Router		/admin/sweep [post]
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.SweepOnce(r.Context())
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			response.Conflict(w, err.Error())
			return
		}
		h.logger.Error("manual sweep failed", zap.Error(err))
		response.InternalError(w)
		return
	}
	h.logger.Info("manual sweep completed",
		zap.Int("evicted", report.Evicted),
		zap.Int("failed", report.Failed))
	response.OK(w, report)
}
