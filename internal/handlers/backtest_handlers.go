package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BacktestHandler serves backtest run status reads. Runs themselves execute
// out of band in the queue processor.
type BacktestHandler struct {
	common *CommonServices
}

// NewBacktestHandler creates a new BacktestHandler
func NewBacktestHandler(common *CommonServices) *BacktestHandler {
	return &BacktestHandler{common: common}
}

// BacktestRunResponse is the API shape of a backtest run.
type BacktestRunResponse struct {
	ID          string     `json:"id"`
	StackID     string     `json:"stack_id"`
	Status      string     `json:"status"`
	TotalCarts  int32      `json:"total_carts"`
	Succeeded   int32      `json:"succeeded"`
	Failed      int32      `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// GetBacktestRun returns one run's status and counters.
func (h *BacktestHandler) GetBacktestRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid run ID", err)
		return
	}

	run, err := h.common.db.GetBacktestRun(c.Request.Context(), runID)
	if err != nil {
		handleDBError(c, err, "Backtest run not found")
		return
	}

	response := BacktestRunResponse{
		ID:         run.ID.String(),
		StackID:    run.StackID.String(),
		Status:     run.Status,
		TotalCarts: run.TotalCarts,
		Succeeded:  run.Succeeded,
		Failed:     run.Failed,
		CreatedAt:  run.CreatedAt,
	}
	if run.CompletedAt.Valid {
		completed := run.CompletedAt.Time
		response.CompletedAt = &completed
	}

	sendSuccess(c, http.StatusOK, response)
}
