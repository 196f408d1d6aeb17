package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StackHandler serves promotion stack reads and configuration validation.
type StackHandler struct {
	common *CommonServices
}

// NewStackHandler creates a new StackHandler
func NewStackHandler(common *CommonServices) *StackHandler {
	return &StackHandler{common: common}
}

// StackResponse is the API shape of a promotion stack.
type StackResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Currency    string    `json:"currency"`
	RootLayerID string    `json:"root_layer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListStacks returns all promotion stacks.
func (h *StackHandler) ListStacks(c *gin.Context) {
	stacks, err := h.common.db.ListPromotionStacks(c.Request.Context())
	if err != nil {
		handleDBError(c, err, "Stacks not found")
		return
	}

	responses := make([]StackResponse, 0, len(stacks))
	for _, stack := range stacks {
		responses = append(responses, StackResponse{
			ID:          stack.ID.String(),
			Name:        stack.Name,
			Currency:    stack.Currency,
			RootLayerID: stack.RootLayerID.String(),
			CreatedAt:   stack.CreatedAt,
		})
	}
	sendList(c, responses)
}

// GetStack returns a single promotion stack.
func (h *StackHandler) GetStack(c *gin.Context) {
	stackID, err := uuid.Parse(c.Param("stack_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid stack ID", err)
		return
	}

	stack, err := h.common.db.GetPromotionStack(c.Request.Context(), stackID)
	if err != nil {
		handleDBError(c, err, "Stack not found")
		return
	}

	sendSuccess(c, http.StatusOK, StackResponse{
		ID:          stack.ID.String(),
		Name:        stack.Name,
		Currency:    stack.Currency,
		RootLayerID: stack.RootLayerID.String(),
		CreatedAt:   stack.CreatedAt,
	})
}

// ValidateStack compiles a stack without pricing anything, surfacing
// configuration and graph problems before the stack goes live.
func (h *StackHandler) ValidateStack(c *gin.Context) {
	stackID, err := uuid.Parse(c.Param("stack_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid stack ID", err)
		return
	}

	if _, err := h.common.pricing.CompileStack(c.Request.Context(), stackID); err != nil {
		handlePricingError(c, err, "Stack not found")
		return
	}

	sendSuccess(c, http.StatusOK, SuccessResponse{Message: "Stack is valid"})
}
