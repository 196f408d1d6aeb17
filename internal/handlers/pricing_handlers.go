package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/services"
)

// PricingHandler serves the pricing endpoints: on-demand item pricing and
// persisted cart pricing.
type PricingHandler struct {
	common *CommonServices
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(common *CommonServices) *PricingHandler {
	return &PricingHandler{common: common}
}

// PriceItemsRequest prices ad-hoc items without a persisted cart.
type PriceItemsRequest struct {
	Currency string             `json:"currency" binding:"required"`
	Items    []PriceItemRequest `json:"items" binding:"required"`
}

// PriceItemRequest is one line of an ad-hoc pricing request.
type PriceItemRequest struct {
	Reference  string   `json:"reference" binding:"required"`
	PriceCents int64    `json:"price_cents"`
	Tags       []string `json:"tags"`
}

// ReceiptResponse is the API shape of a priced receipt.
type ReceiptResponse struct {
	Currency        string                `json:"currency"`
	SubtotalCents   int64                 `json:"subtotal_cents"`
	TotalCents      int64                 `json:"total_cents"`
	DiscountCents   int64                 `json:"discount_cents"`
	ItemCount       int                   `json:"item_count"`
	DiscountedItems int                   `json:"discounted_items"`
	Applications    []ApplicationResponse `json:"applications"`
}

// ApplicationResponse is one audit trail entry in API form.
type ApplicationResponse struct {
	PromotionID        string `json:"promotion_id"`
	PromotionCode      string `json:"promotion_code"`
	ItemID             string `json:"item_id"`
	ItemReference      string `json:"item_reference"`
	OriginalPriceCents int64  `json:"original_price_cents"`
	FinalPriceCents    int64  `json:"final_price_cents"`
	DiscountCents      int64  `json:"discount_cents"`
	Sequence           int    `json:"sequence"`
}

func toReceiptResponse(receipt *engine.Receipt) ReceiptResponse {
	response := ReceiptResponse{
		Currency:        receipt.Currency,
		SubtotalCents:   receipt.SubtotalCents,
		TotalCents:      receipt.TotalCents,
		DiscountCents:   receipt.DiscountCents,
		ItemCount:       receipt.ItemCount,
		DiscountedItems: receipt.DiscountedItems,
		Applications:    make([]ApplicationResponse, 0, len(receipt.Applications)),
	}
	for _, app := range receipt.Applications {
		response.Applications = append(response.Applications, ApplicationResponse{
			PromotionID:        app.PromotionID.String(),
			PromotionCode:      app.PromotionCode,
			ItemID:             app.ItemID.String(),
			ItemReference:      app.ItemReference,
			OriginalPriceCents: app.OriginalPrice.AmountCents,
			FinalPriceCents:    app.FinalPrice.AmountCents,
			DiscountCents:      app.DiscountCents(),
			Sequence:           app.Sequence,
		})
	}
	return response
}

// PriceItems prices caller-supplied items through a stack. Nothing is
// persisted.
func (h *PricingHandler) PriceItems(c *gin.Context) {
	stackID, err := uuid.Parse(c.Param("stack_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid stack ID", err)
		return
	}

	var req PriceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Items) == 0 {
		sendError(c, http.StatusBadRequest, "At least one item is required", nil)
		return
	}

	inputs := make([]services.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, services.ItemInput{
			Reference:  item.Reference,
			PriceCents: item.PriceCents,
			Tags:       item.Tags,
		})
	}

	receipt, err := h.common.pricing.PriceItems(c.Request.Context(), stackID, req.Currency, inputs)
	if err != nil {
		handlePricingError(c, err, "Stack not found")
		return
	}

	sendSuccess(c, http.StatusOK, toReceiptResponse(receipt))
}

// PriceCart prices a persisted cart through a stack, writing the receipt,
// the redemption rows, and the cart totals.
func (h *PricingHandler) PriceCart(c *gin.Context) {
	stackID, err := uuid.Parse(c.Param("stack_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid stack ID", err)
		return
	}

	cartID, err := uuid.Parse(c.Param("cart_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid cart ID", err)
		return
	}

	receipt, err := h.common.pricing.PriceCart(c.Request.Context(), stackID, cartID)
	if err != nil {
		handlePricingError(c, err, "Stack or cart not found")
		return
	}

	sendSuccess(c, http.StatusOK, toReceiptResponse(receipt))
}
