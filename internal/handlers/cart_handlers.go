package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves cart reads.
type CartHandler struct {
	common *CommonServices
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(common *CommonServices) *CartHandler {
	return &CartHandler{common: common}
}

// CartResponse is the API shape of a cart with its items.
type CartResponse struct {
	ID            string             `json:"id"`
	Currency      string             `json:"currency"`
	SubtotalCents *int64             `json:"subtotal_cents,omitempty"`
	TotalCents    *int64             `json:"total_cents,omitempty"`
	Items         []CartItemResponse `json:"items"`
}

// CartItemResponse is one cart line in API form.
type CartItemResponse struct {
	ID         string   `json:"id"`
	Reference  string   `json:"reference"`
	PriceCents int64    `json:"price_cents"`
	Tags       []string `json:"tags"`
}

// GetCart returns a cart with its items. Totals are present only once the
// cart has been priced.
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cart_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid cart ID", err)
		return
	}

	cart, err := h.common.db.GetCart(c.Request.Context(), cartID)
	if err != nil {
		handleDBError(c, err, "Cart not found")
		return
	}

	rows, err := h.common.db.ListCartItems(c.Request.Context(), cartID)
	if err != nil {
		handleDBError(c, err, "Cart not found")
		return
	}

	response := CartResponse{
		ID:       cart.ID.String(),
		Currency: cart.Currency,
		Items:    make([]CartItemResponse, 0, len(rows)),
	}
	if cart.SubtotalCents.Valid {
		subtotal := cart.SubtotalCents.Int64
		response.SubtotalCents = &subtotal
	}
	if cart.TotalCents.Valid {
		total := cart.TotalCents.Int64
		response.TotalCents = &total
	}

	for _, row := range rows {
		item := CartItemResponse{
			ID:         row.ID.String(),
			Reference:  row.Reference,
			PriceCents: row.PriceCents,
		}
		if len(row.Tags) > 0 {
			if err := json.Unmarshal(row.Tags, &item.Tags); err != nil {
				sendError(c, http.StatusInternalServerError, "Malformed cart item tags", err)
				return
			}
		}
		response.Items = append(response.Items, item)
	}

	sendSuccess(c, http.StatusOK, response)
}
