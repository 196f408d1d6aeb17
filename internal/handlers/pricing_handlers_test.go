package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promostack/promostack-api/internal/db"
	"github.com/promostack/promostack-api/internal/handlers"
	"github.com/promostack/promostack-api/internal/logger"
	"github.com/promostack/promostack-api/internal/services"
	"github.com/promostack/promostack-api/internal/testutil"
)

func init() {
	logger.InitLogger("test")
}

func newPricingHandler(querier *testutil.MockQuerier) *handlers.PricingHandler {
	pricing := services.NewPricingService(querier)
	return handlers.NewPricingHandler(handlers.NewCommonServices(querier, pricing))
}

// seedStack wires the mock store with a one-layer stack carrying a single
// 10-percent-off promotion that matches every item.
func seedStack(querier *testutil.MockQuerier, currency string) uuid.UUID {
	stackID := uuid.New()
	layerID := uuid.New()
	qualificationID := uuid.New()

	querier.On("GetPromotionStack", mock.Anything, stackID).Return(db.PromotionStack{
		ID:          stackID,
		Name:        "test-stack",
		Currency:    currency,
		RootLayerID: layerID,
	}, nil)
	querier.On("ListPromotionLayers", mock.Anything, stackID).Return([]db.PromotionLayer{{
		ID:         layerID,
		StackID:    stackID,
		Position:   0,
		OutputMode: "pass_through",
	}}, nil)
	querier.On("ListPromotionsByStack", mock.Anything, stackID).Return([]db.Promotion{{
		ID:              uuid.New(),
		LayerID:         layerID,
		Code:            "TEN",
		QualificationID: qualificationID,
		Discount:        []byte(`{"kind":"simple","calculator":{"kind":"percent_off","percent":10}}`),
	}}, nil)
	querier.On("ListQualificationsByStack", mock.Anything, stackID).Return([]db.Qualification{{
		ID:       qualificationID,
		StackID:  stackID,
		Operator: "and",
	}}, nil)
	querier.On("ListQualificationRulesByStack", mock.Anything, stackID).Return([]db.QualificationRule{}, nil)

	return stackID
}

func postJSON(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPricingHandler_PriceItems(t *testing.T) {
	querier := new(testutil.MockQuerier)
	stackID := seedStack(querier, "USD")
	handler := newPricingHandler(querier)

	ctx, recorder := testutil.TestContext(t)
	ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
	ctx.Request = postJSON(t, handlers.PriceItemsRequest{
		Currency: "USD",
		Items: []handlers.PriceItemRequest{
			{Reference: "gadget", PriceCents: 1000, Tags: []string{"electronics"}},
		},
	})

	handler.PriceItems(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response handlers.ReceiptResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, int64(1000), response.SubtotalCents)
	assert.Equal(t, int64(900), response.TotalCents)
	assert.Equal(t, int64(100), response.DiscountCents)
	require.Len(t, response.Applications, 1)
	assert.Equal(t, "TEN", response.Applications[0].PromotionCode)
}

func TestPricingHandler_PriceItems_BadRequests(t *testing.T) {
	querier := new(testutil.MockQuerier)
	handler := newPricingHandler(querier)

	t.Run("invalid stack id", func(t *testing.T) {
		ctx, recorder := testutil.TestContext(t)
		ctx.Params = gin.Params{{Key: "stack_id", Value: "not-a-uuid"}}
		ctx.Request = postJSON(t, handlers.PriceItemsRequest{Currency: "USD"})

		handler.PriceItems(ctx)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("missing body fields", func(t *testing.T) {
		ctx, recorder := testutil.TestContext(t)
		ctx.Params = gin.Params{{Key: "stack_id", Value: uuid.New().String()}}
		ctx.Request = postJSON(t, map[string]string{})

		handler.PriceItems(ctx)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("empty item list", func(t *testing.T) {
		ctx, recorder := testutil.TestContext(t)
		ctx.Params = gin.Params{{Key: "stack_id", Value: uuid.New().String()}}
		ctx.Request = postJSON(t, map[string]interface{}{
			"currency": "USD",
			"items":    []interface{}{},
		})

		handler.PriceItems(ctx)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestPricingHandler_PriceItems_UnknownStack(t *testing.T) {
	querier := new(testutil.MockQuerier)
	stackID := uuid.New()
	querier.On("GetPromotionStack", mock.Anything, stackID).Return(db.PromotionStack{}, pgx.ErrNoRows)
	handler := newPricingHandler(querier)

	ctx, recorder := testutil.TestContext(t)
	ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
	ctx.Request = postJSON(t, handlers.PriceItemsRequest{
		Currency: "USD",
		Items:    []handlers.PriceItemRequest{{Reference: "a", PriceCents: 100}},
	})

	handler.PriceItems(ctx)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestPricingHandler_PriceItems_CurrencyMismatch(t *testing.T) {
	querier := new(testutil.MockQuerier)
	stackID := seedStack(querier, "USD")
	handler := newPricingHandler(querier)

	ctx, recorder := testutil.TestContext(t)
	ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
	ctx.Request = postJSON(t, handlers.PriceItemsRequest{
		Currency: "EUR",
		Items:    []handlers.PriceItemRequest{{Reference: "a", PriceCents: 100}},
	})

	handler.PriceItems(ctx)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestPricingHandler_PriceCart(t *testing.T) {
	querier := new(testutil.MockQuerier)
	stackID := seedStack(querier, "USD")
	cartID := uuid.New()

	querier.On("GetCart", mock.Anything, cartID).Return(db.Cart{
		ID:       cartID,
		Currency: "USD",
	}, nil)
	querier.On("ListCartItems", mock.Anything, cartID).Return([]db.CartItem{{
		ID:         uuid.New(),
		CartID:     cartID,
		Reference:  "gadget",
		PriceCents: 2000,
	}}, nil)
	querier.On("CreateReceipt", mock.Anything, mock.Anything).Return(db.Receipt{ID: uuid.New()}, nil)
	querier.On("CreatePromotionRedemption", mock.Anything, mock.Anything).Return(db.PromotionRedemption{}, nil)
	querier.On("UpdateCartTotals", mock.Anything, mock.Anything).Return(nil)

	handler := newPricingHandler(querier)
	ctx, recorder := testutil.TestContext(t)
	ctx.Params = gin.Params{
		{Key: "stack_id", Value: stackID.String()},
		{Key: "cart_id", Value: cartID.String()},
	}
	ctx.Request = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/stacks/%s/carts/%s/price", stackID, cartID), nil)

	handler.PriceCart(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response handlers.ReceiptResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, int64(2000), response.SubtotalCents)
	assert.Equal(t, int64(1800), response.TotalCents)
	querier.AssertExpectations(t)
}
