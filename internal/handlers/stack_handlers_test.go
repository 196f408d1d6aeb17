package handlers_test

import (
	"encoding/json"
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
	"github.com/promostack/promostack-api/internal/services"
	"github.com/promostack/promostack-api/internal/testutil"
)

func newStackHandler(querier *testutil.MockQuerier) *handlers.StackHandler {
	pricing := services.NewPricingService(querier)
	return handlers.NewStackHandler(handlers.NewCommonServices(querier, pricing))
}

func TestStackHandler_GetStack(t *testing.T) {
	querier := new(testutil.MockQuerier)
	stackID := uuid.New()
	rootID := uuid.New()
	querier.On("GetPromotionStack", mock.Anything, stackID).Return(db.PromotionStack{
		ID:          stackID,
		Name:        "summer-sale",
		Currency:    "USD",
		RootLayerID: rootID,
	}, nil)

	handler := newStackHandler(querier)
	ctx, recorder := testutil.TestContext(t)
	ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler.GetStack(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response handlers.StackResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "summer-sale", response.Name)
	assert.Equal(t, "USD", response.Currency)
	assert.Equal(t, rootID.String(), response.RootLayerID)
}

func TestStackHandler_GetStack_NotFound(t *testing.T) {
	querier := new(testutil.MockQuerier)
	stackID := uuid.New()
	querier.On("GetPromotionStack", mock.Anything, stackID).Return(db.PromotionStack{}, pgx.ErrNoRows)

	handler := newStackHandler(querier)
	ctx, recorder := testutil.TestContext(t)
	ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler.GetStack(ctx)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestStackHandler_ListStacks(t *testing.T) {
	querier := new(testutil.MockQuerier)
	querier.On("ListPromotionStacks", mock.Anything).Return([]db.PromotionStack{
		{ID: uuid.New(), Name: "a", Currency: "USD", RootLayerID: uuid.New()},
		{ID: uuid.New(), Name: "b", Currency: "GBP", RootLayerID: uuid.New()},
	}, nil)

	handler := newStackHandler(querier)
	ctx, recorder := testutil.TestContext(t)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ListStacks(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response struct {
		Object string                   `json:"object"`
		Data   []handlers.StackResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "list", response.Object)
	assert.Len(t, response.Data, 2)
}

func TestStackHandler_ValidateStack(t *testing.T) {
	t.Run("valid stack", func(t *testing.T) {
		querier := new(testutil.MockQuerier)
		stackID := seedStack(querier, "USD")

		handler := newStackHandler(querier)
		ctx, recorder := testutil.TestContext(t)
		ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
		ctx.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		handler.ValidateStack(ctx)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("broken configuration returns 422", func(t *testing.T) {
		querier := new(testutil.MockQuerier)
		stackID := uuid.New()
		layerID := uuid.New()
		querier.On("GetPromotionStack", mock.Anything, stackID).Return(db.PromotionStack{
			ID:          stackID,
			Currency:    "USD",
			RootLayerID: layerID,
		}, nil)
		querier.On("ListPromotionLayers", mock.Anything, stackID).Return([]db.PromotionLayer{{
			ID:         layerID,
			StackID:    stackID,
			Position:   0,
			OutputMode: "teleport",
		}}, nil)
		querier.On("ListPromotionsByStack", mock.Anything, stackID).Return([]db.Promotion{}, nil)
		querier.On("ListQualificationsByStack", mock.Anything, stackID).Return([]db.Qualification{}, nil)
		querier.On("ListQualificationRulesByStack", mock.Anything, stackID).Return([]db.QualificationRule{}, nil)

		handler := newStackHandler(querier)
		ctx, recorder := testutil.TestContext(t)
		ctx.Params = gin.Params{{Key: "stack_id", Value: stackID.String()}}
		ctx.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		handler.ValidateStack(ctx)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}
