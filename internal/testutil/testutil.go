package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/promostack/promostack-api/internal/db"
)

// MockQuerier is a testify mock over the store interface. Transactions run
// against the mock itself; the Committed and RolledBack counters record
// their outcomes for assertions.
type MockQuerier struct {
	mock.Mock

	Committed  int
	RolledBack int
}

var _ db.Store = (*MockQuerier)(nil)

func (m *MockQuerier) RunInTransaction(ctx context.Context, fn func(qtx db.Querier) error) error {
	if err := fn(m); err != nil {
		m.RolledBack++
		return err
	}
	m.Committed++
	return nil
}

func (m *MockQuerier) GetPromotionStack(ctx context.Context, id uuid.UUID) (db.PromotionStack, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.PromotionStack), args.Error(1)
}

func (m *MockQuerier) ListPromotionStacks(ctx context.Context) ([]db.PromotionStack, error) {
	args := m.Called(ctx)
	return args.Get(0).([]db.PromotionStack), args.Error(1)
}

func (m *MockQuerier) ListPromotionLayers(ctx context.Context, stackID uuid.UUID) ([]db.PromotionLayer, error) {
	args := m.Called(ctx, stackID)
	return args.Get(0).([]db.PromotionLayer), args.Error(1)
}

func (m *MockQuerier) ListPromotionsByStack(ctx context.Context, stackID uuid.UUID) ([]db.Promotion, error) {
	args := m.Called(ctx, stackID)
	return args.Get(0).([]db.Promotion), args.Error(1)
}

func (m *MockQuerier) ListQualificationsByStack(ctx context.Context, stackID uuid.UUID) ([]db.Qualification, error) {
	args := m.Called(ctx, stackID)
	return args.Get(0).([]db.Qualification), args.Error(1)
}

func (m *MockQuerier) ListQualificationRulesByStack(ctx context.Context, stackID uuid.UUID) ([]db.QualificationRule, error) {
	args := m.Called(ctx, stackID)
	return args.Get(0).([]db.QualificationRule), args.Error(1)
}

func (m *MockQuerier) GetCart(ctx context.Context, id uuid.UUID) (db.Cart, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.Cart), args.Error(1)
}

func (m *MockQuerier) ListCartItems(ctx context.Context, cartID uuid.UUID) ([]db.CartItem, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).([]db.CartItem), args.Error(1)
}

func (m *MockQuerier) UpdateCartTotals(ctx context.Context, arg db.UpdateCartTotalsParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockQuerier) CreateReceipt(ctx context.Context, arg db.CreateReceiptParams) (db.Receipt, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.Receipt), args.Error(1)
}

func (m *MockQuerier) CreatePromotionRedemption(ctx context.Context, arg db.CreatePromotionRedemptionParams) (db.PromotionRedemption, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.PromotionRedemption), args.Error(1)
}

func (m *MockQuerier) GetBacktestRun(ctx context.Context, id uuid.UUID) (db.BacktestRun, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.BacktestRun), args.Error(1)
}

func (m *MockQuerier) UpdateBacktestRunStatus(ctx context.Context, arg db.UpdateBacktestRunStatusParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockQuerier) CompleteBacktestRun(ctx context.Context, arg db.CompleteBacktestRunParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockQuerier) ListBacktestRunCartIDs(ctx context.Context, runID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockQuerier) MarkBacktestRunCart(ctx context.Context, arg db.MarkBacktestRunCartParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

// TestContext creates a test Gin context
func TestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	return ctx, recorder
}
