package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/promostack/promostack-api/internal/config"
	"github.com/promostack/promostack-api/internal/db"
	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/logger"
)

// PricingService turns persisted promotion configuration into priced
// receipts: it loads a read-only stack snapshot, compiles it, drives carts
// through the pipeline, and persists the outcome with its redemption audit
// trail.
type PricingService struct {
	store   db.Store
	logger  *zap.Logger
	options engine.Options
}

// NewPricingService creates a new pricing service with engine defaults.
func NewPricingService(store db.Store) *PricingService {
	return &PricingService{
		store:   store,
		logger:  logger.Log,
		options: engine.DefaultOptions(),
	}
}

// ItemInput is one ad-hoc cart line supplied by a caller instead of a
// persisted cart.
type ItemInput struct {
	Reference  string
	PriceCents int64
	Tags       []string
}

// CompileStack loads a stack's configuration snapshot and compiles it into
// a validated routing graph. Every run works off one snapshot; configuration
// changes made mid-batch are not observed.
func (s *PricingService) CompileStack(ctx context.Context, stackID uuid.UUID) (*engine.StackGraph, error) {
	snapshot, err := s.loadStackSnapshot(ctx, stackID)
	if err != nil {
		return nil, err
	}
	return engine.CompileStack(snapshot)
}

// PriceCart prices one persisted cart through a stack and persists the
// receipt, the redemption audit rows, and the cart totals. Any fatal engine
// error aborts the cart with nothing persisted.
func (s *PricingService) PriceCart(ctx context.Context, stackID, cartID uuid.UUID) (*engine.Receipt, error) {
	graph, err := s.CompileStack(ctx, stackID)
	if err != nil {
		return nil, err
	}
	return s.PriceCartWithGraph(ctx, graph, stackID, cartID, pgtype.UUID{})
}

// PriceCartWithGraph prices one cart through an already-compiled graph.
// The backtest runner uses this to share one compiled snapshot across a
// batch while keeping budgets per cart.
func (s *PricingService) PriceCartWithGraph(ctx context.Context, graph *engine.StackGraph, stackID, cartID uuid.UUID, backtestRunID pgtype.UUID) (*engine.Receipt, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cart")
	}
	if cart.Currency != graph.Currency() {
		return nil, engine.NewCurrencyMismatchError(graph.Currency(), cart.Currency)
	}

	rows, err := s.store.ListCartItems(ctx, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cart items")
	}

	items := make([]*engine.Item, 0, len(rows))
	for _, row := range rows {
		var tags []string
		if len(row.Tags) > 0 {
			if err := json.Unmarshal(row.Tags, &tags); err != nil {
				return nil, engine.NewConfigurationError("malformed tags on cart item %s: %v", row.ID, err)
			}
		}
		items = append(items, engine.NewItem(row.ID, row.Reference, tags, engine.NewMoney(row.PriceCents, cart.Currency)))
	}

	receipt, err := engine.NewPipeline(graph, s.options).Run(items)
	if err != nil {
		return nil, err
	}

	if err := s.persistReceipt(ctx, stackID, cartID, backtestRunID, receipt); err != nil {
		return nil, err
	}

	s.logger.Info("cart priced",
		zap.String("stack_id", stackID.String()),
		zap.String("cart_id", cartID.String()),
		zap.Int64("subtotal_cents", receipt.SubtotalCents),
		zap.Int64("total_cents", receipt.TotalCents))
	return receipt, nil
}

// PriceItems prices caller-supplied items through a stack without touching
// any persisted cart. Used by the on-demand pricing endpoint.
func (s *PricingService) PriceItems(ctx context.Context, stackID uuid.UUID, currency string, inputs []ItemInput) (*engine.Receipt, error) {
	graph, err := s.CompileStack(ctx, stackID)
	if err != nil {
		return nil, err
	}
	if currency != graph.Currency() {
		return nil, engine.NewCurrencyMismatchError(graph.Currency(), currency)
	}

	items := make([]*engine.Item, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, engine.NewItem(uuid.New(), input.Reference, input.Tags, engine.NewMoney(input.PriceCents, currency)))
	}

	return engine.NewPipeline(graph, s.options).Run(items)
}

// persistReceipt writes the receipt, its redemption rows, and the cart
// totals in a single transaction. A failure anywhere rolls everything
// back, so a retried cart never sees a half-written receipt.
func (s *PricingService) persistReceipt(ctx context.Context, stackID, cartID uuid.UUID, backtestRunID pgtype.UUID, receipt *engine.Receipt) error {
	return s.store.RunInTransaction(ctx, func(qtx db.Querier) error {
		row, err := qtx.CreateReceipt(ctx, db.CreateReceiptParams{
			ID:            uuid.New(),
			CartID:        cartID,
			StackID:       stackID,
			BacktestRunID: backtestRunID,
			Currency:      receipt.Currency,
			SubtotalCents: receipt.SubtotalCents,
			TotalCents:    receipt.TotalCents,
			DiscountCents: receipt.DiscountCents,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create receipt")
		}

		for _, app := range receipt.Applications {
			_, err := qtx.CreatePromotionRedemption(ctx, db.CreatePromotionRedemptionParams{
				ID:                 uuid.New(),
				ReceiptID:          row.ID,
				PromotionID:        app.PromotionID,
				CartItemID:         app.ItemID,
				OriginalPriceCents: app.OriginalPrice.AmountCents,
				FinalPriceCents:    app.FinalPrice.AmountCents,
				Sequence:           int32(app.Sequence),
			})
			if err != nil {
				return errors.Wrap(err, "failed to create redemption")
			}
		}

		if err := qtx.UpdateCartTotals(ctx, db.UpdateCartTotalsParams{
			ID:            cartID,
			SubtotalCents: receipt.SubtotalCents,
			TotalCents:    receipt.TotalCents,
		}); err != nil {
			return errors.Wrap(err, "failed to update cart totals")
		}

		return nil
	})
}

// loadStackSnapshot assembles the engine's stack configuration from the
// persisted rows. The storage layer already guarantees referential
// existence; the engine re-validates graph shape independently at compile
// time.
func (s *PricingService) loadStackSnapshot(ctx context.Context, stackID uuid.UUID) (engine.StackConfig, error) {
	stack, err := s.store.GetPromotionStack(ctx, stackID)
	if err != nil {
		return engine.StackConfig{}, errors.Wrap(err, "failed to get promotion stack")
	}

	layers, err := s.store.ListPromotionLayers(ctx, stackID)
	if err != nil {
		return engine.StackConfig{}, errors.Wrap(err, "failed to list layers")
	}

	promotions, err := s.store.ListPromotionsByStack(ctx, stackID)
	if err != nil {
		return engine.StackConfig{}, errors.Wrap(err, "failed to list promotions")
	}

	qualifications, err := s.store.ListQualificationsByStack(ctx, stackID)
	if err != nil {
		return engine.StackConfig{}, errors.Wrap(err, "failed to list qualifications")
	}

	rules, err := s.store.ListQualificationRulesByStack(ctx, stackID)
	if err != nil {
		return engine.StackConfig{}, errors.Wrap(err, "failed to list qualification rules")
	}

	index, err := buildQualificationIndex(qualifications, rules)
	if err != nil {
		return engine.StackConfig{}, err
	}

	promotionsByLayer := make(map[uuid.UUID][]engine.Promotion, len(layers))
	for _, row := range promotions {
		promotion, err := buildPromotion(row, stack.Currency)
		if err != nil {
			return engine.StackConfig{}, err
		}
		promotionsByLayer[row.LayerID] = append(promotionsByLayer[row.LayerID], promotion)
	}

	snapshot := engine.StackConfig{
		ID:             stack.ID,
		Name:           stack.Name,
		Currency:       stack.Currency,
		RootLayerID:    stack.RootLayerID,
		Qualifications: index,
	}

	for _, row := range layers {
		layer := engine.LayerConfig{
			ID:         row.ID,
			Name:       row.Name,
			Position:   row.Position,
			OutputMode: engine.OutputMode(row.OutputMode),
			Promotions: promotionsByLayer[row.ID],
		}
		layer.ParticipantTarget = buildRouteTarget(row.ParticipantRouteKind, row.ParticipantLayerID)
		layer.NonParticipantTarget = buildRouteTarget(row.NonParticipantRouteKind, row.NonParticipantLayerID)
		snapshot.Layers = append(snapshot.Layers, layer)
	}

	return snapshot, nil
}

func buildQualificationIndex(qualifications []db.Qualification, rules []db.QualificationRule) (engine.QualificationIndex, error) {
	index := make(engine.QualificationIndex, len(qualifications))
	for _, row := range qualifications {
		index[row.ID] = &engine.Qualification{
			ID:       row.ID,
			Operator: engine.QualificationOperator(row.Operator),
		}
	}

	for _, row := range rules {
		qualification, ok := index[row.QualificationID]
		if !ok {
			return nil, engine.NewConfigurationError("rule %s references missing qualification %s", row.ID, row.QualificationID)
		}

		rule := engine.QualificationRule{Kind: engine.RuleKind(row.Kind)}
		if len(row.Tags) > 0 {
			if err := json.Unmarshal(row.Tags, &rule.Tags); err != nil {
				return nil, engine.NewConfigurationError("malformed tags on rule %s: %v", row.ID, err)
			}
		}
		if rule.Kind == engine.RuleKindGroup {
			if !row.GroupQualificationID.Valid {
				return nil, engine.NewConfigurationError("group rule %s is missing its qualification reference", row.ID)
			}
			rule.GroupID = row.GroupQualificationID.Bytes
		}
		qualification.Rules = append(qualification.Rules, rule)
	}

	return index, nil
}

func buildPromotion(row db.Promotion, currency string) (engine.Promotion, error) {
	discount, err := config.ParseDiscountDocument(row.Discount, currency)
	if err != nil {
		return engine.Promotion{}, err
	}

	promotion := engine.Promotion{
		ID:              row.ID,
		Code:            row.Code,
		SortOrder:       row.SortOrder,
		QualificationID: row.QualificationID,
		Discount:        discount,
	}
	if row.MaxApplications.Valid {
		apps := row.MaxApplications.Int32
		promotion.Budget.MaxApplications = &apps
	}
	if row.MaxAmountCents.Valid {
		amount := engine.NewMoney(row.MaxAmountCents.Int64, currency)
		promotion.Budget.MaxAmount = &amount
	}
	return promotion, nil
}

func buildRouteTarget(kind pgtype.Text, layerID pgtype.UUID) engine.RouteTarget {
	if !kind.Valid {
		return engine.RouteTarget{Kind: engine.RoutePassThrough}
	}
	target := engine.RouteTarget{Kind: engine.RouteKind(kind.String)}
	if layerID.Valid {
		target.LayerID = layerID.Bytes
	}
	return target
}
