package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// PromotionStack is one persisted promotion configuration: the root layer
// reference plus its working currency.
type PromotionStack struct {
	ID          uuid.UUID
	Name        string
	Currency    string
	RootLayerID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PromotionLayer is one ordered stage within a stack. Routing columns are
// only meaningful when OutputMode is "split".
type PromotionLayer struct {
	ID                      uuid.UUID
	StackID                 uuid.UUID
	Name                    string
	Position                int32
	OutputMode              string
	ParticipantRouteKind    pgtype.Text
	ParticipantLayerID      pgtype.UUID
	NonParticipantRouteKind pgtype.Text
	NonParticipantLayerID   pgtype.UUID
}

// Promotion is one qualification-gated discount attached to a layer. The
// discount definition is stored as a JSON document; budget columns are
// null for unlimited.
type Promotion struct {
	ID              uuid.UUID
	LayerID         uuid.UUID
	Code            string
	SortOrder       int32
	QualificationID uuid.UUID
	Discount        []byte
	MaxApplications pgtype.Int4
	MaxAmountCents  pgtype.Int8
}

// Qualification is one boolean rule-tree node.
type Qualification struct {
	ID       uuid.UUID
	StackID  uuid.UUID
	Operator string
}

// QualificationRule is one ordered rule within a qualification: a tag
// predicate, or a group reference to another qualification.
type QualificationRule struct {
	ID                   uuid.UUID
	QualificationID      uuid.UUID
	Position             int32
	Kind                 string
	Tags                 []byte
	GroupQualificationID pgtype.UUID
}

// Cart is a persisted cart whose totals are written back after pricing.
type Cart struct {
	ID            uuid.UUID
	Currency      string
	SubtotalCents pgtype.Int8
	TotalCents    pgtype.Int8
	CreatedAt     time.Time
}

// CartItem is one cart line: a catalog reference, its price in minor
// units, and its tag list as a JSON array.
type CartItem struct {
	ID         uuid.UUID
	CartID     uuid.UUID
	Reference  string
	PriceCents int64
	Tags       []byte
}

// Receipt is the persisted outcome of pricing one cart through one stack.
type Receipt struct {
	ID            uuid.UUID
	CartID        uuid.UUID
	StackID       uuid.UUID
	BacktestRunID pgtype.UUID
	Currency      string
	SubtotalCents int64
	TotalCents    int64
	DiscountCents int64
	CreatedAt     time.Time
}

// PromotionRedemption is one audit row: one promotion discounting one item
// once.
type PromotionRedemption struct {
	ID                 uuid.UUID
	ReceiptID          uuid.UUID
	PromotionID        uuid.UUID
	CartItemID         uuid.UUID
	OriginalPriceCents int64
	FinalPriceCents    int64
	Sequence           int32
}

// BacktestRun is one batch pricing run over a set of existing carts.
type BacktestRun struct {
	ID          uuid.UUID
	StackID     uuid.UUID
	Status      string
	TotalCarts  int32
	Succeeded   int32
	Failed      int32
	CreatedAt   time.Time
	CompletedAt pgtype.Timestamptz
}

// BacktestRunCart links a backtest run to one cart and records that cart's
// outcome.
type BacktestRunCart struct {
	RunID  uuid.UUID
	CartID uuid.UUID
	Status string
	Error  pgtype.Text
}
