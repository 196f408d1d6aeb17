package db

import (
	"context"

	"github.com/google/uuid"
)

const getPromotionStack = `
SELECT id, name, currency, root_layer_id, created_at, updated_at
FROM promotion_stacks
WHERE id = $1
`

// GetPromotionStack loads one stack header row.
func (q *Queries) GetPromotionStack(ctx context.Context, id uuid.UUID) (PromotionStack, error) {
	row := q.db.QueryRow(ctx, getPromotionStack, id)
	var s PromotionStack
	err := row.Scan(&s.ID, &s.Name, &s.Currency, &s.RootLayerID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const listPromotionStacks = `
SELECT id, name, currency, root_layer_id, created_at, updated_at
FROM promotion_stacks
ORDER BY created_at DESC
`

// ListPromotionStacks lists every stack, newest first.
func (q *Queries) ListPromotionStacks(ctx context.Context) ([]PromotionStack, error) {
	rows, err := q.db.Query(ctx, listPromotionStacks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stacks []PromotionStack
	for rows.Next() {
		var s PromotionStack
		if err := rows.Scan(&s.ID, &s.Name, &s.Currency, &s.RootLayerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stacks = append(stacks, s)
	}
	return stacks, rows.Err()
}

const listPromotionLayers = `
SELECT id, stack_id, name, position, output_mode,
       participant_route_kind, participant_layer_id,
       non_participant_route_kind, non_participant_layer_id
FROM promotion_layers
WHERE stack_id = $1
ORDER BY position
`

// ListPromotionLayers loads a stack's layers in declared order.
func (q *Queries) ListPromotionLayers(ctx context.Context, stackID uuid.UUID) ([]PromotionLayer, error) {
	rows, err := q.db.Query(ctx, listPromotionLayers, stackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layers []PromotionLayer
	for rows.Next() {
		var l PromotionLayer
		if err := rows.Scan(
			&l.ID, &l.StackID, &l.Name, &l.Position, &l.OutputMode,
			&l.ParticipantRouteKind, &l.ParticipantLayerID,
			&l.NonParticipantRouteKind, &l.NonParticipantLayerID,
		); err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, rows.Err()
}

const listPromotionsByStack = `
SELECT p.id, p.layer_id, p.code, p.sort_order, p.qualification_id,
       p.discount, p.max_applications, p.max_amount_cents
FROM promotions p
JOIN promotion_layers l ON l.id = p.layer_id
WHERE l.stack_id = $1
ORDER BY l.position, p.sort_order
`

// ListPromotionsByStack loads every promotion attached to a stack's layers.
func (q *Queries) ListPromotionsByStack(ctx context.Context, stackID uuid.UUID) ([]Promotion, error) {
	rows, err := q.db.Query(ctx, listPromotionsByStack, stackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []Promotion
	for rows.Next() {
		var p Promotion
		if err := rows.Scan(
			&p.ID, &p.LayerID, &p.Code, &p.SortOrder, &p.QualificationID,
			&p.Discount, &p.MaxApplications, &p.MaxAmountCents,
		); err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}
	return promotions, rows.Err()
}

const listQualificationsByStack = `
SELECT id, stack_id, operator
FROM qualifications
WHERE stack_id = $1
`

// ListQualificationsByStack loads a stack's qualification nodes.
func (q *Queries) ListQualificationsByStack(ctx context.Context, stackID uuid.UUID) ([]Qualification, error) {
	rows, err := q.db.Query(ctx, listQualificationsByStack, stackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qualifications []Qualification
	for rows.Next() {
		var qual Qualification
		if err := rows.Scan(&qual.ID, &qual.StackID, &qual.Operator); err != nil {
			return nil, err
		}
		qualifications = append(qualifications, qual)
	}
	return qualifications, rows.Err()
}

const listQualificationRulesByStack = `
SELECT r.id, r.qualification_id, r.position, r.kind, r.tags, r.group_qualification_id
FROM qualification_rules r
JOIN qualifications q ON q.id = r.qualification_id
WHERE q.stack_id = $1
ORDER BY r.qualification_id, r.position
`

// ListQualificationRulesByStack loads every rule belonging to a stack's
// qualifications, ordered within each qualification.
func (q *Queries) ListQualificationRulesByStack(ctx context.Context, stackID uuid.UUID) ([]QualificationRule, error) {
	rows, err := q.db.Query(ctx, listQualificationRulesByStack, stackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []QualificationRule
	for rows.Next() {
		var r QualificationRule
		if err := rows.Scan(&r.ID, &r.QualificationID, &r.Position, &r.Kind, &r.Tags, &r.GroupQualificationID); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
