package config

import (
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/promostack/promostack-api/internal/engine"
)

// StackDocument is a YAML-authored promotion stack used by the simulation
// CLI and tests. Layers and qualifications reference each other by name;
// loading assigns IDs and resolves the names.
type StackDocument struct {
	Name           string                  `yaml:"name"`
	Currency       string                  `yaml:"currency"`
	RootLayer      string                  `yaml:"root_layer"`
	Layers         []LayerDocument         `yaml:"layers"`
	Qualifications []QualificationDocument `yaml:"qualifications"`
}

// LayerDocument is one stack layer in YAML form.
type LayerDocument struct {
	Name            string              `yaml:"name"`
	OutputMode      string              `yaml:"output_mode"`
	Participants    *RouteDocument      `yaml:"participants,omitempty"`
	NonParticipants *RouteDocument      `yaml:"non_participants,omitempty"`
	Promotions      []PromotionDocument `yaml:"promotions"`
}

// RouteDocument is a split partition's destination in YAML form.
type RouteDocument struct {
	Route string `yaml:"route"`
	Layer string `yaml:"layer,omitempty"`
}

// PromotionDocument is one promotion in YAML form.
type PromotionDocument struct {
	Code          string           `yaml:"code"`
	SortOrder     int32            `yaml:"sort_order"`
	Qualification string           `yaml:"qualification"`
	Discount      DiscountDocument `yaml:"discount"`
	Budget        *BudgetDocument  `yaml:"budget,omitempty"`
}

// BudgetDocument caps a promotion's applications for a run. Both fields
// omitted means unlimited.
type BudgetDocument struct {
	MaxApplications *int32 `yaml:"max_applications,omitempty"`
	MaxAmountCents  *int64 `yaml:"max_amount_cents,omitempty"`
}

// QualificationDocument is one qualification node in YAML form.
type QualificationDocument struct {
	Name     string         `yaml:"name"`
	Operator string         `yaml:"operator"`
	Rules    []RuleDocument `yaml:"rules"`
}

// RuleDocument is one qualification rule in YAML form.
type RuleDocument struct {
	Kind  string   `yaml:"kind"`
	Tags  []string `yaml:"tags,omitempty"`
	Group string   `yaml:"group,omitempty"`
}

// CartDocument is a YAML-authored cart for simulation.
type CartDocument struct {
	Currency string         `yaml:"currency"`
	Items    []ItemDocument `yaml:"items"`
}

// ItemDocument is one cart line in YAML form.
type ItemDocument struct {
	Reference  string   `yaml:"reference"`
	PriceCents int64    `yaml:"price_cents"`
	Tags       []string `yaml:"tags"`
}

// LoadStackFile reads and resolves a YAML stack definition.
func LoadStackFile(path string) (engine.StackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.StackConfig{}, err
	}

	var doc StackDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engine.StackConfig{}, engine.NewConfigurationError("malformed stack file %s: %v", path, err)
	}
	return doc.ToEngine()
}

// LoadCartFile reads a YAML cart definition into engine items.
func LoadCartFile(path string) ([]*engine.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc CartDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, engine.NewConfigurationError("malformed cart file %s: %v", path, err)
	}

	items := make([]*engine.Item, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, engine.NewItem(
			uuid.New(),
			item.Reference,
			item.Tags,
			engine.NewMoney(item.PriceCents, doc.Currency),
		))
	}
	return items, nil
}

// ToEngine resolves the document's name references into a StackConfig
// ready for compilation.
func (d StackDocument) ToEngine() (engine.StackConfig, error) {
	layerIDs := make(map[string]uuid.UUID, len(d.Layers))
	for _, layer := range d.Layers {
		if _, exists := layerIDs[layer.Name]; exists {
			return engine.StackConfig{}, engine.NewConfigurationError("duplicate layer name %q", layer.Name)
		}
		layerIDs[layer.Name] = uuid.New()
	}

	qualificationIDs := make(map[string]uuid.UUID, len(d.Qualifications))
	for _, qualification := range d.Qualifications {
		if _, exists := qualificationIDs[qualification.Name]; exists {
			return engine.StackConfig{}, engine.NewConfigurationError("duplicate qualification name %q", qualification.Name)
		}
		qualificationIDs[qualification.Name] = uuid.New()
	}

	rootID, ok := layerIDs[d.RootLayer]
	if !ok {
		return engine.StackConfig{}, engine.NewConfigurationError("root layer %q not defined", d.RootLayer)
	}

	index := make(engine.QualificationIndex, len(d.Qualifications))
	for _, doc := range d.Qualifications {
		qualification := &engine.Qualification{
			ID:       qualificationIDs[doc.Name],
			Operator: engine.QualificationOperator(doc.Operator),
		}
		for _, rule := range doc.Rules {
			engineRule := engine.QualificationRule{
				Kind: engine.RuleKind(rule.Kind),
				Tags: rule.Tags,
			}
			if engineRule.Kind == engine.RuleKindGroup {
				groupID, ok := qualificationIDs[rule.Group]
				if !ok {
					return engine.StackConfig{}, engine.NewConfigurationError(
						"qualification %q references unknown group %q", doc.Name, rule.Group)
				}
				engineRule.GroupID = groupID
			}
			qualification.Rules = append(qualification.Rules, engineRule)
		}
		index[qualification.ID] = qualification
	}

	stack := engine.StackConfig{
		ID:             uuid.New(),
		Name:           d.Name,
		Currency:       d.Currency,
		RootLayerID:    rootID,
		Qualifications: index,
	}

	for position, doc := range d.Layers {
		layer := engine.LayerConfig{
			ID:         layerIDs[doc.Name],
			Name:       doc.Name,
			Position:   int32(position),
			OutputMode: engine.OutputMode(doc.OutputMode),
		}
		if layer.OutputMode == "" {
			layer.OutputMode = engine.OutputPassThrough
		}

		var err error
		layer.ParticipantTarget, err = resolveRouteDocument(doc.Participants, layerIDs)
		if err != nil {
			return engine.StackConfig{}, err
		}
		layer.NonParticipantTarget, err = resolveRouteDocument(doc.NonParticipants, layerIDs)
		if err != nil {
			return engine.StackConfig{}, err
		}

		for _, promotionDoc := range doc.Promotions {
			qualificationID, ok := qualificationIDs[promotionDoc.Qualification]
			if !ok {
				return engine.StackConfig{}, engine.NewConfigurationError(
					"promotion %q references unknown qualification %q", promotionDoc.Code, promotionDoc.Qualification)
			}

			discount, err := promotionDoc.Discount.ToEngine(d.Currency)
			if err != nil {
				return engine.StackConfig{}, err
			}

			promotion := engine.Promotion{
				ID:              uuid.New(),
				Code:            promotionDoc.Code,
				SortOrder:       promotionDoc.SortOrder,
				QualificationID: qualificationID,
				Discount:        discount,
			}
			if promotionDoc.Budget != nil {
				promotion.Budget.MaxApplications = promotionDoc.Budget.MaxApplications
				if promotionDoc.Budget.MaxAmountCents != nil {
					amount := engine.NewMoney(*promotionDoc.Budget.MaxAmountCents, d.Currency)
					promotion.Budget.MaxAmount = &amount
				}
			}
			layer.Promotions = append(layer.Promotions, promotion)
		}

		stack.Layers = append(stack.Layers, layer)
	}

	return stack, nil
}

func resolveRouteDocument(doc *RouteDocument, layerIDs map[string]uuid.UUID) (engine.RouteTarget, error) {
	if doc == nil {
		return engine.RouteTarget{Kind: engine.RoutePassThrough}, nil
	}
	target := engine.RouteTarget{Kind: engine.RouteKind(doc.Route)}
	if target.Kind == engine.RouteLayer {
		layerID, ok := layerIDs[doc.Layer]
		if !ok {
			return engine.RouteTarget{}, engine.NewConfigurationError("routing target layer %q not defined", doc.Layer)
		}
		target.LayerID = layerID
	}
	return target, nil
}
