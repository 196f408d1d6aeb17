package engine

import (
	"go.uber.org/zap"

	"github.com/promostack/promostack-api/internal/logger"
)

// Options tunes engine behavior that is left to the deployment.
type Options struct {
	// EmptyHasAnyMatches controls whether a has_any rule with no tags is
	// vacuously true.
	EmptyHasAnyMatches bool
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{EmptyHasAnyMatches: true}
}

// Pipeline drives cart items through a compiled stack graph in a single
// deterministic pass and produces the priced receipt with its audit trail.
// A pipeline run is strictly single-threaded and performs no I/O; the only
// mutable state is the per-run budget tracker and the items' running
// prices.
type Pipeline struct {
	graph   *StackGraph
	options Options
	logger  *zap.Logger
}

// NewPipeline creates a pipeline over a compiled graph.
func NewPipeline(graph *StackGraph, options Options) *Pipeline {
	return &Pipeline{
		graph:   graph,
		options: options,
		logger:  logger.Log,
	}
}

// batch is a set of items positioned at one layer of the graph.
type batch struct {
	layer int
	items []*Item
}

// Run prices the cart. Every item starts at the root layer; a layer runs
// its promotions in ascending sort order against the then-current running
// prices (promotions compound, not stack on the original price), then
// routes its output. Items reaching a layer with no successor are finished.
// Any fatal error aborts the whole run; partial receipts are never
// produced.
func (p *Pipeline) Run(items []*Item) (*Receipt, error) {
	currency := p.graph.Currency()
	for _, item := range items {
		if item.OriginalPrice.Currency != currency {
			return nil, NewCurrencyMismatchError(currency, item.OriginalPrice.Currency)
		}
	}

	evaluator := &promotionEvaluator{
		qualifications: NewQualificationEvaluator(p.graph.stack.Qualifications, p.options.EmptyHasAnyMatches),
		budgets:        NewBudgetTracker(p.graph.Budgets()),
	}

	var trail []PromotionApplication
	queue := []batch{{layer: p.graph.root, items: items}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if len(current.items) == 0 {
			continue
		}

		layer := p.graph.layers[current.layer]

		// Application counts before this layer runs, so split routing can
		// partition by participation in this layer alone.
		before := make(map[*Item]int, len(current.items))
		for _, item := range current.items {
			before[item] = len(item.Applications)
		}

		for _, promotion := range layer.config.Promotions {
			applications, err := evaluator.evaluate(promotion, current.items)
			if err != nil {
				return nil, err
			}
			trail = append(trail, applications...)
		}

		switch layer.config.OutputMode {
		case OutputSplit:
			// Partitions are disjoint and exhaustive: every input item
			// lands in exactly one of them.
			var participating, rest []*Item
			for _, item := range current.items {
				if len(item.Applications) > before[item] {
					participating = append(participating, item)
				} else {
					rest = append(rest, item)
				}
			}
			if layer.participantNext != terminalLayer && len(participating) > 0 {
				queue = append(queue, batch{layer: layer.participantNext, items: participating})
			}
			if layer.nonParticipantNext != terminalLayer && len(rest) > 0 {
				queue = append(queue, batch{layer: layer.nonParticipantNext, items: rest})
			}
		default:
			if layer.next != terminalLayer {
				queue = append(queue, batch{layer: layer.next, items: current.items})
			}
		}
	}

	receipt := buildReceipt(currency, items, trail)
	p.logger.Debug("cart priced",
		zap.String("stack_id", p.graph.stack.ID.String()),
		zap.Int("items", receipt.ItemCount),
		zap.Int64("subtotal_cents", receipt.SubtotalCents),
		zap.Int64("total_cents", receipt.TotalCents),
		zap.Int("applications", len(receipt.Applications)))
	return receipt, nil
}
