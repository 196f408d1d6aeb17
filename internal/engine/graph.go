package engine

import (
	"sort"

	"github.com/google/uuid"
)

// OutputMode controls how a layer routes its output items.
type OutputMode string

const (
	// OutputPassThrough sends every item, unchanged, to the stack's next
	// declared layer.
	OutputPassThrough OutputMode = "pass_through"
	// OutputSplit partitions items by whether any attached promotion
	// matched them and routes each partition independently.
	OutputSplit OutputMode = "split"
)

// RouteKind identifies a split partition's destination.
type RouteKind string

const (
	// RoutePassThrough continues to the stack's natural next layer.
	RoutePassThrough RouteKind = "pass_through"
	// RouteLayer jumps to a named layer within the same stack.
	RouteLayer RouteKind = "layer"
)

// RouteTarget is a split partition's configured destination.
type RouteTarget struct {
	Kind    RouteKind
	LayerID uuid.UUID
}

// LayerConfig is one persisted promotion layer: an ordered position within
// the stack, attached promotions, and an output-routing policy.
type LayerConfig struct {
	ID         uuid.UUID
	Name       string
	Position   int32
	OutputMode OutputMode

	// Routing targets for the split partitions. Ignored for pass_through
	// layers.
	ParticipantTarget    RouteTarget
	NonParticipantTarget RouteTarget

	Promotions []Promotion
}

// StackConfig is a full persisted promotion stack, loaded once per run as a
// read-only snapshot.
type StackConfig struct {
	ID             uuid.UUID
	Name           string
	Currency       string
	RootLayerID    uuid.UUID
	Layers         []LayerConfig
	Qualifications QualificationIndex
}

// terminalLayer marks a routing edge with no successor; items arriving
// there are finished.
const terminalLayer = -1

// compiledLayer is a layer with its routing edges resolved to arena
// indices.
type compiledLayer struct {
	config LayerConfig

	// next is the stack-order successor; participantNext and
	// nonParticipantNext are the resolved split destinations. All are
	// terminalLayer when there is nowhere further to go.
	next               int
	participantNext    int
	nonParticipantNext int
}

// StackGraph is the compiled, validated routing graph for one stack:
// an arena of layers indexed by declared order, rooted at the configured
// entry layer. Compilation fails with a GraphValidationError or
// ConfigurationError before any item is processed.
type StackGraph struct {
	stack  StackConfig
	layers []compiledLayer
	root   int
}

// CompileStack validates the stack's layer references, routing shape,
// qualification graph, and discount definitions, and resolves routing edges
// into an index-based arena.
func CompileStack(stack StackConfig) (*StackGraph, error) {
	if len(stack.Layers) == 0 {
		return nil, NewGraphValidationError("stack %s has no layers", stack.ID)
	}

	// Arena order is declared stack order.
	ordered := make([]LayerConfig, len(stack.Layers))
	copy(ordered, stack.Layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	index := make(map[uuid.UUID]int, len(ordered))
	for i, layer := range ordered {
		if _, exists := index[layer.ID]; exists {
			return nil, NewGraphValidationError("duplicate layer %s", layer.ID)
		}
		index[layer.ID] = i
	}

	root, ok := index[stack.RootLayerID]
	if !ok {
		return nil, NewGraphValidationError("root layer %s not found in stack %s", stack.RootLayerID, stack.ID)
	}

	if err := ValidateQualifications(stack.Qualifications); err != nil {
		return nil, err
	}

	graph := &StackGraph{
		stack:  stack,
		layers: make([]compiledLayer, len(ordered)),
		root:   root,
	}

	for i, layer := range ordered {
		next := terminalLayer
		if i+1 < len(ordered) {
			next = i + 1
		}

		compiled := compiledLayer{
			config:             layer,
			next:               next,
			participantNext:    next,
			nonParticipantNext: next,
		}

		switch layer.OutputMode {
		case OutputPassThrough:
			// Both partitions follow stack order; no targets to resolve.
		case OutputSplit:
			var err error
			compiled.participantNext, err = resolveTarget(layer.ParticipantTarget, next, index)
			if err != nil {
				return nil, err
			}
			compiled.nonParticipantNext, err = resolveTarget(layer.NonParticipantTarget, next, index)
			if err != nil {
				return nil, err
			}
		default:
			return nil, NewConfigurationError("unknown output mode %q on layer %s", layer.OutputMode, layer.ID)
		}

		// Promotions run in ascending sort order within the layer.
		sort.SliceStable(compiled.config.Promotions, func(a, b int) bool {
			return compiled.config.Promotions[a].SortOrder < compiled.config.Promotions[b].SortOrder
		})

		for _, promotion := range compiled.config.Promotions {
			if _, ok := stack.Qualifications[promotion.QualificationID]; !ok {
				return nil, NewConfigurationError("promotion %s references missing qualification %s",
					promotion.ID, promotion.QualificationID)
			}
			if err := promotion.Discount.Validate(stack.Currency); err != nil {
				return nil, err
			}
			if promotion.Budget.MaxAmount != nil && promotion.Budget.MaxAmount.Currency != stack.Currency {
				return nil, NewCurrencyMismatchError(stack.Currency, promotion.Budget.MaxAmount.Currency)
			}
		}

		graph.layers[i] = compiled
	}

	if err := graph.checkAcyclic(); err != nil {
		return nil, err
	}

	return graph, nil
}

func resolveTarget(target RouteTarget, next int, index map[uuid.UUID]int) (int, error) {
	switch target.Kind {
	case RoutePassThrough:
		return next, nil
	case RouteLayer:
		resolved, ok := index[target.LayerID]
		if !ok {
			return 0, NewGraphValidationError("routing target layer %s not found", target.LayerID)
		}
		return resolved, nil
	default:
		return 0, NewConfigurationError("unknown route kind %q", target.Kind)
	}
}

// checkAcyclic runs a depth-first traversal from the root over all routing
// edges and rejects any cycle.
func (g *StackGraph) checkAcyclic() error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make([]int, len(g.layers))

	var visit func(i int) error
	visit = func(i int) error {
		if i == terminalLayer {
			return nil
		}
		switch state[i] {
		case inStack:
			return NewGraphValidationError("routing cycle detected at layer %s", g.layers[i].config.ID)
		case done:
			return nil
		}

		state[i] = inStack
		layer := g.layers[i]
		edges := []int{layer.next}
		if layer.config.OutputMode == OutputSplit {
			edges = []int{layer.participantNext, layer.nonParticipantNext}
		}
		for _, edge := range edges {
			if err := visit(edge); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}

	return visit(g.root)
}

// Budgets collects every promotion's budget, keyed by promotion ID, for
// seeding a fresh per-run tracker.
func (g *StackGraph) Budgets() map[uuid.UUID]Budget {
	budgets := make(map[uuid.UUID]Budget)
	for _, layer := range g.layers {
		for _, promotion := range layer.config.Promotions {
			budgets[promotion.ID] = promotion.Budget
		}
	}
	return budgets
}

// Currency returns the stack's working currency.
func (g *StackGraph) Currency() string {
	return g.stack.Currency
}
