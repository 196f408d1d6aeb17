package engine

import "github.com/google/uuid"

// RuleKind identifies how a single qualification rule matches an item's tags.
type RuleKind string

const (
	RuleKindHasAll  RuleKind = "has_all"
	RuleKindHasAny  RuleKind = "has_any"
	RuleKindHasNone RuleKind = "has_none"
	RuleKindGroup   RuleKind = "group"
)

// QualificationOperator combines the results of a qualification's rules.
type QualificationOperator string

const (
	OperatorAnd QualificationOperator = "and"
	OperatorOr  QualificationOperator = "or"
)

// QualificationRule is a leaf tag predicate or a group reference to another
// qualification.
type QualificationRule struct {
	Kind    RuleKind
	Tags    []string
	GroupID uuid.UUID
}

// Qualification is a boolean rule tree node: an operator over an ordered
// list of rules. Group rules recurse into the referenced qualification.
type Qualification struct {
	ID       uuid.UUID
	Operator QualificationOperator
	Rules    []QualificationRule
}

// QualificationIndex resolves group references. It is loaded once per run
// from the configuration snapshot.
type QualificationIndex map[uuid.UUID]*Qualification

// QualificationEvaluator evaluates whether an item's tag set satisfies a
// qualification tree. The index must have been validated with
// ValidateQualifications before evaluation; the evaluator itself performs
// no cycle checks.
type QualificationEvaluator struct {
	index QualificationIndex

	// emptyHasAnyMatches controls whether a has_any rule with an empty tag
	// list is vacuously true. Defaults to true.
	emptyHasAnyMatches bool
}

// NewQualificationEvaluator creates an evaluator over a validated index.
func NewQualificationEvaluator(index QualificationIndex, emptyHasAnyMatches bool) *QualificationEvaluator {
	return &QualificationEvaluator{
		index:              index,
		emptyHasAnyMatches: emptyHasAnyMatches,
	}
}

// Evaluate reports whether the item satisfies the qualification. Rules are
// pure, so evaluation short-circuits on the operator.
func (e *QualificationEvaluator) Evaluate(qualificationID uuid.UUID, item *Item) (bool, error) {
	qualification, ok := e.index[qualificationID]
	if !ok {
		return false, NewConfigurationError("qualification %s not found", qualificationID)
	}
	if qualification.Operator != OperatorAnd && qualification.Operator != OperatorOr {
		return false, NewConfigurationError("unknown qualification operator %q", qualification.Operator)
	}

	for _, rule := range qualification.Rules {
		matched, err := e.evaluateRule(rule, item)
		if err != nil {
			return false, err
		}

		switch qualification.Operator {
		case OperatorAnd:
			if !matched {
				return false, nil
			}
		case OperatorOr:
			if matched {
				return true, nil
			}
		}
	}

	// An and-qualification passed every rule; an or-qualification matched none.
	return qualification.Operator == OperatorAnd, nil
}

func (e *QualificationEvaluator) evaluateRule(rule QualificationRule, item *Item) (bool, error) {
	switch rule.Kind {
	case RuleKindHasAll:
		for _, tag := range rule.Tags {
			if !item.HasTag(tag) {
				return false, nil
			}
		}
		return true, nil
	case RuleKindHasAny:
		if len(rule.Tags) == 0 {
			return e.emptyHasAnyMatches, nil
		}
		for _, tag := range rule.Tags {
			if item.HasTag(tag) {
				return true, nil
			}
		}
		return false, nil
	case RuleKindHasNone:
		for _, tag := range rule.Tags {
			if item.HasTag(tag) {
				return false, nil
			}
		}
		return true, nil
	case RuleKindGroup:
		return e.Evaluate(rule.GroupID, item)
	default:
		return false, NewConfigurationError("unknown qualification rule kind %q", rule.Kind)
	}
}

// ValidateQualifications rejects group-reference cycles and dangling group
// references at compile time so runtime evaluation never needs a cycle
// guard.
func ValidateQualifications(index QualificationIndex) error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[uuid.UUID]int, len(index))

	var visit func(id uuid.UUID) error
	visit = func(id uuid.UUID) error {
		switch state[id] {
		case inStack:
			return NewConfigurationError("qualification cycle detected at %s", id)
		case done:
			return nil
		}

		qualification, ok := index[id]
		if !ok {
			return NewConfigurationError("qualification %s not found", id)
		}

		state[id] = inStack
		for _, rule := range qualification.Rules {
			switch rule.Kind {
			case RuleKindHasAll, RuleKindHasAny, RuleKindHasNone:
				// Leaf rules cannot recurse.
			case RuleKindGroup:
				if err := visit(rule.GroupID); err != nil {
					return err
				}
			default:
				return NewConfigurationError("unknown qualification rule kind %q", rule.Kind)
			}
		}
		state[id] = done
		return nil
	}

	for id := range index {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
