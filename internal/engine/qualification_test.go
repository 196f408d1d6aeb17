package engine_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promostack/promostack-api/internal/engine"
)

func newTestItem(tags ...string) *engine.Item {
	return engine.NewItem(uuid.New(), "sku-1", tags, engine.NewMoney(1000, "USD"))
}

func TestQualificationEvaluator_Evaluate(t *testing.T) {
	electronicsID := uuid.New()

	tests := []struct {
		name     string
		operator engine.QualificationOperator
		rules    []engine.QualificationRule
		tags     []string
		expected bool
	}{
		{
			name:     "and with all rules matching",
			operator: engine.OperatorAnd,
			rules: []engine.QualificationRule{
				{Kind: engine.RuleKindHasAll, Tags: []string{"electronics", "sale"}},
				{Kind: engine.RuleKindHasNone, Tags: []string{"clearance"}},
			},
			tags:     []string{"electronics", "sale", "featured"},
			expected: true,
		},
		{
			name:     "and short-circuits on first failure",
			operator: engine.OperatorAnd,
			rules: []engine.QualificationRule{
				{Kind: engine.RuleKindHasAll, Tags: []string{"electronics"}},
				{Kind: engine.RuleKindHasAll, Tags: []string{"sale"}},
			},
			tags:     []string{"sale"},
			expected: false,
		},
		{
			name:     "or with one rule matching",
			operator: engine.OperatorOr,
			rules: []engine.QualificationRule{
				{Kind: engine.RuleKindHasAll, Tags: []string{"clothing"}},
				{Kind: engine.RuleKindHasAny, Tags: []string{"sale", "featured"}},
			},
			tags:     []string{"featured"},
			expected: true,
		},
		{
			name:     "or with no rules matching",
			operator: engine.OperatorOr,
			rules: []engine.QualificationRule{
				{Kind: engine.RuleKindHasAll, Tags: []string{"clothing"}},
				{Kind: engine.RuleKindHasAny, Tags: []string{"sale"}},
			},
			tags:     []string{"electronics"},
			expected: false,
		},
		{
			name:     "and with no rules is vacuously true",
			operator: engine.OperatorAnd,
			rules:    nil,
			tags:     []string{"anything"},
			expected: true,
		},
		{
			name:     "or with no rules is false",
			operator: engine.OperatorOr,
			rules:    nil,
			tags:     []string{"anything"},
			expected: false,
		},
		{
			name:     "has_none rejects matching tag",
			operator: engine.OperatorAnd,
			rules: []engine.QualificationRule{
				{Kind: engine.RuleKindHasNone, Tags: []string{"excluded"}},
			},
			tags:     []string{"excluded", "sale"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qualificationID := uuid.New()
			index := engine.QualificationIndex{
				qualificationID: {ID: qualificationID, Operator: tt.operator, Rules: tt.rules},
			}
			evaluator := engine.NewQualificationEvaluator(index, true)

			matched, err := evaluator.Evaluate(qualificationID, newTestItem(tt.tags...))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, matched)
		})
	}

	t.Run("group rule recurses into referenced qualification", func(t *testing.T) {
		parentID := uuid.New()
		index := engine.QualificationIndex{
			electronicsID: {
				ID:       electronicsID,
				Operator: engine.OperatorAnd,
				Rules:    []engine.QualificationRule{{Kind: engine.RuleKindHasAll, Tags: []string{"electronics"}}},
			},
			parentID: {
				ID:       parentID,
				Operator: engine.OperatorAnd,
				Rules: []engine.QualificationRule{
					{Kind: engine.RuleKindGroup, GroupID: electronicsID},
					{Kind: engine.RuleKindHasAll, Tags: []string{"sale"}},
				},
			},
		}
		evaluator := engine.NewQualificationEvaluator(index, true)

		matched, err := evaluator.Evaluate(parentID, newTestItem("electronics", "sale"))
		require.NoError(t, err)
		assert.True(t, matched)

		matched, err = evaluator.Evaluate(parentID, newTestItem("sale"))
		require.NoError(t, err)
		assert.False(t, matched)
	})
}

func TestQualificationEvaluator_EmptyHasAny(t *testing.T) {
	qualificationID := uuid.New()
	index := engine.QualificationIndex{
		qualificationID: {
			ID:       qualificationID,
			Operator: engine.OperatorAnd,
			Rules:    []engine.QualificationRule{{Kind: engine.RuleKindHasAny}},
		},
	}

	matched, err := engine.NewQualificationEvaluator(index, true).Evaluate(qualificationID, newTestItem("anything"))
	require.NoError(t, err)
	assert.True(t, matched, "empty has_any should match when configured vacuously true")

	matched, err = engine.NewQualificationEvaluator(index, false).Evaluate(qualificationID, newTestItem("anything"))
	require.NoError(t, err)
	assert.False(t, matched, "empty has_any should not match when configured strict")
}

func TestQualificationEvaluator_Errors(t *testing.T) {
	qualificationID := uuid.New()

	t.Run("unknown qualification", func(t *testing.T) {
		evaluator := engine.NewQualificationEvaluator(engine.QualificationIndex{}, true)
		_, err := evaluator.Evaluate(qualificationID, newTestItem())
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("unknown operator", func(t *testing.T) {
		index := engine.QualificationIndex{
			qualificationID: {ID: qualificationID, Operator: "xor"},
		}
		evaluator := engine.NewQualificationEvaluator(index, true)
		_, err := evaluator.Evaluate(qualificationID, newTestItem())
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("unknown rule kind", func(t *testing.T) {
		index := engine.QualificationIndex{
			qualificationID: {
				ID:       qualificationID,
				Operator: engine.OperatorAnd,
				Rules:    []engine.QualificationRule{{Kind: "has_some"}},
			},
		}
		evaluator := engine.NewQualificationEvaluator(index, true)
		_, err := evaluator.Evaluate(qualificationID, newTestItem())
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})
}

func TestValidateQualifications(t *testing.T) {
	t.Run("valid chain passes", func(t *testing.T) {
		leafID := uuid.New()
		parentID := uuid.New()
		index := engine.QualificationIndex{
			leafID: {ID: leafID, Operator: engine.OperatorAnd},
			parentID: {
				ID:       parentID,
				Operator: engine.OperatorOr,
				Rules:    []engine.QualificationRule{{Kind: engine.RuleKindGroup, GroupID: leafID}},
			},
		}
		assert.NoError(t, engine.ValidateQualifications(index))
	})

	t.Run("direct cycle rejected", func(t *testing.T) {
		selfID := uuid.New()
		index := engine.QualificationIndex{
			selfID: {
				ID:       selfID,
				Operator: engine.OperatorAnd,
				Rules:    []engine.QualificationRule{{Kind: engine.RuleKindGroup, GroupID: selfID}},
			},
		}
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, engine.ValidateQualifications(index), &configErr)
	})

	t.Run("mutual cycle rejected", func(t *testing.T) {
		aID := uuid.New()
		bID := uuid.New()
		index := engine.QualificationIndex{
			aID: {
				ID:       aID,
				Operator: engine.OperatorAnd,
				Rules:    []engine.QualificationRule{{Kind: engine.RuleKindGroup, GroupID: bID}},
			},
			bID: {
				ID:       bID,
				Operator: engine.OperatorAnd,
				Rules:    []engine.QualificationRule{{Kind: engine.RuleKindGroup, GroupID: aID}},
			},
		}
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, engine.ValidateQualifications(index), &configErr)
	})

	t.Run("dangling group reference rejected", func(t *testing.T) {
		parentID := uuid.New()
		index := engine.QualificationIndex{
			parentID: {
				ID:       parentID,
				Operator: engine.OperatorAnd,
				Rules:    []engine.QualificationRule{{Kind: engine.RuleKindGroup, GroupID: uuid.New()}},
			},
		}
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, engine.ValidateQualifications(index), &configErr)
	})
}
