package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/QuorumGo/internal/models"
)

func position(id string, rec models.Recommendation, conf float64) models.AgentPosition {
	return models.AgentPosition{
		AnalystID:      id,
		Role:           id + " role",
		Recommendation: rec,
		Confidence:     conf,
		Reasoning:      id + " reasoning",
		KeyPoints:      []string{id + " point"},
		Risks:          []string{id + " risk"},
	}
}

func TestMajorityThreeBuyOneSell(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0.9),
		"b": position("b", models.Buy, 0.8),
		"c": position("c", models.Buy, 0.7),
		"d": position("d", models.Sell, 0.6),
	}
	result := NewBuilder(nil, nil).Build(positions, models.MethodMajority)

	assert.Equal(t, models.Buy, result.Recommendation)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	assert.InDelta(t, 0.75, result.ConsensusLevel, 1e-9)
	assert.Equal(t, 3, result.Breakdown[models.Buy])
	assert.Equal(t, 1, result.Breakdown[models.Sell])
	assert.Equal(t, 4, result.TotalAnalysts)
}

func TestMajorityTieBreakIsDeterministic(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"alpha": position("alpha", models.Sell, 0.5),
		"beta":  position("beta", models.Buy, 0.9),
		"gamma": position("gamma", models.Sell, 0.5),
		"delta": position("delta", models.Buy, 0.9),
	}
	for i := 0; i < 20; i++ {
		result := NewBuilder(nil, nil).Build(positions, models.MethodMajority)
		// "alpha" sorts first, so SELL wins the 2-2 tie every time.
		assert.Equal(t, models.Sell, result.Recommendation)
	}
}

func TestWeightedScoresSumToOne(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0.9),
		"b": position("b", models.Sell, 0.6),
		"c": position("c", models.Hold, 0.4),
	}
	weights := map[string]float64{"a": 0.5, "b": 0.3, "c": 0.2}
	result := NewBuilder(weights, nil).Build(positions, models.MethodWeighted)

	total := 0.0
	for _, s := range result.WeightedScores {
		total += s
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, models.Buy, result.Recommendation)

	// Confidence is the weight-normalized mean: 0.5*0.9 + 0.3*0.6 + 0.2*0.4.
	assert.InDelta(t, 0.71, result.Confidence, 1e-9)
}

func TestWeightedUniformDefaultMatchesExplicitUniform(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0.8),
		"b": position("b", models.Short, 0.7),
	}
	implicit := NewBuilder(nil, nil).Build(positions, models.MethodWeighted)
	explicit := NewBuilder(map[string]float64{"a": 0.5, "b": 0.5}, nil).Build(positions, models.MethodWeighted)

	assert.Equal(t, explicit.Recommendation, implicit.Recommendation)
	assert.InDelta(t, explicit.Confidence, implicit.Confidence, 1e-9)
	for _, rec := range models.Recommendations {
		assert.InDelta(t, explicit.WeightedScores[rec], implicit.WeightedScores[rec], 1e-9)
	}
}

func TestWeightedAllZeroConfidenceFallsBackToWeightShares(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0),
		"b": position("b", models.Sell, 0),
	}
	result := NewBuilder(nil, nil).Build(positions, models.MethodWeighted)

	assert.InDelta(t, 0.5, result.WeightedScores[models.Buy], 1e-9)
	assert.InDelta(t, 0.5, result.WeightedScores[models.Sell], 1e-9)
	assert.Zero(t, result.Confidence)
}

func TestConfidenceMethodWeighsByConfidence(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0.9),
		"b": position("b", models.Sell, 0.3),
		"c": position("c", models.Sell, 0.3),
	}
	result := NewBuilder(nil, nil).Build(positions, models.MethodConfidence)

	// BUY carries 0.9/1.5 = 0.6 of the vote against SELL's 0.4.
	assert.Equal(t, models.Buy, result.Recommendation)
	assert.InDelta(t, 0.6, result.WeightedScores[models.Buy], 1e-9)
	assert.InDelta(t, 0.4, result.WeightedScores[models.Sell], 1e-9)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
	// Consensus level still counts heads: 2 of 3 back SELL.
	assert.InDelta(t, 2.0/3.0, result.ConsensusLevel, 1e-9)
}

func TestConfidenceMethodZeroTotalUsesUniformWeights(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Hold, 0),
		"b": position("b", models.Hold, 0),
	}
	result := NewBuilder(nil, nil).Build(positions, models.MethodConfidence)

	assert.Equal(t, models.Hold, result.Recommendation)
	assert.InDelta(t, 1.0, result.WeightedScores[models.Hold], 1e-9)
	assert.Zero(t, result.Confidence)
}

func TestEmptyPositionsYieldHoldDefaults(t *testing.T) {
	for _, method := range []models.ConsensusMethod{models.MethodWeighted, models.MethodMajority, models.MethodConfidence} {
		result := NewBuilder(nil, nil).Build(nil, method)
		require.NotNil(t, result)
		assert.Equal(t, models.Hold, result.Recommendation)
		assert.Zero(t, result.Confidence)
		assert.Zero(t, result.ConsensusLevel)
		assert.Zero(t, result.TotalAnalysts)
		assert.Len(t, result.Breakdown, 0)
	}
}

func TestUnknownMethodFallsBackToWeighted(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0.8),
	}
	result := NewBuilder(nil, nil).Build(positions, models.ConsensusMethod("plurality"))
	assert.Equal(t, models.MethodWeighted, result.Method)
	assert.Equal(t, models.Buy, result.Recommendation)
}

func TestAggregationIsRolePrefixedAndOrdered(t *testing.T) {
	positions := map[string]models.AgentPosition{
		"b": position("b", models.Buy, 0.8),
		"a": position("a", models.Buy, 0.9),
	}
	result := NewBuilder(nil, nil).Build(positions, models.MethodMajority)

	require.Len(t, result.KeyPoints, 2)
	assert.Equal(t, "[a role] a point", result.KeyPoints[0])
	assert.Equal(t, "[b role] b point", result.KeyPoints[1])
	require.Len(t, result.Risks, 2)
	assert.Equal(t, "[a role] a risk", result.Risks[0])
	require.Len(t, result.Reasoning, 2)
	assert.Equal(t, "**a role:** a reasoning", result.Reasoning[0])
}

func TestLevel(t *testing.T) {
	assert.Zero(t, Level(nil))
	positions := map[string]models.AgentPosition{
		"a": position("a", models.Buy, 0.9),
		"b": position("b", models.Buy, 0.8),
		"c": position("c", models.Sell, 0.7),
	}
	assert.InDelta(t, 2.0/3.0, Level(positions), 1e-9)
}
