package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/QuorumGo/internal/models"
)

func pos(rec models.Recommendation, conf float64) models.AgentPosition {
	return models.AgentPosition{Recommendation: rec, Confidence: conf}
}

func TestDetectEmptyAndAligned(t *testing.T) {
	d := NewDetector(0)
	assert.Empty(t, d.Detect(nil))
	assert.Empty(t, d.Detect(map[string]models.AgentPosition{
		"a": pos(models.Buy, 0.8),
		"b": pos(models.Buy, 0.7),
	}))
}

func TestDetectRecommendationConflict(t *testing.T) {
	d := NewDetector(0)
	got := d.Detect(map[string]models.AgentPosition{
		"a": pos(models.Buy, 0.7),
		"b": pos(models.Sell, 0.6),
		"c": pos(models.Short, 0.65),
	})
	require.Len(t, got, 1)
	assert.Equal(t, RecommendationConflict, got[0].Type)
	assert.Equal(t, "1 analysts recommend BUY while 1 recommend SELL and 1 recommend SHORT", got[0].Description)
	assert.Equal(t, []string{"a"}, got[0].BuyAnalysts)
	assert.Equal(t, []string{"b"}, got[0].SellAnalysts)
	assert.Equal(t, []string{"c"}, got[0].ShortAnalysts)
}

func TestDetectHoldNeverConflicts(t *testing.T) {
	d := NewDetector(0)
	got := d.Detect(map[string]models.AgentPosition{
		"a": pos(models.Buy, 0.7),
		"b": pos(models.Hold, 0.6),
	})
	assert.Empty(t, got)
}

func TestDetectConfidenceDivergence(t *testing.T) {
	d := NewDetector(0.4)
	got := d.Detect(map[string]models.AgentPosition{
		"a": pos(models.Buy, 0.9),
		"b": pos(models.Buy, 0.3),
		"c": pos(models.Buy, 0.6),
	})
	require.Len(t, got, 1)
	assert.Equal(t, ConfidenceDivergence, got[0].Type)
	assert.Equal(t, "High confidence spread: 0.60", got[0].Description)
	assert.Equal(t, []string{"a"}, got[0].HighConfidence)
	assert.Equal(t, []string{"b"}, got[0].LowConfidence)
}

func TestDetectSpreadAtThresholdIsNotDivergence(t *testing.T) {
	d := NewDetector(0.4)
	got := d.Detect(map[string]models.AgentPosition{
		"a": pos(models.Buy, 0.8),
		"b": pos(models.Buy, 0.4),
	})
	assert.Empty(t, got)
}

func TestDetectBothTypesTogether(t *testing.T) {
	d := NewDetector(0.4)
	got := d.Detect(map[string]models.AgentPosition{
		"a": pos(models.Buy, 0.95),
		"b": pos(models.Sell, 0.2),
	})
	require.Len(t, got, 2)
	assert.Equal(t, RecommendationConflict, got[0].Type)
	assert.Equal(t, ConfidenceDivergence, got[1].Type)
}

func TestDetectIsDeterministic(t *testing.T) {
	d := NewDetector(0)
	positions := map[string]models.AgentPosition{
		"delta": pos(models.Buy, 0.8),
		"alpha": pos(models.Buy, 0.75),
		"echo":  pos(models.Sell, 0.7),
		"bravo": pos(models.Sell, 0.72),
	}
	first := d.Detect(positions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Detect(positions))
	}
	require.NotEmpty(t, first)
	assert.Equal(t, []string{"alpha", "delta"}, first[0].BuyAnalysts)
	assert.Equal(t, []string{"bravo", "echo"}, first[0].SellAnalysts)
}
