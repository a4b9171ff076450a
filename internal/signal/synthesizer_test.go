package signal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/QuorumGo/internal/models"
)

func consensusOf(rec models.Recommendation, confidence, level float64) *models.ConsensusResult {
	return &models.ConsensusResult{
		Recommendation: rec,
		Confidence:     confidence,
		ConsensusLevel: level,
		Breakdown:      map[models.Recommendation]int{rec: 3, models.Hold: 1},
		WeightedScores: map[models.Recommendation]float64{rec: 0.8, models.Hold: 0.2},
		Method:         models.MethodWeighted,
		TotalAnalysts:  4,
		KeyPoints:      []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"},
		Risks:          []string{"r1", "r2"},
	}
}

func marketCtx(price float64) *models.MarketContext {
	return &models.MarketContext{Symbol: "AAPL", CompanyName: "Apple Inc.", CurrentPrice: &price}
}

func TestClassifyEscalation(t *testing.T) {
	s := NewSynthesizer(SynthesizerOptions{}, nil)
	cases := []struct {
		rec        models.Recommendation
		confidence float64
		level      float64
		want       models.Signal
	}{
		{models.Buy, 0.8, 0.75, models.StrongBuy},
		{models.Buy, 0.79, 0.75, models.SignalBuy},
		{models.Buy, 0.8, 0.74, models.SignalBuy},
		{models.Sell, 0.9, 0.8, models.StrongSell},
		{models.Sell, 0.5, 1.0, models.SignalSell},
		{models.Short, 0.85, 0.75, models.StrongShort},
		{models.Short, 0.6, 0.6, models.SignalShort},
		{models.Hold, 1.0, 1.0, models.SignalHold},
	}
	for _, tc := range cases {
		got := s.classify(consensusOf(tc.rec, tc.confidence, tc.level))
		assert.Equal(t, tc.want, got, "%s conf=%.2f level=%.2f", tc.rec, tc.confidence, tc.level)
	}
}

func TestPriceLevels(t *testing.T) {
	cases := []struct {
		rec        models.Recommendation
		confidence float64
		target     float64
		stop       float64
	}{
		{models.Buy, 0.7, 112.0, 95.0},
		{models.Sell, 0.7, 88.0, 105.0},
		{models.Short, 0.8, 78.0, 105.6},
		{models.Hold, 0.5, 100.0, 90.0},
	}
	for _, tc := range cases {
		target, stop := priceLevels(tc.rec, 100.0, tc.confidence)
		assert.InDelta(t, tc.target, target, 1e-9, "%s target", tc.rec)
		assert.InDelta(t, tc.stop, stop, 1e-9, "%s stop", tc.rec)
	}
}

func TestHorizonFor(t *testing.T) {
	assert.Equal(t, models.LongTerm, horizonFor(0.8))
	assert.Equal(t, models.MediumTerm, horizonFor(0.79))
	assert.Equal(t, models.MediumTerm, horizonFor(0.6))
	assert.Equal(t, models.ShortTerm, horizonFor(0.59))
}

func TestSynthesizeWithPrice(t *testing.T) {
	s := NewSynthesizer(SynthesizerOptions{}, nil)
	session := &models.DebateSession{
		SessionID: "sess-1",
		Symbol:    "AAPL",
		Rounds: []*models.DebateRound{
			{RoundNumber: 0}, {RoundNumber: 1},
		},
		TerminalReason: models.Converged,
	}
	sig := s.Synthesize(marketCtx(100), consensusOf(models.Buy, 0.7, 0.75), session)

	assert.Equal(t, "AAPL", sig.Symbol)
	assert.Equal(t, "Apple Inc.", sig.CompanyName)
	assert.Equal(t, models.SignalBuy, sig.Signal)
	require.NotNil(t, sig.PriceTarget)
	require.NotNil(t, sig.StopLoss)
	assert.InDelta(t, 112.0, *sig.PriceTarget, 1e-9)
	assert.InDelta(t, 95.0, *sig.StopLoss, 1e-9)
	assert.Equal(t, models.MediumTerm, sig.TimeHorizon)
	assert.Equal(t, 2, sig.DebateRounds)
	assert.Equal(t, 4, sig.TotalAnalysts)
	// Factor list is capped at the configured top count.
	assert.Len(t, sig.KeyFactors, 5)
	assert.Equal(t, []string{"r1", "r2"}, sig.Risks)
	assert.Contains(t, sig.Summary, "3 of 4 analysts support BUY")
	assert.Same(t, session, sig.Session)
}

func TestSynthesizeWithoutPrice(t *testing.T) {
	s := NewSynthesizer(SynthesizerOptions{}, nil)
	mc := &models.MarketContext{Symbol: "AAPL"}
	sig := s.Synthesize(mc, consensusOf(models.Buy, 0.9, 0.9), nil)

	assert.Equal(t, models.StrongBuy, sig.Signal)
	assert.Nil(t, sig.PriceTarget)
	assert.Nil(t, sig.StopLoss)
	assert.Zero(t, sig.DebateRounds)
}

func TestFormatMarkdown(t *testing.T) {
	s := NewSynthesizer(SynthesizerOptions{}, nil)
	sig := s.Synthesize(marketCtx(100), consensusOf(models.Buy, 0.7, 0.75), &models.DebateSession{
		SessionID: "sess-2",
		Rounds: []*models.DebateRound{{
			RoundNumber: 0,
			Positions: map[string]models.AgentPosition{
				"tech": {AnalystID: "tech", Role: "Technical", Recommendation: models.Buy, Confidence: 0.7},
			},
			ConsensusLevel: 1.0,
		}},
		TerminalReason: models.Converged,
	})
	report := FormatMarkdown(sig)

	assert.True(t, strings.HasPrefix(report, "# Trading Signal: AAPL"))
	assert.Contains(t, report, "**Signal:** BUY")
	assert.Contains(t, report, "**Price Target:** 112.00")
	assert.Contains(t, report, "**Stop Loss:** 95.00")
	assert.Contains(t, report, "## Key Factors")
	assert.Contains(t, report, "### Round 0 (consensus 100%)")
	assert.Contains(t, report, "- **tech** (Technical): BUY at 70% confidence")
	assert.Contains(t, report, "CONVERGED")
}
