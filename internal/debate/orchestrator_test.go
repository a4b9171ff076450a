package debate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/QuorumGo/internal/analysts"
	"github.com/dyike/QuorumGo/internal/models"
)

// stubAnalyst scripts an opening position and a sequence of debate updates.
type stubAnalyst struct {
	name       string
	opening    *models.AgentPosition
	openingErr error
	updates    []*models.PartialUpdate
	debateErr  error
	calls      int
}

func (s *stubAnalyst) Name() string { return s.name }
func (s *stubAnalyst) Role() string { return s.name + " role" }

func (s *stubAnalyst) Analyze(_ context.Context, _ *models.MarketContext) (*models.AgentPosition, error) {
	if s.openingErr != nil {
		return nil, s.openingErr
	}
	return s.opening, nil
}

func (s *stubAnalyst) Debate(_ context.Context, _ string) (*models.PartialUpdate, error) {
	s.calls++
	if s.debateErr != nil {
		return nil, s.debateErr
	}
	update := s.updates[0]
	if len(s.updates) > 1 {
		s.updates = s.updates[1:]
	}
	return update, nil
}

func opening(name string, rec models.Recommendation, conf float64) *models.AgentPosition {
	return &models.AgentPosition{
		AnalystID:      name,
		Role:           name + " role",
		Recommendation: rec,
		Confidence:     conf,
		Reasoning:      name + " view",
	}
}

func newTestOrchestrator(roster []analysts.Analyst, maxRounds int) *Orchestrator {
	return NewOrchestrator(roster, OrchestratorOptions{
		MaxRounds:      maxRounds,
		AnalystTimeout: time.Second,
		SessionTimeout: 10 * time.Second,
	}, nil)
}

func TestRunSessionConvergesImmediatelyWhenAligned(t *testing.T) {
	roster := []analysts.Analyst{
		&stubAnalyst{name: "a", opening: opening("a", models.Buy, 0.8)},
		&stubAnalyst{name: "b", opening: opening("b", models.Buy, 0.7)},
	}
	session, err := newTestOrchestrator(roster, 3).RunSession(context.Background(), &models.MarketContext{Symbol: "AAPL"})

	require.NoError(t, err)
	assert.Equal(t, models.Converged, session.TerminalReason)
	assert.Equal(t, "AAPL", session.Symbol)
	assert.NotEmpty(t, session.SessionID)
	// Aligned analysts never debate: only the opening round exists.
	require.Equal(t, 1, session.TotalRounds())
	assert.Equal(t, 0, session.Rounds[0].RoundNumber)
	assert.InDelta(t, 1.0, session.Rounds[0].ConsensusLevel, 1e-9)
	for _, a := range roster {
		assert.Zero(t, a.(*stubAnalyst).calls)
	}
}

func TestRunSessionConvergesAfterOneRound(t *testing.T) {
	holdout := &stubAnalyst{
		name:    "b",
		opening: opening("b", models.Sell, 0.6),
		updates: []*models.PartialUpdate{{
			Recommendation:     models.Buy,
			Confidence:         0.7,
			Concessions:        []string{"momentum case is stronger than I credited"},
			SupportingEvidence: []string{"revised after cross-examination"},
		}},
	}
	roster := []analysts.Analyst{
		&stubAnalyst{
			name:    "a",
			opening: opening("a", models.Buy, 0.8),
			updates: []*models.PartialUpdate{{Recommendation: models.Buy, Confidence: 0.8}},
		},
		holdout,
	}
	session, err := newTestOrchestrator(roster, 3).RunSession(context.Background(), &models.MarketContext{Symbol: "NVDA"})

	require.NoError(t, err)
	assert.Equal(t, models.Converged, session.TerminalReason)
	require.Equal(t, 2, session.TotalRounds())

	round := session.Rounds[1]
	assert.Equal(t, 1, round.RoundNumber)
	assert.InDelta(t, 1.0, round.ConsensusLevel, 1e-9)
	require.Len(t, round.Exchanges, 2)
	// Exchanges come back in analyst-ID order regardless of completion order.
	assert.Equal(t, "a", round.Exchanges[0].AnalystID)
	assert.False(t, round.Exchanges[0].Changed)
	assert.Equal(t, "b", round.Exchanges[1].AnalystID)
	assert.True(t, round.Exchanges[1].Changed)
	assert.Equal(t, models.Sell, round.Exchanges[1].Previous.Recommendation)
	assert.Equal(t, models.Buy, round.Exchanges[1].Updated.Recommendation)

	final := session.FinalPositions()
	assert.Equal(t, models.Buy, final["b"].Recommendation)
	assert.Contains(t, final["b"].KeyPoints, "revised after cross-examination")
}

func TestRunSessionCarriesForwardOnDebateFailure(t *testing.T) {
	flaky := &stubAnalyst{
		name:      "b",
		opening:   opening("b", models.Short, 0.9),
		debateErr: errors.New("model backend unavailable"),
	}
	roster := []analysts.Analyst{
		&stubAnalyst{
			name:    "a",
			opening: opening("a", models.Buy, 0.8),
			updates: []*models.PartialUpdate{{Recommendation: models.Buy, Confidence: 0.8}},
		},
		flaky,
	}
	session, err := newTestOrchestrator(roster, 2).RunSession(context.Background(), &models.MarketContext{Symbol: "TSLA"})

	require.NoError(t, err)
	assert.Equal(t, models.RoundBudgetExhausted, session.TerminalReason)
	require.Equal(t, 3, session.TotalRounds())

	for _, round := range session.Rounds[1:] {
		require.Len(t, round.Positions, 2, "position set must never shrink")
		var carried *models.DebateExchange
		for i := range round.Exchanges {
			if round.Exchanges[i].AnalystID == "b" {
				carried = &round.Exchanges[i]
			}
		}
		require.NotNil(t, carried)
		assert.True(t, carried.CarriedForward)
		assert.False(t, carried.Changed)
		assert.Equal(t, models.Short, carried.Updated.Recommendation)
	}
	assert.Equal(t, models.Short, session.FinalPositions()["b"].Recommendation)
}

func TestRunSessionNoResponses(t *testing.T) {
	roster := []analysts.Analyst{
		&stubAnalyst{name: "a", openingErr: errors.New("timeout")},
		&stubAnalyst{name: "b", openingErr: errors.New("timeout")},
	}
	session, err := newTestOrchestrator(roster, 3).RunSession(context.Background(), &models.MarketContext{Symbol: "MSFT"})

	require.ErrorIs(t, err, ErrNoResponses)
	require.NotNil(t, session)
	assert.Equal(t, models.NoResponses, session.TerminalReason)
	assert.Zero(t, session.TotalRounds())
	assert.Nil(t, session.FinalPositions())
}

func TestRunSessionSkipsAnalystsWithoutOpeningPosition(t *testing.T) {
	silent := &stubAnalyst{name: "c", openingErr: errors.New("unreachable")}
	roster := []analysts.Analyst{
		&stubAnalyst{
			name:    "a",
			opening: opening("a", models.Buy, 0.9),
			updates: []*models.PartialUpdate{{Recommendation: models.Buy, Confidence: 0.9}},
		},
		&stubAnalyst{
			name:    "b",
			opening: opening("b", models.Sell, 0.4),
			updates: []*models.PartialUpdate{{Recommendation: models.Sell, Confidence: 0.4}},
		},
		silent,
	}
	session, err := newTestOrchestrator(roster, 1).RunSession(context.Background(), &models.MarketContext{Symbol: "AMD"})

	require.NoError(t, err)
	assert.Equal(t, models.RoundBudgetExhausted, session.TerminalReason)
	// The analyst with no opening position is never invited back.
	assert.Zero(t, silent.calls)
	require.Equal(t, 2, session.TotalRounds())
	assert.Len(t, session.Rounds[1].Positions, 2)
}

func TestRunSessionStopsOnExpiredContext(t *testing.T) {
	roster := []analysts.Analyst{
		&stubAnalyst{name: "a", opening: opening("a", models.Buy, 0.9)},
		&stubAnalyst{name: "b", opening: opening("b", models.Sell, 0.9)},
	}
	o := NewOrchestrator(roster, OrchestratorOptions{
		MaxRounds:      3,
		AnalystTimeout: time.Second,
		SessionTimeout: time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := o.RunSession(ctx, &models.MarketContext{Symbol: "GOOG"})
	require.NoError(t, err)
	// Disagreement is live but the deadline is gone: close out instead of
	// starting another round.
	assert.Equal(t, models.RoundBudgetExhausted, session.TerminalReason)
	require.Equal(t, 1, session.TotalRounds())
	for _, a := range roster {
		assert.Zero(t, a.(*stubAnalyst).calls)
	}
}
