package models

import "time"

// TerminalReason records why a debate session ended.
type TerminalReason string

const (
	Converged            TerminalReason = "CONVERGED"
	RoundBudgetExhausted TerminalReason = "ROUND_BUDGET_EXHAUSTED"
	NoResponses          TerminalReason = "NO_RESPONSES"
)

// PositionDelta captures an analyst's call before and after one round.
type PositionDelta struct {
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
}

// DebateExchange is one analyst's contribution to a debate round.
type DebateExchange struct {
	AnalystID          string        `json:"analyst_id"`
	Previous           PositionDelta `json:"previous_position"`
	Updated            PositionDelta `json:"new_position"`
	Changed            bool          `json:"changed"`
	CarriedForward     bool          `json:"carried_forward"`
	Rebuttals          []string      `json:"rebuttals"`
	SupportingEvidence []string      `json:"supporting_evidence"`
	Concessions        []string      `json:"concessions"`
}

// DebateRound is one closed cycle of the debate. Round 0 is the initial
// independent analysis and carries no exchanges. Immutable once closed.
type DebateRound struct {
	RoundNumber    int                      `json:"round_number"`
	Positions      map[string]AgentPosition `json:"positions"`
	ConsensusLevel float64                  `json:"consensus_level"`
	Exchanges      []DebateExchange         `json:"exchanges,omitempty"`
	ClosedAt       time.Time                `json:"closed_at"`
}

// DebateSession owns all rounds of one deliberation.
type DebateSession struct {
	SessionID      string         `json:"session_id"`
	Symbol         string         `json:"symbol"`
	StartedAt      time.Time      `json:"started_at"`
	Rounds         []*DebateRound `json:"rounds"`
	TerminalReason TerminalReason `json:"terminal_reason"`
}

// FinalPositions returns the position set of the last closed round, or nil
// when the session never produced one.
func (s *DebateSession) FinalPositions() map[string]AgentPosition {
	if len(s.Rounds) == 0 {
		return nil
	}
	return s.Rounds[len(s.Rounds)-1].Positions
}

// TotalRounds reports the number of closed rounds, the initial analysis
// included.
func (s *DebateSession) TotalRounds() int {
	return len(s.Rounds)
}
