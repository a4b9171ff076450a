package models

import "time"

// Signal is the externally consumed decision class, the base recommendation
// escalated by confidence and consensus strength.
type Signal string

const (
	StrongBuy   Signal = "STRONG_BUY"
	SignalBuy   Signal = "BUY"
	SignalHold  Signal = "HOLD"
	SignalSell  Signal = "SELL"
	StrongSell  Signal = "STRONG_SELL"
	SignalShort Signal = "SHORT"
	StrongShort Signal = "STRONG_SHORT"
)

// TimeHorizon is the suggested holding period for a signal.
type TimeHorizon string

const (
	ShortTerm  TimeHorizon = "short_term"
	MediumTerm TimeHorizon = "medium_term"
	LongTerm   TimeHorizon = "long_term"
)

// TradingSignal is the terminal artifact of one deliberation. Immutable once
// created; persistence and export consume it as-is.
type TradingSignal struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Signal         Signal  `json:"signal"`
	Confidence     float64 `json:"confidence"`
	ConsensusLevel float64 `json:"consensus_level"`

	Breakdown      map[Recommendation]int     `json:"agent_breakdown"`
	WeightedScores map[Recommendation]float64 `json:"weighted_scores"`

	KeyFactors []string `json:"key_factors"`
	Risks      []string `json:"risks"`
	Summary    string   `json:"agent_consensus"`

	// Only set when a current price was supplied.
	PriceTarget *float64    `json:"price_target,omitempty"`
	StopLoss    *float64    `json:"stop_loss,omitempty"`
	TimeHorizon TimeHorizon `json:"time_horizon"`

	TotalAnalysts int             `json:"total_analysts"`
	DebateRounds  int             `json:"debate_rounds"`
	Methodology   ConsensusMethod `json:"methodology"`

	// Provenance back to the deliberation that produced the signal.
	Consensus *ConsensusResult `json:"consensus"`
	Session   *DebateSession   `json:"session,omitempty"`
}
