package models

// ConsensusMethod selects the aggregation algorithm used to collapse the
// final round's positions into one decision.
type ConsensusMethod string

const (
	MethodWeighted   ConsensusMethod = "weighted"
	MethodMajority   ConsensusMethod = "majority"
	MethodConfidence ConsensusMethod = "confidence"
)

// ConsensusResult is the outcome of aggregating one position set. Computed
// once from the final round; read-only afterwards.
type ConsensusResult struct {
	Recommendation Recommendation             `json:"recommendation"`
	Confidence     float64                    `json:"confidence"`
	ConsensusLevel float64                    `json:"consensus_level"`
	Breakdown      map[Recommendation]int     `json:"breakdown"`
	WeightedScores map[Recommendation]float64 `json:"weighted_scores"`
	Method         ConsensusMethod            `json:"method"`
	TotalAnalysts  int                        `json:"total_analysts"`

	// Aggregated supporting material, in the order analysts reported it.
	KeyPoints []string `json:"key_points"`
	Risks     []string `json:"risks"`
	Reasoning []string `json:"agent_reasoning"`
}
