package models

// Recommendation is an analyst's directional call on a ticker.
type Recommendation string

const (
	Buy   Recommendation = "BUY"
	Sell  Recommendation = "SELL"
	Short Recommendation = "SHORT"
	Hold  Recommendation = "HOLD"
)

// Recommendations lists the four classes in canonical order. Score maps are
// iterated in this order so that aggregation results are reproducible.
var Recommendations = []Recommendation{Buy, Sell, Short, Hold}

// Valid reports whether r is one of the four known classes.
func (r Recommendation) Valid() bool {
	switch r {
	case Buy, Sell, Short, Hold:
		return true
	}
	return false
}

// AgentPosition is one analyst's stated view at a specific round. A position
// is immutable once recorded into a round; a later round produces a new
// position for the same analyst.
type AgentPosition struct {
	AnalystID      string         `json:"analyst_id"`
	Role           string         `json:"role"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
	KeyPoints      []string       `json:"key_points"`
	Risks          []string       `json:"risks"`
}

// PartialUpdate is what an analyst returns from a debate round: an updated
// call plus the debate contributions that justify it.
type PartialUpdate struct {
	Recommendation     Recommendation `json:"recommendation"`
	Confidence         float64        `json:"confidence"`
	Rebuttals          []string       `json:"rebuttals"`
	SupportingEvidence []string       `json:"supporting_evidence"`
	Concessions        []string       `json:"concessions"`
}
