package debate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dyike/QuorumGo/internal/models"
)

// DisagreementType classifies a detected conflict between positions.
type DisagreementType string

const (
	RecommendationConflict DisagreementType = "recommendation_conflict"
	ConfidenceDivergence   DisagreementType = "confidence_divergence"
)

// Disagreement describes one conflict found in a position set. Which side
// lists are populated depends on the type.
type Disagreement struct {
	Type        DisagreementType `json:"type"`
	Description string           `json:"description"`

	BuyAnalysts   []string `json:"buy_analysts,omitempty"`
	SellAnalysts  []string `json:"sell_analysts,omitempty"`
	ShortAnalysts []string `json:"short_analysts,omitempty"`

	HighConfidence []string `json:"high_confidence,omitempty"`
	LowConfidence  []string `json:"low_confidence,omitempty"`
}

// Detector inspects a position set for conflicts. Positions are always
// walked in sorted analyst-ID order so repeated runs over the same set give
// identical output regardless of how the map was populated.
type Detector struct {
	// A confidence spread above Spread triggers a divergence descriptor;
	// High and Low bound the analyst lists it reports.
	Spread float64
	High   float64
	Low    float64
}

// NewDetector returns a detector with the given spread threshold and the
// stock 0.7/0.4 high/low bounds. A non-positive spread selects the 0.4
// default.
func NewDetector(spread float64) *Detector {
	if spread <= 0 {
		spread = 0.4
	}
	return &Detector{Spread: spread, High: 0.7, Low: 0.4}
}

// Detect returns the ordered conflict list for the given positions. An empty
// result is the convergence signal the orchestrator stops on.
func (d *Detector) Detect(positions map[string]models.AgentPosition) []Disagreement {
	if len(positions) == 0 {
		return nil
	}

	ids := sortedAnalystIDs(positions)
	disagreements := make([]Disagreement, 0, 2)

	var buy, sell, short []string
	for _, id := range ids {
		switch positions[id].Recommendation {
		case models.Buy:
			buy = append(buy, id)
		case models.Sell:
			sell = append(sell, id)
		case models.Short:
			short = append(short, id)
		}
	}

	if len(buy) > 0 && len(sell)+len(short) > 0 {
		disagreements = append(disagreements, Disagreement{
			Type:          RecommendationConflict,
			Description:   conflictDescription(buy, sell, short),
			BuyAnalysts:   buy,
			SellAnalysts:  sell,
			ShortAnalysts: short,
		})
	}

	minConf, maxConf := positions[ids[0]].Confidence, positions[ids[0]].Confidence
	for _, id := range ids[1:] {
		c := positions[id].Confidence
		if c < minConf {
			minConf = c
		}
		if c > maxConf {
			maxConf = c
		}
	}

	if spread := maxConf - minConf; spread > d.Spread {
		var high, low []string
		for _, id := range ids {
			switch c := positions[id].Confidence; {
			case c > d.High:
				high = append(high, id)
			case c < d.Low:
				low = append(low, id)
			}
		}
		disagreements = append(disagreements, Disagreement{
			Type:           ConfidenceDivergence,
			Description:    fmt.Sprintf("High confidence spread: %.2f", spread),
			HighConfidence: high,
			LowConfidence:  low,
		})
	}

	return disagreements
}

func conflictDescription(buy, sell, short []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d analysts recommend BUY while ", len(buy))
	switch {
	case len(sell) > 0 && len(short) > 0:
		fmt.Fprintf(&b, "%d recommend SELL and %d recommend SHORT", len(sell), len(short))
	case len(sell) > 0:
		fmt.Fprintf(&b, "%d recommend SELL", len(sell))
	default:
		fmt.Fprintf(&b, "%d recommend SHORT", len(short))
	}
	return b.String()
}

func sortedAnalystIDs(positions map[string]models.AgentPosition) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
