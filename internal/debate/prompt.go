package debate

import (
	"fmt"
	"strings"

	"github.com/dyike/QuorumGo/internal/models"
)

const maxReasoningExcerpt = 200

// BuildDebatePrompt renders the round context every analyst is re-invoked
// with: all current positions, the detected disagreements, and the standing
// instruction to cross-validate sentiment claims against quantitative
// evidence. Positions appear in sorted analyst-ID order so the same round
// state always renders the same prompt.
func BuildDebatePrompt(roundNumber int, positions map[string]models.AgentPosition, disagreements []Disagreement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Multi-Agent Debate - Round %d\n\n## Current Positions\n\n", roundNumber)

	for _, id := range sortedAnalystIDs(positions) {
		p := positions[id]
		fmt.Fprintf(&b, "### %s (%s)\n", p.Role, p.AnalystID)
		fmt.Fprintf(&b, "- **Recommendation:** %s\n", p.Recommendation)
		fmt.Fprintf(&b, "- **Confidence:** %.2f\n", p.Confidence)
		fmt.Fprintf(&b, "- **Key Reasoning:** %s\n", excerpt(p.Reasoning, maxReasoningExcerpt))
		if len(p.KeyPoints) > 0 {
			b.WriteString("- **Main Points:**\n")
			for i, point := range p.KeyPoints {
				if i == 3 {
					break
				}
				fmt.Fprintf(&b, "  - %s\n", point)
			}
		}
		b.WriteString("\n")
	}

	if len(disagreements) > 0 {
		b.WriteString("## Key Disagreements\n")
		for _, d := range disagreements {
			fmt.Fprintf(&b, "- %s\n", d.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString(`## Debate Instructions

Each analyst should:
1. Review the other analysts' positions and identify points of agreement and disagreement
2. Defend your position with specific evidence
3. Challenge weak arguments with counterpoints
4. Be open to adjusting your recommendation if compelling evidence is presented
5. Focus on causal relationships, not just correlations

**CRITICAL: Cross-Validation Requirement**
Every analyst MUST reconcile its stated view against the other analysts' declared positions. Sentiment-driven claims must be checked against positions backed by quantitative evidence:
- Does news optimism/pessimism match ACTUAL financial performance?
- Red flag: high sentiment + weak fundamentals = HYPE (discount sentiment)
- Red flag: low sentiment + strong fundamentals = FUD (contrarian opportunity)
Analysts with hard data must challenge sentiment if it is detached from reality.

Respond with your updated recommendation, updated confidence, specific rebuttals, new supporting evidence, and any concessions you are willing to make.

Format as JSON:
{
    "recommendation": "BUY|SELL|SHORT|HOLD",
    "confidence": 0.0,
    "rebuttals": ["rebuttal 1", "rebuttal 2"],
    "supporting_evidence": ["evidence 1", "evidence 2"],
    "concessions": ["concession 1"]
}
`)

	return b.String()
}

func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
