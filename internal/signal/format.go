package signal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dyike/QuorumGo/internal/models"
)

// FormatMarkdown renders a signal as a self-contained markdown report, the
// format the export path writes to disk.
func FormatMarkdown(sig *models.TradingSignal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Trading Signal: %s\n\n", sig.Symbol)
	if sig.CompanyName != "" {
		fmt.Fprintf(&b, "**Company:** %s\n\n", sig.CompanyName)
	}
	fmt.Fprintf(&b, "**Generated:** %s\n\n", sig.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Decision\n\n")
	fmt.Fprintf(&b, "- **Signal:** %s\n", sig.Signal)
	fmt.Fprintf(&b, "- **Confidence:** %.0f%%\n", sig.Confidence*100)
	fmt.Fprintf(&b, "- **Consensus:** %.0f%%\n", sig.ConsensusLevel*100)
	fmt.Fprintf(&b, "- **Time Horizon:** %s\n", strings.ReplaceAll(string(sig.TimeHorizon), "_", " "))
	if sig.PriceTarget != nil {
		fmt.Fprintf(&b, "- **Price Target:** %.2f\n", *sig.PriceTarget)
	}
	if sig.StopLoss != nil {
		fmt.Fprintf(&b, "- **Stop Loss:** %.2f\n", *sig.StopLoss)
	}
	fmt.Fprintf(&b, "\n%s\n\n", sig.Summary)

	fmt.Fprintf(&b, "## Analyst Breakdown\n\n")
	for _, rec := range models.Recommendations {
		if n := sig.Breakdown[rec]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", rec, n)
		}
	}
	b.WriteString("\n")

	if len(sig.KeyFactors) > 0 {
		fmt.Fprintf(&b, "## Key Factors\n\n")
		for _, factor := range sig.KeyFactors {
			fmt.Fprintf(&b, "- %s\n", factor)
		}
		b.WriteString("\n")
	}
	if len(sig.Risks) > 0 {
		fmt.Fprintf(&b, "## Risks\n\n")
		for _, risk := range sig.Risks {
			fmt.Fprintf(&b, "- %s\n", risk)
		}
		b.WriteString("\n")
	}

	if sig.Session != nil {
		fmt.Fprintf(&b, "## Deliberation\n\n")
		fmt.Fprintf(&b, "- **Session:** %s\n", sig.Session.SessionID)
		fmt.Fprintf(&b, "- **Rounds:** %d\n", sig.DebateRounds)
		fmt.Fprintf(&b, "- **Outcome:** %s\n", sig.Session.TerminalReason)
		fmt.Fprintf(&b, "- **Method:** %s\n\n", sig.Methodology)
		for _, round := range sig.Session.Rounds {
			fmt.Fprintf(&b, "### Round %d (consensus %.0f%%)\n\n", round.RoundNumber, round.ConsensusLevel*100)
			for _, id := range sortedPositionIDs(round.Positions) {
				p := round.Positions[id]
				fmt.Fprintf(&b, "- **%s** (%s): %s at %.0f%% confidence\n", p.AnalystID, p.Role, p.Recommendation, p.Confidence*100)
			}
			for _, ex := range round.Exchanges {
				if ex.CarriedForward {
					fmt.Fprintf(&b, "  - %s carried its position forward\n", ex.AnalystID)
				} else if ex.Changed {
					fmt.Fprintf(&b, "  - %s moved from %s (%.0f%%) to %s (%.0f%%)\n",
						ex.AnalystID,
						ex.Previous.Recommendation, ex.Previous.Confidence*100,
						ex.Updated.Recommendation, ex.Updated.Confidence*100,
					)
				}
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n\n")
	b.WriteString("*Generated by QuorumGo multi-agent deliberation. Not financial advice.*\n")
	return b.String()
}

func sortedPositionIDs(positions map[string]models.AgentPosition) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
