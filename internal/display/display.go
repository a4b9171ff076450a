package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/QuorumGo/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(80)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	bullishStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	bearishStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	neutralStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// RenderSignal returns the styled terminal view of a trading signal.
func RenderSignal(sig *models.TradingSignal) string {
	var b strings.Builder

	header := fmt.Sprintf("Signal for %s", sig.Symbol)
	if sig.CompanyName != "" {
		header = fmt.Sprintf("Signal for %s (%s)", sig.Symbol, sig.CompanyName)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s\n", sectionStyle.Render("Decision:"), signalStyle(sig.Signal).Render(string(sig.Signal)))
	fmt.Fprintf(&body, "%s %.0f%%   %s %.0f%%   %s %s\n",
		sectionStyle.Render("Confidence:"), sig.Confidence*100,
		sectionStyle.Render("Consensus:"), sig.ConsensusLevel*100,
		sectionStyle.Render("Horizon:"), strings.ReplaceAll(string(sig.TimeHorizon), "_", " "),
	)
	if sig.PriceTarget != nil && sig.StopLoss != nil {
		fmt.Fprintf(&body, "%s %.2f   %s %.2f\n",
			sectionStyle.Render("Target:"), *sig.PriceTarget,
			sectionStyle.Render("Stop:"), *sig.StopLoss,
		)
	}
	fmt.Fprintf(&body, "\n%s\n", sig.Summary)

	body.WriteString("\n" + sectionStyle.Render("Analyst votes") + "\n")
	for _, rec := range models.Recommendations {
		if n := sig.Breakdown[rec]; n > 0 {
			fmt.Fprintf(&body, "  %-6s %s (%d)\n", rec, strings.Repeat("█", n), n)
		}
	}

	if len(sig.KeyFactors) > 0 {
		body.WriteString("\n" + sectionStyle.Render("Key factors") + "\n")
		for _, factor := range sig.KeyFactors {
			fmt.Fprintf(&body, "  • %s\n", factor)
		}
	}
	if len(sig.Risks) > 0 {
		body.WriteString("\n" + sectionStyle.Render("Risks") + "\n")
		for _, risk := range sig.Risks {
			fmt.Fprintf(&body, "  • %s\n", risk)
		}
	}

	b.WriteString(panelStyle.Render(body.String()))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"method=%s  analysts=%d  rounds=%d  generated=%s  -- not financial advice",
		sig.Methodology, sig.TotalAnalysts, sig.DebateRounds,
		sig.GeneratedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n")
	return b.String()
}

// RenderSession returns the styled round-by-round debate transcript summary.
func RenderSession(session *models.DebateSession) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Debate %s on %s", session.SessionID, session.Symbol)))
	b.WriteString("\n")

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s\n", sectionStyle.Render("Outcome:"), outcomeStyle(session.TerminalReason).Render(string(session.TerminalReason)))

	for _, round := range session.Rounds {
		fmt.Fprintf(&body, "\n%s\n", sectionStyle.Render(fmt.Sprintf("Round %d  (consensus %.0f%%)", round.RoundNumber, round.ConsensusLevel*100)))
		for _, id := range sortedIDs(round.Positions) {
			p := round.Positions[id]
			fmt.Fprintf(&body, "  %-22s %s %s\n", p.AnalystID,
				recStyle(p.Recommendation).Render(fmt.Sprintf("%-5s", p.Recommendation)),
				mutedStyle.Render(fmt.Sprintf("%.0f%%", p.Confidence*100)),
			)
		}
		for _, ex := range round.Exchanges {
			if ex.CarriedForward {
				fmt.Fprintf(&body, "  %s\n", mutedStyle.Render(fmt.Sprintf("%s carried forward (no response)", ex.AnalystID)))
			} else if ex.Changed {
				fmt.Fprintf(&body, "  %s\n", neutralStyle.Render(fmt.Sprintf("%s revised %s %.0f%% -> %s %.0f%%",
					ex.AnalystID,
					ex.Previous.Recommendation, ex.Previous.Confidence*100,
					ex.Updated.Recommendation, ex.Updated.Confidence*100)))
			}
		}
	}

	b.WriteString(panelStyle.Render(body.String()))
	b.WriteString("\n")
	return b.String()
}

func signalStyle(sig models.Signal) lipgloss.Style {
	switch sig {
	case models.StrongBuy, models.SignalBuy:
		return bullishStyle
	case models.StrongSell, models.SignalSell, models.StrongShort, models.SignalShort:
		return bearishStyle
	default:
		return neutralStyle
	}
}

func recStyle(rec models.Recommendation) lipgloss.Style {
	switch rec {
	case models.Buy:
		return bullishStyle
	case models.Sell, models.Short:
		return bearishStyle
	default:
		return neutralStyle
	}
}

func outcomeStyle(reason models.TerminalReason) lipgloss.Style {
	switch reason {
	case models.Converged:
		return bullishStyle
	case models.NoResponses:
		return bearishStyle
	default:
		return neutralStyle
	}
}

func sortedIDs(positions map[string]models.AgentPosition) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
