package signal

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/models"
)

// Synthesizer turns a consensus result into an actionable trading signal:
// escalation, price levels, time horizon and the condensed factor lists.
type Synthesizer struct {
	// Escalation fires when both confidence and consensus clear these bars.
	EscalationConfidence float64
	EscalationConsensus  float64
	// TopFactors caps the key-factor and risk lists on the final signal.
	TopFactors int

	logger *zap.Logger
}

type SynthesizerOptions struct {
	EscalationConfidence float64
	EscalationConsensus  float64
	TopFactors           int
}

func NewSynthesizer(opts SynthesizerOptions, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.EscalationConfidence <= 0 {
		opts.EscalationConfidence = 0.8
	}
	if opts.EscalationConsensus <= 0 {
		opts.EscalationConsensus = 0.75
	}
	if opts.TopFactors <= 0 {
		opts.TopFactors = 5
	}
	return &Synthesizer{
		EscalationConfidence: opts.EscalationConfidence,
		EscalationConsensus:  opts.EscalationConsensus,
		TopFactors:           opts.TopFactors,
		logger:               logger.With(zap.String("component", "synthesizer")),
	}
}

// Synthesize builds the final signal for one deliberation. currentPrice may
// be nil, in which case the signal carries no price target or stop loss.
func (s *Synthesizer) Synthesize(mc *models.MarketContext, consensus *models.ConsensusResult, session *models.DebateSession) *models.TradingSignal {
	sig := s.classify(consensus)

	signal := &models.TradingSignal{
		Symbol:         mc.Symbol,
		CompanyName:    mc.CompanyName,
		GeneratedAt:    time.Now().UTC(),
		Signal:         sig,
		Confidence:     consensus.Confidence,
		ConsensusLevel: consensus.ConsensusLevel,
		Breakdown:      consensus.Breakdown,
		WeightedScores: consensus.WeightedScores,
		KeyFactors:     topN(consensus.KeyPoints, s.TopFactors),
		Risks:          topN(consensus.Risks, s.TopFactors),
		Summary:        summaryLine(consensus),
		TimeHorizon:    horizonFor(consensus.Confidence),
		TotalAnalysts:  consensus.TotalAnalysts,
		Methodology:    consensus.Method,
		Consensus:      consensus,
		Session:        session,
	}
	if session != nil {
		signal.DebateRounds = session.TotalRounds()
	}
	if mc.CurrentPrice != nil {
		target, stop := priceLevels(consensus.Recommendation, *mc.CurrentPrice, consensus.Confidence)
		signal.PriceTarget = &target
		signal.StopLoss = &stop
	}

	s.logger.Info("signal synthesized",
		zap.String("symbol", signal.Symbol),
		zap.String("signal", string(signal.Signal)),
		zap.Float64("confidence", signal.Confidence),
		zap.Float64("consensus_level", signal.ConsensusLevel),
	)
	return signal
}

// classify maps the consensus call to a signal class, escalating to the
// STRONG_ variant when both confidence and consensus clear the bars. HOLD
// never escalates.
func (s *Synthesizer) classify(consensus *models.ConsensusResult) models.Signal {
	strong := consensus.Confidence >= s.EscalationConfidence &&
		consensus.ConsensusLevel >= s.EscalationConsensus

	switch consensus.Recommendation {
	case models.Buy:
		if strong {
			return models.StrongBuy
		}
		return models.SignalBuy
	case models.Sell:
		if strong {
			return models.StrongSell
		}
		return models.SignalSell
	case models.Short:
		if strong {
			return models.StrongShort
		}
		return models.SignalShort
	default:
		return models.SignalHold
	}
}

// priceLevels derives a target and stop from the current price. Upside scales
// with confidence on the long side, downside on the short side; HOLD keeps
// the price as its own target with a flat 10% protective stop.
func priceLevels(rec models.Recommendation, price, confidence float64) (target, stop float64) {
	switch rec {
	case models.Buy:
		target = price * (1 + 0.05 + 0.10*confidence)
		stop = price * 0.95
	case models.Sell:
		target = price * (1 - 0.05 - 0.10*confidence)
		stop = price * 1.05
	case models.Short:
		target = price * (1 - 0.10 - 0.15*confidence)
		stop = price * (1 + 0.05 + 0.03*(1-confidence))
	default:
		target = price
		stop = price * 0.90
	}
	return target, stop
}

func horizonFor(confidence float64) models.TimeHorizon {
	switch {
	case confidence >= 0.8:
		return models.LongTerm
	case confidence >= 0.6:
		return models.MediumTerm
	default:
		return models.ShortTerm
	}
}

func summaryLine(consensus *models.ConsensusResult) string {
	return fmt.Sprintf("%d of %d analysts support %s (consensus %.0f%%, %s method)",
		consensus.Breakdown[consensus.Recommendation],
		consensus.TotalAnalysts,
		consensus.Recommendation,
		consensus.ConsensusLevel*100,
		consensus.Method,
	)
}

func topN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
