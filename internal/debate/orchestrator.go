package debate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/QuorumGo/internal/analysts"
	"github.com/dyike/QuorumGo/internal/consensus"
	"github.com/dyike/QuorumGo/internal/models"
)

// ErrNoResponses is returned when not a single analyst produced an opening
// position, leaving nothing to deliberate over.
var ErrNoResponses = errors.New("debate: no analyst responses collected")

// Orchestrator drives a debate session end to end: initial position
// collection, up to maxRounds of structured rebuttal, and terminal
// classification. Sessions are independent; one Orchestrator may run many.
type Orchestrator struct {
	analysts       []analysts.Analyst
	detector       *Detector
	collector      *Collector
	maxRounds      int
	analystTimeout time.Duration
	sessionTimeout time.Duration
	logger         *zap.Logger
}

type OrchestratorOptions struct {
	MaxRounds        int
	AnalystTimeout   time.Duration
	SessionTimeout   time.Duration
	ConfidenceSpread float64
}

func NewOrchestrator(roster []analysts.Analyst, opts OrchestratorOptions, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 3
	}
	if opts.AnalystTimeout <= 0 {
		opts.AnalystTimeout = 2 * time.Minute
	}
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = 15 * time.Minute
	}
	return &Orchestrator{
		analysts:       roster,
		detector:       NewDetector(opts.ConfidenceSpread),
		collector:      NewCollector(roster, opts.AnalystTimeout, logger),
		maxRounds:      opts.MaxRounds,
		analystTimeout: opts.AnalystTimeout,
		sessionTimeout: opts.SessionTimeout,
		logger:         logger.With(zap.String("component", "orchestrator")),
	}
}

// RunSession collects opening positions and debates until the analysts
// converge or the round budget runs out. The returned session is complete
// and usable even on the NO_RESPONSES error path.
func (o *Orchestrator) RunSession(ctx context.Context, mc *models.MarketContext) (*models.DebateSession, error) {
	ctx, cancel := context.WithTimeout(ctx, o.sessionTimeout)
	defer cancel()

	session := &models.DebateSession{
		SessionID: uuid.NewString(),
		Symbol:    mc.Symbol,
		StartedAt: time.Now().UTC(),
	}
	log := o.logger.With(
		zap.String("session_id", session.SessionID),
		zap.String("symbol", session.Symbol),
	)

	positions := o.collector.Collect(ctx, mc)
	if len(positions) == 0 {
		session.TerminalReason = models.NoResponses
		log.Error("no opening positions collected")
		return session, ErrNoResponses
	}
	session.Rounds = append(session.Rounds, o.closeRound(0, positions, nil))
	log.Info("opening positions collected", zap.Int("analysts", len(positions)))

	for round := 1; round <= o.maxRounds; round++ {
		disagreements := o.detector.Detect(positions)
		if len(disagreements) == 0 {
			session.TerminalReason = models.Converged
			log.Info("debate converged", zap.Int("rounds", round-1))
			return session, nil
		}
		if ctx.Err() != nil {
			session.TerminalReason = models.RoundBudgetExhausted
			log.Warn("session deadline reached mid-debate", zap.Int("round", round))
			return session, nil
		}

		log.Info("debate round starting",
			zap.Int("round", round),
			zap.Int("disagreements", len(disagreements)),
		)
		debatePrompt := BuildDebatePrompt(round, positions, disagreements)
		updated, exchanges := o.conductRound(ctx, positions, debatePrompt)
		positions = updated
		session.Rounds = append(session.Rounds, o.closeRound(round, positions, exchanges))
	}

	if len(o.detector.Detect(positions)) == 0 {
		session.TerminalReason = models.Converged
		log.Info("debate converged on final round")
	} else {
		session.TerminalReason = models.RoundBudgetExhausted
		log.Info("round budget exhausted with open disagreements")
	}
	return session, nil
}

// conductRound fans the debate prompt out to every analyst that holds a
// position. An analyst that fails or times out carries its previous position
// forward unchanged, so the position set never shrinks mid-session.
func (o *Orchestrator) conductRound(ctx context.Context, positions map[string]models.AgentPosition, debatePrompt string) (map[string]models.AgentPosition, []models.DebateExchange) {
	var mu sync.Mutex
	updated := make(map[string]models.AgentPosition, len(positions))
	exchanges := make([]models.DebateExchange, 0, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range o.analysts {
		prev, ok := positions[a.Name()]
		if !ok {
			continue
		}
		a, prev := a, prev
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, o.analystTimeout)
			defer cancel()

			update, err := a.Debate(actx, debatePrompt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Warn("analyst failed to debate, carrying position forward",
					zap.String("analyst", a.Name()),
					zap.Error(err),
				)
				updated[a.Name()] = prev
				exchanges = append(exchanges, models.DebateExchange{
					AnalystID:      a.Name(),
					Previous:       positionDelta(prev),
					Updated:        positionDelta(prev),
					CarriedForward: true,
				})
				return nil
			}

			next := applyUpdate(prev, update)
			updated[a.Name()] = next
			exchanges = append(exchanges, models.DebateExchange{
				AnalystID:          a.Name(),
				Previous:           positionDelta(prev),
				Updated:            positionDelta(next),
				Changed:            prev.Recommendation != next.Recommendation || prev.Confidence != next.Confidence,
				Rebuttals:          update.Rebuttals,
				SupportingEvidence: update.SupportingEvidence,
				Concessions:        update.Concessions,
			})
			return nil
		})
	}
	g.Wait()

	sort.Slice(exchanges, func(i, j int) bool { return exchanges[i].AnalystID < exchanges[j].AnalystID })
	return updated, exchanges
}

func (o *Orchestrator) closeRound(number int, positions map[string]models.AgentPosition, exchanges []models.DebateExchange) *models.DebateRound {
	copied := make(map[string]models.AgentPosition, len(positions))
	for id, p := range positions {
		copied[id] = p
	}
	return &models.DebateRound{
		RoundNumber:    number,
		Positions:      copied,
		ConsensusLevel: consensus.Level(positions),
		Exchanges:      exchanges,
		ClosedAt:       time.Now().UTC(),
	}
}

// applyUpdate merges a partial debate response into the analyst's standing
// position. Only the fields the analyst chose to revise change.
func applyUpdate(prev models.AgentPosition, update *models.PartialUpdate) models.AgentPosition {
	next := prev
	if update.Recommendation.Valid() {
		next.Recommendation = update.Recommendation
	}
	next.Confidence = update.Confidence
	if len(update.SupportingEvidence) > 0 {
		next.KeyPoints = append(append([]string{}, next.KeyPoints...), update.SupportingEvidence...)
	}
	return next
}

func positionDelta(p models.AgentPosition) models.PositionDelta {
	return models.PositionDelta{
		Recommendation: p.Recommendation,
		Confidence:     p.Confidence,
	}
}
