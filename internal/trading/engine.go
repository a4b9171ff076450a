package trading

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/analysts"
	"github.com/dyike/QuorumGo/internal/config"
	"github.com/dyike/QuorumGo/internal/consensus"
	"github.com/dyike/QuorumGo/internal/dataflows"
	"github.com/dyike/QuorumGo/internal/debate"
	"github.com/dyike/QuorumGo/internal/models"
	"github.com/dyike/QuorumGo/internal/signal"
	"github.com/dyike/QuorumGo/internal/storage"
	"github.com/dyike/QuorumGo/internal/utils"
)

// Engine wires the full deliberation pipeline: market context assembly,
// multi-round debate, consensus aggregation, signal synthesis, persistence
// and report export.
type Engine struct {
	cfg          *config.Config
	provider     *dataflows.ContextProvider
	orchestrator *debate.Orchestrator
	builder      *consensus.Builder
	synthesizer  *signal.Synthesizer
	store        *storage.Store
	logger       *zap.Logger
}

// NewEngine validates the config, builds the analyst roster and opens the
// signal store. The returned engine is safe to reuse across symbols.
func NewEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	roster, err := analysts.NewRoster(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build analyst roster: %w", err)
	}

	store, err := storage.NewStore(filepath.Join(cfg.DataDir, "quorum.db"))
	if err != nil {
		return nil, fmt.Errorf("open signal store: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		provider: dataflows.NewContextProvider(cfg, logger),
		orchestrator: debate.NewOrchestrator(roster, debate.OrchestratorOptions{
			MaxRounds:        cfg.MaxDebateRounds,
			AnalystTimeout:   cfg.AnalystTimeout,
			SessionTimeout:   cfg.SessionTimeout,
			ConfidenceSpread: cfg.ConfidenceSpread,
		}, logger),
		builder: consensus.NewBuilder(cfg.AnalystWeights, logger),
		synthesizer: signal.NewSynthesizer(signal.SynthesizerOptions{
			EscalationConfidence: cfg.ConfidenceHigh,
			EscalationConsensus:  cfg.EscalationConsensus,
			TopFactors:           cfg.TopFactors,
		}, logger),
		store:  store,
		logger: logger.With(zap.String("component", "engine")),
	}, nil
}

// Close releases the engine's persistent resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Run deliberates one symbol end to end and returns the synthesized signal.
// The session and signal are persisted and a markdown report is written to
// the results directory before returning.
func (e *Engine) Run(ctx context.Context, symbol, tradeDate string) (*models.TradingSignal, error) {
	start := time.Now()

	mc, err := e.provider.Build(ctx, symbol, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("build market context: %w", err)
	}
	e.logger.Info("market context assembled",
		zap.String("symbol", mc.Symbol),
		zap.Bool("has_price", mc.CurrentPrice != nil),
	)

	session, err := e.orchestrator.RunSession(ctx, mc)
	if session != nil {
		if serr := e.store.SaveSession(ctx, session); serr != nil {
			e.logger.Warn("session persistence failed", zap.Error(serr))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("debate session: %w", err)
	}

	result := e.builder.Build(session.FinalPositions(), models.ConsensusMethod(e.cfg.ConsensusMethod))
	sig := e.synthesizer.Synthesize(mc, result, session)

	if err := e.store.SaveSignal(ctx, sig); err != nil {
		e.logger.Warn("signal persistence failed", zap.Error(err))
	}
	if path, err := e.exportReport(sig); err != nil {
		e.logger.Warn("report export failed", zap.Error(err))
	} else {
		e.logger.Info("report written", zap.String("path", path))
	}

	e.logger.Info("deliberation finished",
		zap.String("symbol", sig.Symbol),
		zap.String("signal", string(sig.Signal)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sig, nil
}

// History returns recent stored signals for a symbol.
func (e *Engine) History(ctx context.Context, symbol string, limit int) ([]*storage.SignalRecord, error) {
	return e.store.ListSignals(ctx, symbol, limit)
}

// Session loads a stored debate session by ID.
func (e *Engine) Session(ctx context.Context, sessionID string) (*models.DebateSession, error) {
	return e.store.GetSession(ctx, sessionID)
}

func (e *Engine) exportReport(sig *models.TradingSignal) (string, error) {
	dir := filepath.Join(e.cfg.ResultsDir, sig.Symbol)
	name := fmt.Sprintf("signal_%s.md", sig.GeneratedAt.Format("2006-01-02_150405"))
	return utils.WriteMarkdown(dir, name, signal.FormatMarkdown(sig))
}

func validateConfig(cfg *config.Config) error {
	switch cfg.LLMProvider {
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}

	switch models.ConsensusMethod(cfg.ConsensusMethod) {
	case models.MethodWeighted, models.MethodMajority, models.MethodConfidence:
	default:
		return fmt.Errorf("unknown consensus method: %s", cfg.ConsensusMethod)
	}

	if cfg.MaxDebateRounds < 1 {
		return fmt.Errorf("max debate rounds must be at least 1, got %d", cfg.MaxDebateRounds)
	}
	return nil
}
