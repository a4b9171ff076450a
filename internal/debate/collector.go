package debate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/QuorumGo/internal/analysts"
	"github.com/dyike/QuorumGo/internal/models"
)

// Collector runs the initial independent-analysis phase. Analysts are queried
// concurrently, each inside its own timeout; a failing analyst is logged and
// left out of round 0, never surfaced to the caller.
type Collector struct {
	analysts []analysts.Analyst
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCollector(roster []analysts.Analyst, timeout time.Duration, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		analysts: roster,
		timeout:  timeout,
		logger:   logger.With(zap.String("component", "collector")),
	}
}

// Collect invokes every analyst exactly once against the prepared market
// context and returns whichever subset responded. An empty map means the
// whole deliberation failed and must terminate with NO_RESPONSES.
func (c *Collector) Collect(ctx context.Context, mc *models.MarketContext) map[string]models.AgentPosition {
	var (
		mu        sync.Mutex
		positions = make(map[string]models.AgentPosition, len(c.analysts))
	)

	var g errgroup.Group
	for _, a := range c.analysts {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			position, err := a.Analyze(actx, mc)
			if err != nil {
				c.logger.Warn("analyst failed in initial analysis",
					zap.String("analyst", a.Name()),
					zap.Error(err),
				)
				return nil
			}

			mu.Lock()
			positions[a.Name()] = *position
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Info("initial analysis complete",
		zap.Int("responded", len(positions)),
		zap.Int("invited", len(c.analysts)),
	)
	return positions
}
