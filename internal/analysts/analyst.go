package analysts

import (
	"context"

	"github.com/dyike/QuorumGo/internal/models"
)

// Analyst is the capability contract the deliberation core is parametric
// over. Analyze produces an independent position from the prepared market
// context; Debate takes a rendered debate prompt (all current positions plus
// detected disagreements) and returns an updated stance. Both honor the
// deadline on ctx and may fail; the caller decides how to degrade.
type Analyst interface {
	Name() string
	Role() string
	Analyze(ctx context.Context, mc *models.MarketContext) (*models.AgentPosition, error)
	Debate(ctx context.Context, debatePrompt string) (*models.PartialUpdate, error)
}
