package analysts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/config"
)

const (
	FundamentalAnalyst  = "fundamental_analyst"
	TechnicalAnalyst    = "technical_analyst"
	SentimentAnalyst    = "sentiment_analyst"
	GeopoliticalAnalyst = "geopolitical_analyst"
)

// DefaultRoster lists the built-in analyst kinds in canonical order.
var DefaultRoster = []string{
	FundamentalAnalyst,
	TechnicalAnalyst,
	SentimentAnalyst,
	GeopoliticalAnalyst,
}

// New builds one analyst of the given kind on the provided chat model.
func New(kind string, chat model.BaseChatModel, logger *zap.Logger) (Analyst, error) {
	switch kind {
	case FundamentalAnalyst:
		return NewBaseAnalyst(kind, "Fundamental Analyst", fundamentalSystemPrompt, chat, logger), nil
	case TechnicalAnalyst:
		return NewBaseAnalyst(kind, "Technical Analyst", technicalSystemPrompt, chat, logger), nil
	case SentimentAnalyst:
		return NewBaseAnalyst(kind, "Sentiment Analyst", sentimentSystemPrompt, chat, logger), nil
	case GeopoliticalAnalyst:
		return NewBaseAnalyst(kind, "Geopolitical Analyst", geopoliticalSystemPrompt, chat, logger), nil
	default:
		return nil, fmt.Errorf("unknown analyst kind: %s", kind)
	}
}

// NewRoster builds the full default roster sharing one chat model.
func NewRoster(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]Analyst, error) {
	chat, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	roster := make([]Analyst, 0, len(DefaultRoster))
	for _, kind := range DefaultRoster {
		analyst, err := New(kind, chat, logger)
		if err != nil {
			return nil, err
		}
		roster = append(roster, analyst)
	}
	return roster, nil
}
