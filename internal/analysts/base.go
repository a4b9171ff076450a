package analysts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/models"
)

// Literal braces in the JSON skeleton are doubled so the FString formatter
// leaves them alone.
const analyzeUserTpl = `Please analyze the following information for {company_name} ({ticker}) as of {trade_date}:

## Stock Information
{market_summary}

## Recent News
{news_summary}

## Financial Data
{financial_summary}

Based on this information and your role as a {role}, provide:
1. A comprehensive analysis
2. Your recommendation (BUY, SELL, SHORT, or HOLD)
3. Your confidence level (0.0 to 1.0)
4. Detailed reasoning for your recommendation
5. Key points that support your analysis (3-5 points)
6. Potential risks or concerns (2-4 risks)

Format your response as JSON with the following structure:
{{
    "analysis": "Your detailed analysis here",
    "recommendation": "BUY|SELL|SHORT|HOLD",
    "confidence": 0.0,
    "reasoning": "Detailed reasoning for your recommendation",
    "key_points": ["point 1", "point 2"],
    "risks": ["risk 1", "risk 2"]
}}`

// BaseAnalyst implements the Analyst contract on top of a chat model and a
// role-specific system prompt. All concrete analysts are instances of it.
type BaseAnalyst struct {
	name         string
	role         string
	systemPrompt string
	chat         model.BaseChatModel
	logger       *zap.Logger
}

func NewBaseAnalyst(name, role, systemPrompt string, chat model.BaseChatModel, logger *zap.Logger) *BaseAnalyst {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseAnalyst{
		name:         name,
		role:         role,
		systemPrompt: systemPrompt,
		chat:         chat,
		logger:       logger.With(zap.String("analyst", name)),
	}
}

func (b *BaseAnalyst) Name() string {
	return b.name
}

func (b *BaseAnalyst) Role() string {
	return b.role
}

// Analyze formats the independent-analysis prompt, queries the model and
// parses the structured position out of the raw reply. Unparseable output
// degrades to the neutral default rather than failing the round.
func (b *BaseAnalyst) Analyze(ctx context.Context, mc *models.MarketContext) (*models.AgentPosition, error) {
	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage("{system_message}"),
		schema.UserMessage(analyzeUserTpl),
	)

	messages, err := tpl.Format(ctx, map[string]any{
		"system_message":    b.systemPrompt,
		"company_name":      orUnknown(mc.CompanyName),
		"ticker":            mc.Symbol,
		"trade_date":        mc.TradeDate,
		"role":              b.role,
		"market_summary":    orPlaceholder(mc.MarketSummary, "No stock data available"),
		"news_summary":      orPlaceholder(mc.NewsSummary, "No news available"),
		"financial_summary": orPlaceholder(mc.FinancialSummary, "No financial data available"),
	})
	if err != nil {
		return nil, fmt.Errorf("format analysis prompt: %w", err)
	}

	reply, err := b.chat.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("analyst %s generate: %w", b.name, err)
	}

	position := ParsePosition(b.name, b.role, reply.Content, b.logger)
	b.logger.Info("analysis complete",
		zap.String("recommendation", string(position.Recommendation)),
		zap.Float64("confidence", position.Confidence),
	)
	return position, nil
}

// Debate re-queries the model with the rendered debate context. The prompt is
// built by the orchestrator; the analyst only contributes its persona.
func (b *BaseAnalyst) Debate(ctx context.Context, debatePrompt string) (*models.PartialUpdate, error) {
	messages := []*schema.Message{
		schema.SystemMessage(b.systemPrompt),
		schema.UserMessage(debatePrompt),
	}

	reply, err := b.chat.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("analyst %s debate generate: %w", b.name, err)
	}

	update := ParseUpdate(reply.Content, b.logger)
	b.logger.Info("debate response",
		zap.String("recommendation", string(update.Recommendation)),
		zap.Float64("confidence", update.Confidence),
	)
	return update, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
