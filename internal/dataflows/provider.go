package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/QuorumGo/internal/config"
	"github.com/dyike/QuorumGo/internal/models"
)

// ContextProvider assembles the market context every analyst receives. Data
// sources are queried concurrently; a failing source degrades to a
// placeholder section instead of failing the deliberation.
type ContextProvider struct {
	yahoo    *YahooClient
	finnhub  *FinnhubClient
	google   *GoogleNewsClient
	longport *LongportClient
	online   bool
	logger   *zap.Logger
}

func NewContextProvider(cfg *config.Config, logger *zap.Logger) *ContextProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "dataflows"))

	// Longport is optional; without credentials we rely on Yahoo alone.
	longport, err := NewLongportClient(cfg)
	if err != nil {
		logger.Debug("longport client unavailable", zap.Error(err))
		longport = nil
	}

	return &ContextProvider{
		yahoo:    NewYahooClient(cfg),
		finnhub:  NewFinnhubClient(cfg),
		google:   NewGoogleNewsClient(cfg),
		longport: longport,
		online:   cfg.OnlineTools,
		logger:   logger,
	}
}

// Build gathers market data, news, fundamentals and sentiment material for
// one symbol as of tradeDate.
func (p *ContextProvider) Build(ctx context.Context, symbol, tradeDate string) (*models.MarketContext, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)
	if tradeDate == "" {
		tradeDate = time.Now().Format("2006-01-02")
	}

	mc := &models.MarketContext{
		Symbol:    symbol,
		TradeDate: tradeDate,
	}
	if !p.online {
		mc.MarketSummary = "Market data unavailable (offline mode)."
		mc.NewsSummary = "News unavailable (offline mode)."
		mc.FinancialSummary = "Financial data unavailable (offline mode)."
		mc.SocialSummary = "Sentiment data unavailable (offline mode)."
		return mc, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.fillMarket(gctx, mc)
		return nil
	})
	g.Go(func() error {
		p.fillNews(gctx, mc)
		return nil
	})
	g.Go(func() error {
		p.fillFinancials(gctx, mc)
		return nil
	})
	_ = g.Wait()

	return mc, nil
}

func (p *ContextProvider) fillMarket(ctx context.Context, mc *models.MarketContext) {
	quote, err := p.yahoo.GetQuote(mc.Symbol)
	if err != nil {
		p.logger.Warn("quote fetch failed", zap.String("symbol", mc.Symbol), zap.Error(err))
		mc.MarketSummary = "Current market data unavailable."
		return
	}

	price, _ := quote.Close.Float64()
	mc.CurrentPrice = &price

	var b strings.Builder
	fmt.Fprintf(&b, "%s trades at %s (day range %s - %s, volume %d).",
		mc.Symbol, quote.Close.StringFixed(2), quote.Low.StringFixed(2), quote.High.StringFixed(2), quote.Volume)

	if info, err := p.yahoo.GetCompanyInfo(mc.Symbol); err == nil {
		mc.CompanyName = info.Name
		fmt.Fprintf(&b, " Listed on %s, market %s.", info.Exchange, info.MarketState)
	}
	if mc.CompanyName == "" && p.longport != nil {
		if infos, err := p.longport.GetStaticInfo(ctx, []string{mc.Symbol}); err == nil && len(infos) > 0 {
			mc.CompanyName = infos[0].NameEn
		}
	}

	if bars, err := p.yahoo.GetRecentBars(mc.Symbol, 30); err == nil && len(bars) >= 2 {
		first, _ := bars[0].Close.Float64()
		last, _ := bars[len(bars)-1].Close.Float64()
		if first != 0 {
			fmt.Fprintf(&b, " 30-day move: %+.1f%% over %d sessions.", (last-first)/first*100, len(bars))
		}
	}

	mc.MarketSummary = b.String()
}

func (p *ContextProvider) fillNews(ctx context.Context, mc *models.MarketContext) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	var articles []*NewsArticle
	var err error
	if p.finnhub.Enabled() {
		articles, err = p.finnhub.GetCompanyNews(ctx, mc.Symbol, from, to)
	} else {
		articles, err = p.google.Search(ctx, GoogleNewsParams{
			Query:      mc.Symbol + " stock",
			StartDate:  from,
			EndDate:    to,
			MaxResults: 10,
		})
	}
	if err != nil {
		p.logger.Warn("news fetch failed", zap.String("symbol", mc.Symbol), zap.Error(err))
		mc.NewsSummary = "Recent news unavailable."
		mc.SocialSummary = "Public sentiment signals unavailable."
		return
	}
	if len(articles) == 0 {
		mc.NewsSummary = "No recent news found."
		mc.SocialSummary = "No public discussion volume detected in the last week."
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d articles in the last 7 days. Recent headlines:\n", len(articles))
	for i, article := range articles {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s", article.Source, article.Title)
		if article.Content != "" {
			fmt.Fprintf(&b, ": %s", truncate(article.Content, 160))
		}
		b.WriteString("\n")
	}
	mc.NewsSummary = b.String()
	mc.SocialSummary = fmt.Sprintf(
		"Media attention: %d articles over 7 days (%s). Headline tone should be read critically for hype or fear cycles.",
		len(articles), attentionLabel(len(articles)))
}

func (p *ContextProvider) fillFinancials(ctx context.Context, mc *models.MarketContext) {
	if !p.finnhub.Enabled() {
		mc.FinancialSummary = "Fundamental data unavailable (no Finnhub API key)."
		return
	}

	to := time.Now()
	from := to.AddDate(0, -3, 0)
	sentiments, err := p.finnhub.GetInsiderSentiment(ctx, mc.Symbol, from, to)
	if err != nil {
		p.logger.Warn("insider sentiment fetch failed", zap.String("symbol", mc.Symbol), zap.Error(err))
		mc.FinancialSummary = "Fundamental data unavailable."
		return
	}
	if len(sentiments) == 0 {
		mc.FinancialSummary = "No insider activity reported in the last quarter."
		return
	}

	var netChange int64
	for _, s := range sentiments {
		netChange += s.Change
	}
	direction := "net buying"
	if netChange < 0 {
		direction = "net selling"
	}
	latest := sentiments[len(sentiments)-1]
	mc.FinancialSummary = fmt.Sprintf(
		"Insider activity over the last quarter: %s (%+d shares across %d months). Latest MSPR %s for %d-%02d.",
		direction, netChange, len(sentiments), latest.MSPR.StringFixed(2), latest.Year, latest.Month)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func attentionLabel(articles int) string {
	switch {
	case articles >= 15:
		return "elevated"
	case articles >= 5:
		return "normal"
	default:
		return "light"
	}
}
