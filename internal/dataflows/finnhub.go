package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/dyike/QuorumGo/internal/config"
)

// FinnhubClient wraps the Finnhub REST API for company news and insider
// sentiment. Calls fail fast when no API key is configured.
type FinnhubClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	client := resty.New().
		SetBaseURL("https://finnhub.io/api/v1").
		SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  NewCacheManager(filepath.Join(cfg.DataCacheDir, "finnhub"), 6*time.Hour, cfg.CacheEnabled),
		apiKey: cfg.FinnhubAPIKey,
	}
}

// Enabled reports whether an API key is configured.
func (fc *FinnhubClient) Enabled() bool { return fc.apiKey != "" }

type finnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// GetCompanyNews returns company news between from and to.
func (fc *FinnhubClient) GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]*NewsArticle, error) {
	if !fc.Enabled() {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]string{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
	var cached []*NewsArticle
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	var result []*NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/company-news")
		if err != nil {
			return fmt.Errorf("fetch news for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("finnhub error %d: %s", resp.StatusCode(), resp.String())
		}

		var items []finnhubNews
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			return fmt.Errorf("parse news response: %w", err)
		}

		result = make([]*NewsArticle, 0, len(items))
		for _, item := range items {
			result = append(result, &NewsArticle{
				Title:       item.Headline,
				Content:     item.Summary,
				URL:         item.URL,
				Source:      item.Source,
				PublishedAt: time.Unix(item.DateTime, 0),
				Keywords:    []string{symbol},
				Metadata: map[string]string{
					"category": item.Category,
					"related":  item.Related,
					"id":       strconv.FormatInt(item.ID, 10),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "company_news", cacheKey, result)
	return result, nil
}

type finnhubInsiderSentiment struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change int64   `json:"change"`
	MSPR   float64 `json:"mspr"`
}

// GetInsiderSentiment returns monthly insider sentiment between from and to.
func (fc *FinnhubClient) GetInsiderSentiment(ctx context.Context, symbol string, from, to time.Time) ([]*InsiderSentiment, error) {
	if !fc.Enabled() {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]string{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
	var cached []*InsiderSentiment
	if fc.cache.Get("finnhub", "insider_sentiment", cacheKey, &cached) {
		return cached, nil
	}

	var result []*InsiderSentiment
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/stock/insider-sentiment")
		if err != nil {
			return fmt.Errorf("fetch insider sentiment for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("finnhub error %d: %s", resp.StatusCode(), resp.String())
		}

		var payload struct {
			Data []finnhubInsiderSentiment `json:"data"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("parse insider sentiment response: %w", err)
		}

		result = make([]*InsiderSentiment, 0, len(payload.Data))
		for _, item := range payload.Data {
			result = append(result, &InsiderSentiment{
				Symbol: item.Symbol,
				Year:   item.Year,
				Month:  item.Month,
				Change: item.Change,
				MSPR:   decimal.NewFromFloat(item.MSPR),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "insider_sentiment", cacheKey, result)
	return result, nil
}
