package dataflows

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/dyike/QuorumGo/internal/config"
)

// YahooClient pulls quotes and daily bars from Yahoo Finance.
type YahooClient struct {
	cache *CacheManager
}

func NewYahooClient(cfg *config.Config) *YahooClient {
	return &YahooClient{
		cache: NewCacheManager(filepath.Join(cfg.DataCacheDir, "yahoo"), 24*time.Hour, cfg.CacheEnabled),
	}
}

// GetQuote returns the latest market snapshot for a symbol.
func (yc *YahooClient) GetQuote(symbol string) (*Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached Bar
	if yc.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *Bar
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote for %s: %w", symbol, err)
		}
		now := time.Now()
		result = &Bar{
			Symbol:    symbol,
			Date:      now,
			Open:      decimal.NewFromFloat(q.RegularMarketOpen),
			High:      decimal.NewFromFloat(q.RegularMarketDayHigh),
			Low:       decimal.NewFromFloat(q.RegularMarketDayLow),
			Close:     decimal.NewFromFloat(q.RegularMarketPrice),
			AdjClose:  decimal.NewFromFloat(q.RegularMarketPrice),
			Volume:    int64(q.RegularMarketVolume),
			FetchedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "quote", symbol, result)
	return result, nil
}

// GetDailyBars returns daily bars between start and end, oldest first.
func (yc *YahooClient) GetDailyBars(symbol string, start, end time.Time) ([]*Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]string{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}
	var cached []*Bar
	if yc.cache.Get("yahoo", "daily_bars", cacheKey, &cached) {
		return cached, nil
	}

	var result []*Bar
	err := WithRetry(DefaultRetryConfig(), func() error {
		iter := chart.Get(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		})

		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, &Bar{
				Symbol:    symbol,
				Date:      time.Unix(int64(bar.Timestamp), 0),
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				AdjClose:  bar.AdjClose,
				Volume:    int64(bar.Volume),
				FetchedAt: time.Now(),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("get daily bars for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "daily_bars", cacheKey, result)
	return result, nil
}

// GetRecentBars returns the trailing window of daily bars.
func (yc *YahooClient) GetRecentBars(symbol string, days int) ([]*Bar, error) {
	end := time.Now()
	return yc.GetDailyBars(symbol, end.AddDate(0, 0, -days), end)
}

// GetCompanyInfo returns basic descriptive data for a listed company.
func (yc *YahooClient) GetCompanyInfo(symbol string) (*CompanyInfo, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached CompanyInfo
	if yc.cache.Get("yahoo", "company_info", symbol, &cached) {
		return &cached, nil
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("get company info for %s: %w", symbol, err)
	}
	info := &CompanyInfo{
		Symbol:      symbol,
		Name:        q.ShortName,
		Exchange:    q.FullExchangeName,
		Currency:    q.CurrencyID,
		MarketState: string(q.MarketState),
	}

	yc.cache.Set("yahoo", "company_info", symbol, info)
	return info, nil
}
