package models

// MarketContext is the prepared analysis context for one ticker. The
// deliberation core passes it to analysts unchanged; only the data providers
// know how it was assembled.
type MarketContext struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`
	TradeDate   string `json:"trade_date"`

	// Nil when no live quote was available.
	CurrentPrice *float64 `json:"current_price,omitempty"`

	MarketSummary    string `json:"market_summary,omitempty"`
	NewsSummary      string `json:"news_summary,omitempty"`
	FinancialSummary string `json:"financial_summary,omitempty"`
	SocialSummary    string `json:"social_summary,omitempty"`
}
