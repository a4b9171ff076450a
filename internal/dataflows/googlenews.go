package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/QuorumGo/internal/config"
)

// GoogleNewsClient scrapes Google News search results. It needs no API key,
// which makes it the fallback news source when Finnhub is not configured.
type GoogleNewsClient struct {
	client *resty.Client
	cache  *CacheManager
}

func NewGoogleNewsClient(cfg *config.Config) *GoogleNewsClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; QuorumGo/1.0)")

	return &GoogleNewsClient{
		client: client,
		cache:  NewCacheManager(filepath.Join(cfg.DataCacheDir, "google_news"), 2*time.Hour, cfg.CacheEnabled),
	}
}

// GoogleNewsParams parameterizes one search.
type GoogleNewsParams struct {
	Query      string    `json:"query"`
	Language   string    `json:"language"`
	Country    string    `json:"country"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	MaxResults int       `json:"max_results"`
}

// Search scrapes Google News for articles matching the params.
func (gc *GoogleNewsClient) Search(ctx context.Context, params GoogleNewsParams) ([]*NewsArticle, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if params.Language == "" {
		params.Language = "en"
	}
	if params.Country == "" {
		params.Country = "US"
	}
	if params.MaxResults <= 0 {
		params.MaxResults = 20
	}

	var cached []*NewsArticle
	if gc.cache.Get("google_news", "search", params, &cached) {
		return cached, nil
	}

	var result []*NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := gc.client.R().SetContext(ctx).Get(searchURL(params))
		if err != nil {
			return fmt.Errorf("fetch google news: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("google news returned HTTP %d", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("parse google news HTML: %w", err)
		}

		result = parseArticles(doc, params.Query)
		if len(result) > params.MaxResults {
			result = result[:params.MaxResults]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	gc.cache.Set("google_news", "search", params, result)
	return result, nil
}

func searchURL(params GoogleNewsParams) string {
	query := url.QueryEscape(params.Query)
	if !params.StartDate.IsZero() && !params.EndDate.IsZero() {
		query += url.QueryEscape(fmt.Sprintf(" after:%s before:%s",
			params.StartDate.Format("2006-01-02"),
			params.EndDate.Format("2006-01-02")))
	}
	return fmt.Sprintf("https://news.google.com/search?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		query, params.Language, params.Country, params.Country, params.Language)
}

func parseArticles(doc *goquery.Document, query string) []*NewsArticle {
	var articles []*NewsArticle
	doc.Find("article").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		href, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}

		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}
		timeText := strings.TrimSpace(s.Find("time").Text())

		articles = append(articles, &NewsArticle{
			Title:       title,
			Content:     strings.TrimSpace(s.Find("span").Last().Text()),
			URL:         resolveURL(href),
			Source:      source,
			PublishedAt: parseRelativeTime(timeText),
			Keywords:    []string{query},
			Metadata: map[string]string{
				"scraper":   "google_news",
				"time_text": timeText,
			},
		})
	})
	return articles
}

// resolveURL unwraps Google News redirect links and absolutizes relative ones.
func resolveURL(href string) string {
	if strings.Contains(href, "url=") {
		parts := strings.SplitN(href, "url=", 2)
		if decoded, err := url.QueryUnescape(parts[1]); err == nil {
			return decoded
		}
	}
	if strings.HasPrefix(href, "./") {
		return "https://news.google.com" + href[1:]
	}
	if strings.HasPrefix(href, "/") {
		return "https://news.google.com" + href
	}
	return href
}

var relativeTimePattern = regexp.MustCompile(`(\d+)\s*(minute|hour|day|week)s?\s*ago`)

// parseRelativeTime converts Google's relative timestamps ("3 hours ago")
// into absolute times. Unparseable text is treated as an hour old.
func parseRelativeTime(timeText string) time.Time {
	now := time.Now()
	timeText = strings.ToLower(strings.TrimSpace(timeText))
	if timeText == "just now" {
		return now
	}

	matches := relativeTimePattern.FindStringSubmatch(timeText)
	if len(matches) != 3 {
		return now.Add(-time.Hour)
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return now.Add(-time.Hour)
	}

	switch matches[2] {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, -n)
	default:
		return now.AddDate(0, 0, -7*n)
	}
}
