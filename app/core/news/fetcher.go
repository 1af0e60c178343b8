// Package news retrieves recent textual content for a topic. Transport
// failures and a missing API key degrade to synthetic placeholder text:
// downstream analysis must always have input.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	config "trendpulse/app/configs"
	"trendpulse/app/pkg/logger"
)

var syntheticItems = []string{
	"Market data shows a significant uptrend due to recent global events.",
	"Public sentiment is mixed, with concerns over privacy regulations.",
	"The technology sector is rallying behind the new AI advancements.",
	"Supply chain disruptions are causing minor delays in production.",
}

type Fetcher struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
}

func NewFetcher(cfg config.NewsConfig) *Fetcher {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("news: no API key configured, serving synthetic content")
	}
	return &Fetcher{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch returns a text blob of recent items about topic and the number of
// sources it was built from. It never fails: zero articles yields a
// literal placeholder, and any transport problem falls back to synthetic
// content with a source count of zero.
func (f *Fetcher) Fetch(ctx context.Context, topic string) (string, int) {
	if strings.TrimSpace(f.apiKey) == "" {
		return f.synthetic(topic), 0
	}

	text, count, err := f.query(ctx, topic)
	if err != nil {
		logger.Warn("news fetch failed for %q: %v", topic, err)
		return f.synthetic(topic), 0
	}
	return text, count
}

func (f *Fetcher) query(ctx context.Context, topic string) (string, int, error) {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("apiKey", f.apiKey)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(f.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("news api status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	articles := gjson.GetBytes(body, "articles")
	if !articles.Exists() || len(articles.Array()) == 0 {
		return fmt.Sprintf("No recent news found for %s.", topic), 0, nil
	}

	parts := make([]string, 0, f.pageSize)
	for _, a := range articles.Array() {
		title := strings.TrimSpace(a.Get("title").String())
		description := strings.TrimSpace(a.Get("description").String())
		if title == "" && description == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(title+". "+description))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("No recent news found for %s.", topic), 0, nil
	}
	return strings.Join(parts, " "), len(parts), nil
}

func (f *Fetcher) synthetic(topic string) string {
	return fmt.Sprintf("Latest sample news for %s: %s", topic, strings.Join(syntheticItems, " "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
