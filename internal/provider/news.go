// SPDX-License-Identifier: AGPL-3.0-only
package provider

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pulsebot/pulsebot/internal/config"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsProvider fetches headlines from NewsAPI.
type NewsProvider struct {
	BaseURL  string
	client   *Client
	settings *config.Store
}

func NewNewsProvider(client *Client, settings *config.Store) *NewsProvider {
	return &NewsProvider{
		BaseURL:  newsAPIBaseURL,
		client:   client,
		settings: settings,
	}
}

func (p *NewsProvider) apiKey(ctx context.Context) string {
	return config.ResolveAPIKey(ctx, p.settings, "NEWS_API_KEY", config.KeyNewsAPIKey)
}

// TopHeadlines returns the top-headlines document for a category/country,
// or nil when nothing usable could be fetched.
func (p *NewsProvider) TopHeadlines(ctx context.Context, category, country string) map[string]any {
	endpoint := p.BaseURL + "/top-headlines"

	key := p.apiKey(ctx)
	if key == "" {
		p.client.logMissingKey(ctx, "NewsAPI", endpoint)
		return nil
	}

	params := url.Values{}
	params.Set("apiKey", key)
	params.Set("category", category)
	params.Set("country", country)
	params.Set("pageSize", "5")

	doc := p.client.fetchJSON(ctx, "NewsAPI", endpoint, params)
	if doc != nil {
		if articles, ok := doc["articles"].([]any); ok {
			p.client.log.WithField("articles", len(articles)).Info("News fetched")
		}
	}
	return doc
}

// Search queries the everything endpoint by term, newest first.
func (p *NewsProvider) Search(ctx context.Context, query, language string, pageSize int) map[string]any {
	endpoint := p.BaseURL + "/everything"

	key := p.apiKey(ctx)
	if key == "" {
		p.client.logMissingKey(ctx, "NewsAPI", endpoint)
		return nil
	}

	params := url.Values{}
	params.Set("apiKey", key)
	params.Set("q", query)
	params.Set("language", language)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))

	return p.client.fetchJSON(ctx, "NewsAPI", endpoint, params)
}
