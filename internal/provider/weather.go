// SPDX-License-Identifier: AGPL-3.0-only
package provider

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pulsebot/pulsebot/internal/config"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// WeatherProvider fetches current conditions and forecasts from
// OpenWeatherMap.
type WeatherProvider struct {
	BaseURL  string
	client   *Client
	settings *config.Store
}

func NewWeatherProvider(client *Client, settings *config.Store) *WeatherProvider {
	return &WeatherProvider{
		BaseURL:  openWeatherBaseURL,
		client:   client,
		settings: settings,
	}
}

func (p *WeatherProvider) apiKey(ctx context.Context) string {
	return config.ResolveAPIKey(ctx, p.settings, "OPENWEATHER_API_KEY", config.KeyOpenWeatherAPIKey)
}

// CurrentWeather returns the current-weather document for a city, or nil
// when nothing usable could be fetched.
func (p *WeatherProvider) CurrentWeather(ctx context.Context, city string) map[string]any {
	endpoint := p.BaseURL + "/weather"

	key := p.apiKey(ctx)
	if key == "" {
		p.client.logMissingKey(ctx, "OpenWeatherMap", endpoint)
		return nil
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", key)
	params.Set("units", "metric")
	params.Set("lang", "es")

	doc := p.client.fetchJSON(ctx, "OpenWeatherMap", endpoint, params)
	if doc != nil {
		p.client.log.WithField("city", city).Info("Weather fetched")
	}
	return doc
}

// Forecast returns up to days of three-hourly forecast entries.
func (p *WeatherProvider) Forecast(ctx context.Context, city string, days int) map[string]any {
	endpoint := p.BaseURL + "/forecast"

	key := p.apiKey(ctx)
	if key == "" {
		p.client.logMissingKey(ctx, "OpenWeatherMap", endpoint)
		return nil
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", key)
	params.Set("units", "metric")
	params.Set("lang", "es")
	params.Set("cnt", strconv.Itoa(days*8))

	return p.client.fetchJSON(ctx, "OpenWeatherMap", endpoint, params)
}
