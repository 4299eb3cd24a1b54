// SPDX-License-Identifier: AGPL-3.0-only
package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	exchangeRateFreeBaseURL  = "https://api.exchangerate-api.com/v4"
	exchangeRateKeyedBaseURL = "https://v6.exchangerate-api.com/v6"
)

// CurrencyProvider fetches exchange rates from ExchangeRate-API. The free
// tier needs no key; a keyed account switches to the v6 endpoint.
type CurrencyProvider struct {
	FreeBaseURL  string
	KeyedBaseURL string
	client       *Client
}

func NewCurrencyProvider(client *Client) *CurrencyProvider {
	return &CurrencyProvider{
		FreeBaseURL:  exchangeRateFreeBaseURL,
		KeyedBaseURL: exchangeRateKeyedBaseURL,
		client:       client,
	}
}

// ExchangeRate returns a document with conversion_rate for the pair, or nil.
func (p *CurrencyProvider) ExchangeRate(ctx context.Context, from, to string) map[string]any {
	var endpoint string
	if key := os.Getenv("EXCHANGE_API_KEY"); key != "" {
		endpoint = fmt.Sprintf("%s/%s/latest/%s", p.KeyedBaseURL, key, from)
	} else {
		endpoint = fmt.Sprintf("%s/latest/%s", p.FreeBaseURL, from)
	}

	doc := p.client.fetchJSON(ctx, "ExchangeRate-API", endpoint, nil)
	if doc == nil {
		return nil
	}

	rates, ok := doc["rates"].(map[string]any)
	if !ok {
		p.client.log.WithField("pair", from+"/"+to).Error("Exchange rate document has no rates block")
		return nil
	}

	rate, ok := rates[to].(float64)
	if !ok {
		p.client.log.WithField("pair", from+"/"+to).Error("Exchange rate not present for target currency")
		return nil
	}

	p.client.log.WithFields(logrus.Fields{
		"pair": from + "/" + to,
		"rate": rate,
	}).Info("Exchange rate fetched")

	return map[string]any{"conversion_rate": rate}
}
