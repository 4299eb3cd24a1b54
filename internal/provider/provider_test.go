// SPDX-License-Identifier: AGPL-3.0-only
package provider

import (
	"context"
	"database/sql/driver"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pulsebot/pulsebot/internal/config"
	"github.com/pulsebot/pulsebot/internal/database"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(t *testing.T) (*Client, *config.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	queries := database.New(db)
	log := testLogger()
	return NewClient(queries, log, nil), config.NewStore(queries, log), mock
}

// errorContaining matches a persisted error message by substring; a fetch
// that succeeded carries a NULL error instead.
type errorContaining struct {
	substr string
}

func (m errorContaining) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && strings.Contains(s, m.substr)
}

// expectCallLog matches the single api_call_logs insert every fetch must
// produce. Status and error are matched, latency and identifiers are not.
func expectCallLog(mock sqlmock.Sqlmock, provider string, status int32, errPattern string) *sqlmock.ExpectedQuery {
	var errArg driver.Value = sqlmock.AnyArg()
	if errPattern != "" {
		errArg = errorContaining{substr: errPattern}
	}
	return mock.ExpectQuery(`INSERT INTO api_call_logs`).
		WithArgs(sqlmock.AnyArg(), provider, sqlmock.AnyArg(), status, sqlmock.AnyArg(), errArg, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_name", "endpoint", "status_code", "response_time", "error_message", "created_at"}))
}

func TestCurrentWeatherSuccess(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret-key")

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name":"Buenos Aires","main":{"temp":22.5,"feels_like":21.0,"humidity":48},"weather":[{"main":"Clear","description":"cielo claro"}]}`)
	}))
	defer server.Close()

	client, store, mock := newTestClient(t)
	expectCallLog(mock, "OpenWeatherMap", 200, "")

	p := NewWeatherProvider(client, store)
	p.BaseURL = server.URL

	doc := p.CurrentWeather(context.Background(), "Buenos Aires")
	if doc == nil {
		t.Fatal("expected a document")
	}
	if doc["name"] != "Buenos Aires" {
		t.Fatalf("unexpected document: %v", doc)
	}

	for _, fragment := range []string{"q=Buenos+Aires", "appid=secret-key", "units=metric", "lang=es"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("query %q missing %q", gotQuery, fragment)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCurrentWeatherNon200LogsStatus(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret-key")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "city not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, store, mock := newTestClient(t)
	expectCallLog(mock, "OpenWeatherMap", 404, "unexpected response")

	p := NewWeatherProvider(client, store)
	p.BaseURL = server.URL

	if doc := p.CurrentWeather(context.Background(), "Atlantis"); doc != nil {
		t.Fatalf("expected nil document, got %v", doc)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("a failed fetch must still leave one call log row: %v", err)
	}
}

func TestCurrentWeatherTransportFailureLogsStatusZero(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret-key")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, store, mock := newTestClient(t)
	expectCallLog(mock, "OpenWeatherMap", 0, "connection refused")

	p := NewWeatherProvider(client, store)
	p.BaseURL = server.URL

	if doc := p.CurrentWeather(context.Background(), "Buenos Aires"); doc != nil {
		t.Fatalf("expected nil document, got %v", doc)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCurrentWeatherMissingKeyStillLogs(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	client, store, mock := newTestClient(t)

	// Key lookup falls through to the settings table.
	mock.ExpectQuery(`FROM settings\s+WHERE key = \$1`).
		WithArgs(config.KeyOpenWeatherAPIKey).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "description", "updated_at"}).
			AddRow(config.KeyOpenWeatherAPIKey, "", nil, time.Now().UTC()))
	expectCallLog(mock, "OpenWeatherMap", 0, "API key not configured")

	p := NewWeatherProvider(client, store)

	if doc := p.CurrentWeather(context.Background(), "Buenos Aires"); doc != nil {
		t.Fatalf("expected nil document, got %v", doc)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("a skipped fetch must still leave one call log row: %v", err)
	}
}

func TestCurrentWeatherDecodeFailure(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret-key")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"name": "Buenos Aires"`)
	}))
	defer server.Close()

	client, store, mock := newTestClient(t)
	expectCallLog(mock, "OpenWeatherMap", 200, "failed to decode")

	p := NewWeatherProvider(client, store)
	p.BaseURL = server.URL

	if doc := p.CurrentWeather(context.Background(), "Buenos Aires"); doc != nil {
		t.Fatalf("expected nil document, got %v", doc)
	}
}

func TestExchangeRateNormalizesRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/latest/USD") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"base":"USD","rates":{"ARS":1050.25,"EUR":0.92}}`)
	}))
	defer server.Close()

	client, _, mock := newTestClient(t)
	expectCallLog(mock, "ExchangeRate-API", 200, "")

	p := NewCurrencyProvider(client)
	p.FreeBaseURL = server.URL

	doc := p.ExchangeRate(context.Background(), "USD", "ARS")
	if doc == nil {
		t.Fatal("expected a document")
	}
	if rate, ok := doc["conversion_rate"].(float64); !ok || rate != 1050.25 {
		t.Fatalf("unexpected conversion_rate: %v", doc["conversion_rate"])
	}
}

func TestExchangeRateMissingTargetCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"base":"USD","rates":{"EUR":0.92}}`)
	}))
	defer server.Close()

	client, _, mock := newTestClient(t)
	expectCallLog(mock, "ExchangeRate-API", 200, "")

	p := NewCurrencyProvider(client)
	p.FreeBaseURL = server.URL

	if doc := p.ExchangeRate(context.Background(), "USD", "ARS"); doc != nil {
		t.Fatalf("expected nil when the target rate is absent, got %v", doc)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("the fetch itself succeeded and must be logged: %v", err)
	}
}

func TestTopHeadlines(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "news-key")

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"ok","articles":[{"title":"Titular","source":{"name":"Diario"},"url":"https://example.com/n/1"}]}`)
	}))
	defer server.Close()

	client, store, mock := newTestClient(t)
	expectCallLog(mock, "NewsAPI", 200, "")

	p := NewNewsProvider(client, store)
	p.BaseURL = server.URL

	doc := p.TopHeadlines(context.Background(), "general", "ar")
	if doc == nil {
		t.Fatal("expected a document")
	}

	for _, fragment := range []string{"apiKey=news-key", "category=general", "country=ar", "pageSize=5"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("query %q missing %q", gotQuery, fragment)
		}
	}
}

func TestSearchQueriesEverything(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "news-key")

	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"ok","articles":[]}`)
	}))
	defer server.Close()

	client, store, mock := newTestClient(t)
	expectCallLog(mock, "NewsAPI", 200, "")

	p := NewNewsProvider(client, store)
	p.BaseURL = server.URL

	if doc := p.Search(context.Background(), "elecciones", "es", 3); doc == nil {
		t.Fatal("expected a document")
	}

	if gotPath != "/everything" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	for _, fragment := range []string{"q=elecciones", "language=es", "sortBy=publishedAt", "pageSize=3"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("query %q missing %q", gotQuery, fragment)
		}
	}
}
