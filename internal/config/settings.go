// SPDX-License-Identifier: AGPL-3.0-only
package config

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/pulsebot/pulsebot/internal/database"
	"github.com/sirupsen/logrus"
)

// Settings keys persisted in the settings table. The dashboard config form
// writes these; the scheduler, providers and publisher read them.
const (
	KeyTwitterConsumerKey       = "twitter_consumer_key"
	KeyTwitterConsumerSecret    = "twitter_consumer_secret"
	KeyTwitterAccessToken       = "twitter_access_token"
	KeyTwitterAccessTokenSecret = "twitter_access_token_secret"
	KeyOpenWeatherAPIKey        = "openweather_api_key"
	KeyNewsAPIKey               = "news_api_key"
	KeyWeatherCity              = "weather_city"
	KeyCurrencyFrom             = "currency_from"
	KeyCurrencyTo               = "currency_to"
	KeyNewsCategory             = "news_category"
	KeyNewsCountry              = "news_country"
	KeyScheduleWeather          = "tweet_schedule_weather"
	KeyScheduleCurrency         = "tweet_schedule_currency"
	KeyScheduleNews             = "tweet_schedule_news"
)

// Defaults applied when neither environment nor settings store has a value.
const (
	DefaultWeatherCity      = "Buenos Aires"
	DefaultCurrencyFrom     = "USD"
	DefaultCurrencyTo       = "ARS"
	DefaultNewsCategory     = "general"
	DefaultNewsCountry      = "ar"
	DefaultScheduleWeather  = "08:00,14:00,20:00"
	DefaultScheduleCurrency = "09:00,15:00"
	DefaultScheduleNews     = "12:00,18:00"
)

// Store is the runtime configuration store backed by the settings table.
// Reads degrade to the caller's default when the table is unreachable, so a
// broken store never takes a component down with it.
type Store struct {
	DB  *database.Queries
	Log *logrus.Logger
}

func NewStore(db *database.Queries, log *logrus.Logger) *Store {
	return &Store{DB: db, Log: log}
}

func (s *Store) Get(ctx context.Context, key, defaultValue string) string {
	setting, err := s.DB.GetSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.Log.WithError(err).WithField("key", key).Warn("Settings lookup failed, using default")
		}
		return defaultValue
	}
	if setting.Value == "" {
		return defaultValue
	}
	return setting.Value
}

func (s *Store) Set(ctx context.Context, key, value, description string) error {
	desc := sql.NullString{}
	if description != "" {
		desc = sql.NullString{String: description, Valid: true}
	}
	_, err := s.DB.UpsertSetting(ctx, database.UpsertSettingParams{
		Key:         key,
		Value:       value,
		Description: desc,
		UpdatedAt:   time.Now().UTC(),
	})
	return err
}

// TwitterCredentials is the OAuth1 four-tuple for the posting platform.
type TwitterCredentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether all four fields are present. The publisher
// refuses network I/O until this holds.
func (c TwitterCredentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// ResolveTwitterCredentials reads the four-tuple from the environment and
// falls back to the settings store only when the environment has none of it.
func ResolveTwitterCredentials(ctx context.Context, store *Store) TwitterCredentials {
	creds := TwitterCredentials{
		ConsumerKey:       os.Getenv("TWITTER_CONSUMER_KEY"),
		ConsumerSecret:    os.Getenv("TWITTER_CONSUMER_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
	}

	if creds.ConsumerKey == "" {
		creds.ConsumerKey = store.Get(ctx, KeyTwitterConsumerKey, "")
		creds.ConsumerSecret = store.Get(ctx, KeyTwitterConsumerSecret, "")
		creds.AccessToken = store.Get(ctx, KeyTwitterAccessToken, "")
		creds.AccessTokenSecret = store.Get(ctx, KeyTwitterAccessTokenSecret, "")
	}

	return creds
}

// ResolveAPIKey reads a provider API key from the environment first and the
// settings store second. Empty result means the adapter is credential-less.
func ResolveAPIKey(ctx context.Context, store *Store, envVar, settingKey string) string {
	if key := os.Getenv(envVar); key != "" {
		return key
	}
	return store.Get(ctx, settingKey, "")
}
