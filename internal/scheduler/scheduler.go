// SPDX-License-Identifier: AGPL-3.0-only

// Package scheduler owns the recurring publish triggers and the background
// polling loop that drives the fetch→format→publish pipeline.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pulsebot/pulsebot/internal/config"
	"github.com/pulsebot/pulsebot/internal/format"
	"github.com/pulsebot/pulsebot/internal/provider"
	"github.com/sirupsen/logrus"
)

// PollInterval is how often pending triggers are checked.
const PollInterval = 60 * time.Second

// Poster is the publisher slice the scheduler dispatches through.
type Poster interface {
	Post(ctx context.Context, content string, category config.Category) bool
}

type Scheduler struct {
	Settings  *config.Store
	Weather   *provider.WeatherProvider
	Currency  *provider.CurrencyProvider
	News      *provider.NewsProvider
	Publisher Poster
	Log       *logrus.Logger

	Ticker   *time.Ticker
	StopChan chan bool

	mu       sync.Mutex
	active   bool
	running  bool
	triggers []*Trigger

	// now is swappable for tests.
	now func() time.Time
}

func New(settings *config.Store, weather *provider.WeatherProvider, currency *provider.CurrencyProvider, news *provider.NewsProvider, publisher Poster, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		Settings:  settings,
		Weather:   weather,
		Currency:  currency,
		News:      news,
		Publisher: publisher,
		Log:       log,
		StopChan:  make(chan bool, 1),
		now:       time.Now,
	}
}

// Refresh rebuilds the trigger set from the settings store. Safe to call at
// any time; with unchanged configuration the resulting set is identical.
func (s *Scheduler) Refresh(ctx context.Context) {
	schedule := map[config.Category]string{
		config.CategoryWeather:  s.Settings.Get(ctx, config.KeyScheduleWeather, config.DefaultScheduleWeather),
		config.CategoryCurrency: s.Settings.Get(ctx, config.KeyScheduleCurrency, config.DefaultScheduleCurrency),
		config.CategoryNews:     s.Settings.Get(ctx, config.KeyScheduleNews, config.DefaultScheduleNews),
	}

	now := s.now()
	var triggers []*Trigger
	for _, category := range []config.Category{config.CategoryWeather, config.CategoryCurrency, config.CategoryNews} {
		for _, tod := range ParseTimes(schedule[category]) {
			triggers = append(triggers, &Trigger{
				Category: category,
				At:       tod,
				NextRun:  nextOccurrence(tod, now),
			})
			s.Log.WithFields(logrus.Fields{
				"category": category,
				"at":       tod.String(),
			}).Info("Scheduled daily trigger")
		}
	}

	s.mu.Lock()
	s.triggers = triggers
	s.mu.Unlock()
}

// Triggers returns a snapshot of the registered triggers.
func (s *Scheduler) Triggers() []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]Trigger, 0, len(s.triggers))
	for _, t := range s.triggers {
		snapshot = append(snapshot, *t)
	}
	return snapshot
}

// Start launches the polling loop. Calling Start on an active scheduler is a
// no-op.
func (s *Scheduler) Start(interval time.Duration) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		s.Log.Warn("Scheduler already active")
		return
	}
	s.active = true
	s.mu.Unlock()

	s.Ticker = time.NewTicker(interval)
	ticker := s.Ticker
	go func() {
		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.StopChan:
				ticker.Stop()
				return
			}
		}
	}()
	s.Log.WithField("interval", interval).Info("Scheduler started")
}

// Stop signals the loop to exit. An in-flight dispatch is not interrupted;
// the loop leaves after it finishes the current iteration. The active flag
// flips here, so a repeated Stop is a no-op instead of a blocked send, and
// the buffered channel holds the token until the loop is ready for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		s.Log.Warn("Scheduler not active")
		return
	}
	s.active = false
	s.mu.Unlock()

	s.StopChan <- true
	s.Log.Info("Scheduler stopped")
}

func (s *Scheduler) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// tick fires every trigger whose slot has passed, in wall-clock order.
// Dispatch is synchronous inside the loop, so one slow call delays the rest
// of the pass; that is accepted for the scheduled path.
func (s *Scheduler) tick() {
	now := s.now()

	s.mu.Lock()
	var due []*Trigger
	for _, t := range s.triggers {
		if !t.NextRun.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRun.Before(due[j].NextRun) })
	for _, t := range due {
		t.advance(now)
	}
	s.mu.Unlock()

	for _, t := range due {
		s.Log.WithFields(logrus.Fields{
			"category": t.Category,
			"at":       t.At.String(),
		}).Info("Trigger fired")
		s.Dispatch(context.Background(), t.Category)
	}
}

// Dispatch runs one fetch→format→publish cycle for a category. Concurrent
// dispatches are collapsed: if one is already in progress the call is
// skipped. Failures are absorbed into logs; the cycle always returns the
// scheduler to idle.
func (s *Scheduler) Dispatch(ctx context.Context, category config.Category) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.Log.WithField("category", category).Warn("Dispatch already in progress, skipping")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	content := s.compose(ctx, category)
	return s.Publisher.Post(ctx, content, category)
}

// DispatchManual builds content for the chosen source category but records
// the attempt as an operator-triggered post.
func (s *Scheduler) DispatchManual(ctx context.Context, source config.Category) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.Log.WithField("category", source).Warn("Dispatch already in progress, skipping manual post")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	content := s.compose(ctx, source)
	return s.Publisher.Post(ctx, content, config.CategoryManual)
}

// compose runs the adapter and formatter for a category. A provider that
// came back empty still yields publishable fallback text.
func (s *Scheduler) compose(ctx context.Context, category config.Category) string {
	switch category {
	case config.CategoryWeather:
		city := s.Settings.Get(ctx, config.KeyWeatherCity, config.DefaultWeatherCity)
		doc := s.Weather.CurrentWeather(ctx, city)
		return format.Weather(doc, s.now())

	case config.CategoryCurrency:
		from := s.Settings.Get(ctx, config.KeyCurrencyFrom, config.DefaultCurrencyFrom)
		to := s.Settings.Get(ctx, config.KeyCurrencyTo, config.DefaultCurrencyTo)
		doc := s.Currency.ExchangeRate(ctx, from, to)
		return format.Currency(doc, from, to, s.now())

	case config.CategoryNews:
		newsCategory := s.Settings.Get(ctx, config.KeyNewsCategory, config.DefaultNewsCategory)
		country := s.Settings.Get(ctx, config.KeyNewsCountry, config.DefaultNewsCountry)
		doc := s.News.TopHeadlines(ctx, newsCategory, country)
		return format.News(doc)
	}

	s.Log.WithField("category", category).Error("No composer for category")
	return ""
}
