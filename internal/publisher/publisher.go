// SPDX-License-Identifier: AGPL-3.0-only

// Package publisher owns the credentialed Twitter connection. Post never
// returns an error: the outcome is a bool, and every attempt (including
// short-circuited ones) leaves exactly one post_attempts row behind.
package publisher

import (
	"context"
	"database/sql"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/ChimeraCoder/anaconda"
	"github.com/google/uuid"
	"github.com/pulsebot/pulsebot/internal/config"
	"github.com/pulsebot/pulsebot/internal/database"
	"github.com/pulsebot/pulsebot/internal/metrics"
	"github.com/sirupsen/logrus"
)

// MaxPostLength is the platform character bound. Longer content is silently
// truncated, never rejected.
const MaxPostLength = 280

// tweetAPI is the slice of anaconda.TwitterApi the publisher needs.
type tweetAPI interface {
	PostTweet(status string, v url.Values) (anaconda.Tweet, error)
}

type Publisher struct {
	db      *database.Queries
	log     *logrus.Logger
	metrics *metrics.Collector
	api     tweetAPI
}

// New builds a publisher. With an incomplete credential set the publisher
// stays constructed but unusable: every Post fails fast without network I/O.
func New(db *database.Queries, log *logrus.Logger, mc *metrics.Collector, creds config.TwitterCredentials) *Publisher {
	p := &Publisher{
		db:      db,
		log:     log,
		metrics: mc,
	}

	if !creds.Complete() {
		log.Error("Twitter credentials incomplete, publisher disabled")
		return p
	}

	p.api = anaconda.NewTwitterApiWithCredentials(
		creds.AccessToken,
		creds.AccessTokenSecret,
		creds.ConsumerKey,
		creds.ConsumerSecret,
	)
	return p
}

// NewWithAPI wires an explicit client, used by tests.
func NewWithAPI(db *database.Queries, log *logrus.Logger, mc *metrics.Collector, api tweetAPI) *Publisher {
	return &Publisher{db: db, log: log, metrics: mc, api: api}
}

// Ready reports whether a credential set was resolved at construction.
func (p *Publisher) Ready() bool {
	return p.api != nil
}

// Post publishes content under a category. Exactly one remote call is made
// per invocation, with no retry; the persisted attempt reflects the content
// as transmitted (after truncation).
func (p *Publisher) Post(ctx context.Context, content string, category config.Category) bool {
	content = Truncate(content)

	if p.api == nil {
		p.log.WithField("category", category).Error("Post rejected: Twitter client not initialized")
		p.record(ctx, content, category, false, "twitter credentials not configured")
		return false
	}

	_, err := p.api.PostTweet(content, url.Values{})
	if err != nil {
		p.log.WithError(err).WithField("category", category).Error("Failed to post tweet")
		p.record(ctx, content, category, false, err.Error())
		return false
	}

	p.log.WithFields(logrus.Fields{
		"category": category,
		"preview":  preview(content),
	}).Info("Tweet posted")
	p.record(ctx, content, category, true, "")
	return true
}

// Truncate enforces the platform bound: oversized text becomes exactly
// MaxPostLength runes ending in the ellipsis marker.
func Truncate(content string) string {
	if utf8.RuneCountInString(content) <= MaxPostLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxPostLength-3]) + "..."
}

func (p *Publisher) record(ctx context.Context, content string, category config.Category, success bool, errText string) {
	errMsg := sql.NullString{}
	if errText != "" {
		errMsg = sql.NullString{String: errText, Valid: true}
	}

	_, err := p.db.CreatePostAttempt(ctx, database.CreatePostAttemptParams{
		ID:           uuid.New(),
		Content:      content,
		Category:     string(category),
		PostedAt:     time.Now().UTC(),
		Success:      success,
		ErrorMessage: errMsg,
	})
	if err != nil {
		p.log.WithError(err).Error("Failed to persist post attempt")
	}

	p.metrics.RecordPostAttempt(string(category), success)
}

func preview(content string) string {
	const max = 50
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
