// SPDX-License-Identifier: AGPL-3.0-only
package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type CreatePostAttemptParams struct {
	ID           uuid.UUID
	Content      string
	Category     string
	PostedAt     time.Time
	Success      bool
	ErrorMessage sql.NullString
}

func (q *Queries) CreatePostAttempt(ctx context.Context, arg CreatePostAttemptParams) (PostAttempt, error) {
	const query = `
		INSERT INTO post_attempts (id, content, category, posted_at, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, content, category, posted_at, success, error_message
	`
	var a PostAttempt
	err := q.db.QueryRowContext(ctx, query,
		arg.ID, arg.Content, arg.Category, arg.PostedAt, arg.Success, arg.ErrorMessage,
	).Scan(&a.ID, &a.Content, &a.Category, &a.PostedAt, &a.Success, &a.ErrorMessage)
	return a, err
}

func (q *Queries) GetRecentPostAttempts(ctx context.Context, limit int32) ([]PostAttempt, error) {
	const query = `
		SELECT id, content, category, posted_at, success, error_message
		FROM post_attempts
		ORDER BY posted_at DESC
		LIMIT $1
	`
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []PostAttempt
	for rows.Next() {
		var a PostAttempt
		if err := rows.Scan(&a.ID, &a.Content, &a.Category, &a.PostedAt, &a.Success, &a.ErrorMessage); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

type GetPostAttemptsPageParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) GetPostAttemptsPage(ctx context.Context, arg GetPostAttemptsPageParams) ([]PostAttempt, error) {
	const query = `
		SELECT id, content, category, posted_at, success, error_message
		FROM post_attempts
		ORDER BY posted_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := q.db.QueryContext(ctx, query, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []PostAttempt
	for rows.Next() {
		var a PostAttempt
		if err := rows.Scan(&a.ID, &a.Content, &a.Category, &a.PostedAt, &a.Success, &a.ErrorMessage); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (q *Queries) GetAllPostAttempts(ctx context.Context) ([]PostAttempt, error) {
	const query = `
		SELECT id, content, category, posted_at, success, error_message
		FROM post_attempts
		ORDER BY posted_at DESC
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []PostAttempt
	for rows.Next() {
		var a PostAttempt
		if err := rows.Scan(&a.ID, &a.Content, &a.Category, &a.PostedAt, &a.Success, &a.ErrorMessage); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (q *Queries) GetLatestPostAttempt(ctx context.Context) (PostAttempt, error) {
	const query = `
		SELECT id, content, category, posted_at, success, error_message
		FROM post_attempts
		ORDER BY posted_at DESC
		LIMIT 1
	`
	var a PostAttempt
	err := q.db.QueryRowContext(ctx, query).
		Scan(&a.ID, &a.Content, &a.Category, &a.PostedAt, &a.Success, &a.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return PostAttempt{}, ErrNotFound
	}
	return a, err
}

func (q *Queries) CountPostAttempts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_attempts`).Scan(&count)
	return count, err
}

func (q *Queries) CountPostAttemptsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_attempts WHERE posted_at >= $1`, since,
	).Scan(&count)
	return count, err
}

func (q *Queries) CountPostAttemptsByOutcome(ctx context.Context, success bool) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_attempts WHERE success = $1`, success,
	).Scan(&count)
	return count, err
}

type CreateAPICallLogParams struct {
	ID           uuid.UUID
	ProviderName string
	Endpoint     string
	StatusCode   int32
	ResponseTime float64
	ErrorMessage sql.NullString
	CreatedAt    time.Time
}

func (q *Queries) CreateAPICallLog(ctx context.Context, arg CreateAPICallLogParams) (APICallLog, error) {
	const query = `
		INSERT INTO api_call_logs (id, provider_name, endpoint, status_code, response_time, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, provider_name, endpoint, status_code, response_time, error_message, created_at
	`
	var l APICallLog
	err := q.db.QueryRowContext(ctx, query,
		arg.ID, arg.ProviderName, arg.Endpoint, arg.StatusCode, arg.ResponseTime, arg.ErrorMessage, arg.CreatedAt,
	).Scan(&l.ID, &l.ProviderName, &l.Endpoint, &l.StatusCode, &l.ResponseTime, &l.ErrorMessage, &l.CreatedAt)
	return l, err
}

func (q *Queries) GetRecentAPICallLogs(ctx context.Context, limit int32) ([]APICallLog, error) {
	const query = `
		SELECT id, provider_name, endpoint, status_code, response_time, error_message, created_at
		FROM api_call_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []APICallLog
	for rows.Next() {
		var l APICallLog
		if err := rows.Scan(&l.ID, &l.ProviderName, &l.Endpoint, &l.StatusCode, &l.ResponseTime, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	const query = `
		SELECT key, value, description, updated_at
		FROM settings
		WHERE key = $1
	`
	var s Setting
	err := q.db.QueryRowContext(ctx, query, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Setting{}, ErrNotFound
	}
	return s, err
}

type UpsertSettingParams struct {
	Key         string
	Value       string
	Description sql.NullString
	UpdatedAt   time.Time
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) (Setting, error) {
	const query = `
		INSERT INTO settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, settings.description),
			updated_at = EXCLUDED.updated_at
		RETURNING key, value, description, updated_at
	`
	var s Setting
	err := q.db.QueryRowContext(ctx, query,
		arg.Key, arg.Value, arg.Description, arg.UpdatedAt,
	).Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListSettings(ctx context.Context) ([]Setting, error) {
	const query = `
		SELECT key, value, description, updated_at
		FROM settings
		ORDER BY key
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
