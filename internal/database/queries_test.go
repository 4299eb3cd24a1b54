// SPDX-License-Identifier: AGPL-3.0-only
package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newMock(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreatePostAttempt(t *testing.T) {
	q, mock := newMock(t)

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO post_attempts`).
		WithArgs(id, "hola", "weather", now, true, sql.NullString{}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "category", "posted_at", "success", "error_message"}).
			AddRow(id, "hola", "weather", now, true, nil))

	attempt, err := q.CreatePostAttempt(context.Background(), CreatePostAttemptParams{
		ID:       id,
		Content:  "hola",
		Category: "weather",
		PostedAt: now,
		Success:  true,
	})
	if err != nil {
		t.Fatalf("CreatePostAttempt: %v", err)
	}
	if attempt.Category != "weather" || !attempt.Success {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetRecentPostAttemptsOrdering(t *testing.T) {
	q, mock := newMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "content", "category", "posted_at", "success", "error_message"}).
		AddRow(uuid.New(), "segundo", "news", now, true, nil).
		AddRow(uuid.New(), "primero", "weather", now.Add(-time.Hour), false, "timeout")

	mock.ExpectQuery(`FROM post_attempts\s+ORDER BY posted_at DESC\s+LIMIT \$1`).
		WithArgs(int32(10)).
		WillReturnRows(rows)

	attempts, err := q.GetRecentPostAttempts(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecentPostAttempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[1].ErrorMessage.String != "timeout" {
		t.Fatalf("error message not scanned: %+v", attempts[1])
	}
}

func TestGetLatestPostAttemptNotFound(t *testing.T) {
	q, mock := newMock(t)

	mock.ExpectQuery(`FROM post_attempts\s+ORDER BY posted_at DESC\s+LIMIT 1`).
		WillReturnError(sql.ErrNoRows)

	_, err := q.GetLatestPostAttempt(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAPICallLog(t *testing.T) {
	q, mock := newMock(t)

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO api_call_logs`).
		WithArgs(id, "OpenWeatherMap", "https://api.openweathermap.org/data/2.5/weather",
			int32(0), 1.25, sql.NullString{String: "context deadline exceeded", Valid: true}, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_name", "endpoint", "status_code", "response_time", "error_message", "created_at"}).
			AddRow(id, "OpenWeatherMap", "https://api.openweathermap.org/data/2.5/weather", 0, 1.25, "context deadline exceeded", now))

	logEntry, err := q.CreateAPICallLog(context.Background(), CreateAPICallLogParams{
		ID:           id,
		ProviderName: "OpenWeatherMap",
		Endpoint:     "https://api.openweathermap.org/data/2.5/weather",
		StatusCode:   0,
		ResponseTime: 1.25,
		ErrorMessage: sql.NullString{String: "context deadline exceeded", Valid: true},
		CreatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAPICallLog: %v", err)
	}
	if logEntry.StatusCode != 0 || !logEntry.ErrorMessage.Valid {
		t.Fatalf("unexpected log entry: %+v", logEntry)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	q, mock := newMock(t)

	now := time.Now().UTC()

	t.Run("get missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM settings\s+WHERE key = \$1`).
			WithArgs("weather_city").
			WillReturnError(sql.ErrNoRows)

		_, err := q.GetSetting(context.Background(), "weather_city")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("upsert", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO settings`).
			WithArgs("weather_city", "Rosario", sql.NullString{String: "Ciudad para el clima", Valid: true}, now).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "description", "updated_at"}).
				AddRow("weather_city", "Rosario", "Ciudad para el clima", now))

		setting, err := q.UpsertSetting(context.Background(), UpsertSettingParams{
			Key:         "weather_city",
			Value:       "Rosario",
			Description: sql.NullString{String: "Ciudad para el clima", Valid: true},
			UpdatedAt:   now,
		})
		if err != nil {
			t.Fatalf("UpsertSetting: %v", err)
		}
		if setting.Value != "Rosario" {
			t.Fatalf("unexpected setting: %+v", setting)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountPostAttempts(t *testing.T) {
	q, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM post_attempts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := q.CountPostAttempts(context.Background())
	if err != nil {
		t.Fatalf("CountPostAttempts: %v", err)
	}
	if count != 42 {
		t.Fatalf("expected 42, got %d", count)
	}
}
