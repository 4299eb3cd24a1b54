// SPDX-License-Identifier: AGPL-3.0-only
package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PostAttempt is one durable record per publish attempt, written by the
// publisher immediately after the remote call settles. Rows are immutable.
type PostAttempt struct {
	ID           uuid.UUID
	Content      string
	Category     string
	PostedAt     time.Time
	Success      bool
	ErrorMessage sql.NullString
}

// APICallLog is one record per external fetch, success or failure.
// StatusCode is 0 when no response was received.
type APICallLog struct {
	ID           uuid.UUID
	ProviderName string
	Endpoint     string
	StatusCode   int32
	ResponseTime float64
	ErrorMessage sql.NullString
	CreatedAt    time.Time
}

// Setting is a key/value row of the runtime configuration store.
type Setting struct {
	Key         string
	Value       string
	Description sql.NullString
	UpdatedAt   time.Time
}
