// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Supported dialects. The driver is chosen in main; the schema and
// error classification here are the only other dialect-aware spots.
const (
	DialectPostgres = "postgres"
	DialectSqlite   = "sqlite"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var ddl string
	switch dialect {
	case DialectPostgres:
		ddl = postgresSchema
	case DialectSqlite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unknown database dialect %q", dialect)
	}

	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const postgresSchema = `
-- Events: one scheduling poll each. Soft-deleted via deleted_at; rows
-- are never physically removed.
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    location TEXT,
    owner_name TEXT,
    edit_token TEXT NOT NULL,
    creator_fingerprint TEXT,
    timezone TEXT NOT NULL DEFAULT 'Asia/Ulaanbaatar',
    view_count INTEGER NOT NULL DEFAULT 0,
    response_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    deleted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_deleted_at ON events(deleted_at);

-- Candidate date slots
CREATE TABLE IF NOT EXISTS event_dates (
    id BIGSERIAL PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    start_datetime TIMESTAMP NOT NULL,
    end_datetime TIMESTAMP,
    is_all_day BOOLEAN NOT NULL DEFAULT FALSE,
    display_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_event_dates_event_id ON event_dates(event_id);

-- Participants: the UNIQUE (event_id, name) constraint is the
-- authoritative guard against duplicate names; the handler-level
-- existence check is only a friendlier first line.
CREATE TABLE IF NOT EXISTS participants (
    id BIGSERIAL PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    comment TEXT,
    response_token TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (event_id, name)
);

CREATE INDEX IF NOT EXISTS idx_participants_event_id ON participants(event_id);

-- Per-date availability statuses
CREATE TABLE IF NOT EXISTS responses (
    participant_id BIGINT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    event_date_id BIGINT NOT NULL REFERENCES event_dates(id) ON DELETE CASCADE,
    status TEXT NOT NULL CHECK (status IN ('yes', 'no', 'maybe')),
    PRIMARY KEY (participant_id, event_date_id)
);

CREATE INDEX IF NOT EXISTS idx_responses_event_date_id ON responses(event_date_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    location TEXT,
    owner_name TEXT,
    edit_token TEXT NOT NULL,
    creator_fingerprint TEXT,
    timezone TEXT NOT NULL DEFAULT 'Asia/Ulaanbaatar',
    view_count INTEGER NOT NULL DEFAULT 0,
    response_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_deleted_at ON events(deleted_at);

CREATE TABLE IF NOT EXISTS event_dates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    start_datetime TIMESTAMP NOT NULL,
    end_datetime TIMESTAMP,
    is_all_day BOOLEAN NOT NULL DEFAULT FALSE,
    display_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_event_dates_event_id ON event_dates(event_id);

CREATE TABLE IF NOT EXISTS participants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    comment TEXT,
    response_token TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_id, name)
);

CREATE INDEX IF NOT EXISTS idx_participants_event_id ON participants(event_id);

CREATE TABLE IF NOT EXISTS responses (
    participant_id INTEGER NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    event_date_id INTEGER NOT NULL REFERENCES event_dates(id) ON DELETE CASCADE,
    status TEXT NOT NULL CHECK (status IN ('yes', 'no', 'maybe')),
    PRIMARY KEY (participant_id, event_date_id)
);

CREATE INDEX IF NOT EXISTS idx_responses_event_date_id ON responses(event_date_id);
`
