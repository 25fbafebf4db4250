// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns schema creation and storage error classification.

# Schema

Four tables: events, event_dates, participants, responses. The DDL
exists per dialect (postgres for production, sqlite for development and
tests) and is applied idempotently at startup:

	if err := db.CreateSchema(conn, db.DialectSqlite); err != nil { ... }

# Soft deletion

Events are soft-deleted by setting deleted_at; every read path filters
on deleted_at IS NULL. Child rows (dates, participants, responses) are
deliberately retained when an event is soft-deleted - they become
unreachable through the read path but clearing deleted_at would restore
the event intact. The ON DELETE CASCADE clauses only matter if a row is
ever purged by hand.

# Error classification

IsUniqueViolation translates driver-specific unique-constraint failures
into a single signal; handlers map it to a 409.
*/
package db
