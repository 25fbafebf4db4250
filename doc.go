// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the uulzah.link API server.

uulzah.link is a scheduling-poll service: a creator proposes candidate
meeting dates, shares a short link, and participants mark per-date
availability (yes / maybe / no). The server aggregates responses and
surfaces the best-fitting date.

# Starting the Server

The server reads configuration from a .env file, environment variables,
or CLI flags:

	DATABASE_URL=file:uulzah.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL (-base-url): public origin used in share links

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (events, access, responses, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Public id and capability token generation
  - db: Schema creation and storage error classification
  - locale: Localized (mn/en) user-facing messages
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
