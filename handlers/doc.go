// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the uulzah.link API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - EventHandler: Event lifecycle (create, get, update, soft-delete)
  - AccessHandler: Edit-access verification (token + device fingerprint)
  - ResponseHandler: Participant response submission
  - ResultsHandler: Vote aggregation and share previews

Handlers are created via constructor functions that accept *sql.DB and Config:

	eventHandler := handlers.NewEventHandler(db, cfg)

# Event Lifecycle

	POST /events                → CreateEvent (returns eventId + editToken)
	GET /events/{id}            → GetEvent (public, bumps view_count)
	PATCH /events/{id}          → UpdateEvent (metadata, optional date replace)
	DELETE /events/{id}         → DeleteEvent (soft delete)

Mutating operations require the X-Edit-Token header. The token is
issued exactly once at creation and never regenerated.

# Authorization Tiers

The edit token is the capability that actually gates mutation. The
creator fingerprint stored at creation is a second, UX-level tier
checked only by POST /events/{id}/verify-access: clients ask it whether
to show edit controls. A caller holding the token can mutate regardless
of device; this split is deliberate and documented in DESIGN.md.

# Responses and Results

	POST /events/{id}/responses → SubmitResponse (one name per event)
	GET /events/{id}/results    → GetResults (tallies + response matrix)
	GET /events/{id}/preview    → GetPreview (share-card payload)

Aggregation is implemented in results.go: tallyDates counts yes/maybe/no
per slot and bestDate picks the winner (most yes votes, ties broken by
display order).

# Writes

Multi-row writes (event + dates, participant + responses) run inside a
single transaction; a failed second step rolls back the first rather
than compensating after the fact.
*/
package handlers
