// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the
uulzah.link API.

# Type Categories

  - Request types: JSON bodies accepted by the handlers
    (CreateEventRequest, UpdateEventRequest, SubmitResponseRequest, ...)
  - Response types: JSON bodies the handlers return
  - Domain types: rows as stored (Event, EventDate, Participant)
  - Results types: the aggregated payload served by /results

# Conventions

Request fields use the camelCase keys the web client sends
(startDatetime, participantName); stored rows and aggregates use the
snake_case column names they come from (start_datetime, yes_count).

Secrets never leave the server through these types: Event.EditToken,
Event.Fingerprint, and Participant.ResponseToken are tagged json:"-";
the create and submit responses return tokens through dedicated fields
exactly once.
*/
package models
