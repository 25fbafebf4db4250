// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/random-mongol/uulzah.link/auth"
	"github.com/random-mongol/uulzah.link/cliparse"
	"github.com/random-mongol/uulzah.link/locale"
	"github.com/random-mongol/uulzah.link/middleware"
	"github.com/random-mongol/uulzah.link/models"
)

// EditTokenHeader carries the edit capability on mutating calls. The
// value is a bearer secret and must never appear in logs.
const EditTokenHeader = "X-Edit-Token"

type EventHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewEventHandler(database *sql.DB, cfg cliparse.Config) *EventHandler {
	return &EventHandler{db: database, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidJSON)
		return
	}

	// Validate everything before the first write
	title, ok := validateTitle(req.Title)
	if !ok {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidTitle)
		return
	}
	if !validateDescription(req.Description) {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyDescriptionTooLong)
		return
	}
	spans, key, ok := validateDates(req.Dates)
	if !ok {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, key)
		return
	}

	eventID, err := auth.NewPublicID()
	if err != nil {
		slog.Error("failed to generate event ID", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	editToken, err := auth.NewSecretToken()
	if err != nil {
		slog.Error("failed to generate edit token", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	// Event and its dates commit together - a failure anywhere leaves
	// no orphan event behind.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	defer rollback(tx)

	_, err = tx.Exec(`
		INSERT INTO events (id, title, description, location, owner_name, edit_token,
		                    creator_fingerprint, timezone, view_count, response_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9)
	`, eventID, title, nullString(req.Description), nullString(req.Location),
		nullString(req.OwnerName), editToken, nullString(req.Fingerprint),
		models.DefaultTimezone, time.Now())

	if err != nil {
		slog.Error("failed to insert event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	for i, span := range spans {
		_, err = tx.Exec(`
			INSERT INTO event_dates (event_id, start_datetime, end_datetime, is_all_day, display_order)
			VALUES ($1, $2, $3, $4, $5)
		`, eventID, span.start, nullTime(span.end), span.allDay, i)

		if err != nil {
			slog.Error("failed to insert event date", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit event creation", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	slog.Info("event created", "event_id", eventID, "date_count", len(spans))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID:   eventID,
		EditToken: editToken,
	})
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !auth.ValidPublicID(eventID) {
		middleware.ErrorResponse(w, r, http.StatusNotFound, locale.KeyNotFound)
		return
	}

	var resp models.GetEventResponse
	var description, location, ownerName sql.NullString
	err := h.db.QueryRow(`
		SELECT id, title, description, location, owner_name, timezone
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&resp.ID, &resp.Title, &description, &location, &ownerName, &resp.Timezone)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusNotFound, locale.KeyNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	resp.Description = stringPtr(description)
	resp.Location = stringPtr(location)
	resp.OwnerName = stringPtr(ownerName)

	dates, err := loadEventDates(h.db, eventID)
	if err != nil {
		slog.Error("failed to query event dates", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	resp.Dates = dates

	// Best-effort view counter; a failed increment never fails the read
	if _, err := h.db.Exec(`UPDATE events SET view_count = view_count + 1 WHERE id = $1`, eventID); err != nil {
		slog.Warn("failed to increment view count", "event_id", eventID, "error", err)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// UpdateEvent handles PATCH /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	editToken := r.Header.Get(EditTokenHeader)
	if editToken == "" {
		middleware.ErrorResponse(w, r, http.StatusUnauthorized, locale.KeyTokenRequired)
		return
	}

	var req models.UpdateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidJSON)
		return
	}

	title, ok := validateTitle(req.Title)
	if !ok {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidTitle)
		return
	}
	if !validateDescription(req.Description) {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyDescriptionTooLong)
		return
	}

	// Dates are optional: nil means a metadata-only edit that leaves
	// existing slots untouched.
	var spans []dateSpan
	if req.Dates != nil {
		var key locale.Key
		spans, key, ok = validateDates(*req.Dates)
		if !ok {
			middleware.ErrorResponse(w, r, http.StatusBadRequest, key)
			return
		}
	}

	var storedToken string
	err := h.db.QueryRow(`
		SELECT edit_token FROM events WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&storedToken)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusForbidden, locale.KeyInvalidToken)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	if !auth.TokensMatch(editToken, storedToken) {
		middleware.ErrorResponse(w, r, http.StatusForbidden, locale.KeyInvalidToken)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	defer rollback(tx)

	_, err = tx.Exec(`
		UPDATE events SET title = $1, description = $2 WHERE id = $3
	`, title, nullString(req.Description), eventID)

	if err != nil {
		slog.Error("failed to update event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	// Location and owner name are only touched when the payload carries
	// them; an absent field keeps the stored value.
	if req.Location != nil {
		if _, err := tx.Exec(`UPDATE events SET location = $1 WHERE id = $2`,
			nullString(*req.Location), eventID); err != nil {
			slog.Error("failed to update event location", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
	}
	if req.OwnerName != nil {
		if _, err := tx.Exec(`UPDATE events SET owner_name = $1 WHERE id = $2`,
			nullString(*req.OwnerName), eventID); err != nil {
			slog.Error("failed to update event owner", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
	}

	if req.Dates != nil {
		if err := reconcileDates(tx, eventID, spans); err != nil {
			slog.Error("failed to reconcile event dates", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit event update", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	slog.Info("event updated", "event_id", eventID, "dates_replaced", req.Dates != nil)

	event, err := loadEvent(h.db, eventID)
	if err != nil {
		slog.Error("failed to reload event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	resp := models.UpdateEventResponse{Success: true, Event: event}
	if req.Dates != nil {
		dates, err := loadEventDates(h.db, eventID)
		if err != nil {
			slog.Error("failed to reload event dates", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
		resp.Dates = dates
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	editToken := r.Header.Get(EditTokenHeader)
	if editToken == "" {
		middleware.ErrorResponse(w, r, http.StatusUnauthorized, locale.KeyTokenRequired)
		return
	}

	// Three distinct failures here: unknown id, already deleted, and
	// token mismatch.
	var storedToken string
	var deletedAt sql.NullTime
	err := h.db.QueryRow(`
		SELECT edit_token, deleted_at FROM events WHERE id = $1
	`, eventID).Scan(&storedToken, &deletedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusNotFound, locale.KeyNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	if deletedAt.Valid {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyAlreadyDeleted)
		return
	}
	if !auth.TokensMatch(editToken, storedToken) {
		middleware.ErrorResponse(w, r, http.StatusForbidden, locale.KeyInvalidToken)
		return
	}

	_, err = h.db.Exec(`
		UPDATE events SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL
	`, time.Now(), eventID)

	if err != nil {
		slog.Error("failed to soft-delete event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	slog.Info("event deleted", "event_id", eventID)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteEventResponse{Success: true})
}

// reconcileDates replaces an event's stored slots with the submitted
// set: payload rows carrying a known id are updated, rows missing from
// the payload are deleted, rows without an id are inserted, and
// display_order is rewritten to the payload's array index throughout.
func reconcileDates(tx *sql.Tx, eventID string, spans []dateSpan) error {
	rows, err := tx.Query(`SELECT id FROM event_dates WHERE event_id = $1`, eventID)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[int64]bool, len(spans))
	for i, span := range spans {
		if span.id != 0 && existing[span.id] {
			_, err = tx.Exec(`
				UPDATE event_dates
				SET start_datetime = $1, end_datetime = $2, is_all_day = $3, display_order = $4
				WHERE id = $5 AND event_id = $6
			`, span.start, nullTime(span.end), span.allDay, i, span.id, eventID)
			if err != nil {
				return err
			}
			kept[span.id] = true
			continue
		}

		// New slot, or an id that no longer exists: insert fresh and
		// let storage assign the id.
		_, err = tx.Exec(`
			INSERT INTO event_dates (event_id, start_datetime, end_datetime, is_all_day, display_order)
			VALUES ($1, $2, $3, $4, $5)
		`, eventID, span.start, nullTime(span.end), span.allDay, i)
		if err != nil {
			return err
		}
	}

	for id := range existing {
		if kept[id] {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM event_dates WHERE id = $1 AND event_id = $2`, id, eventID); err != nil {
			return err
		}
	}

	return nil
}

// loadEvent fetches a live event row.
func loadEvent(database *sql.DB, eventID string) (models.Event, error) {
	var event models.Event
	var description, location, ownerName, fingerprint sql.NullString
	err := database.QueryRow(`
		SELECT id, title, description, location, owner_name, edit_token,
		       creator_fingerprint, timezone, view_count, response_count, created_at
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&event.ID, &event.Title, &description, &location, &ownerName,
		&event.EditToken, &fingerprint, &event.Timezone,
		&event.ViewCount, &event.ResponseCount, &event.CreatedAt)
	if err != nil {
		return models.Event{}, err
	}
	event.Description = stringPtr(description)
	event.Location = stringPtr(location)
	event.OwnerName = stringPtr(ownerName)
	event.Fingerprint = stringPtr(fingerprint)
	return event, nil
}

// loadEventDates returns an event's slots in display order.
func loadEventDates(database *sql.DB, eventID string) ([]models.EventDate, error) {
	rows, err := database.Query(`
		SELECT id, event_id, start_datetime, end_datetime, is_all_day, display_order
		FROM event_dates
		WHERE event_id = $1
		ORDER BY display_order
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []models.EventDate{}
	for rows.Next() {
		var d models.EventDate
		var end sql.NullTime
		if err := rows.Scan(&d.ID, &d.EventID, &d.StartDatetime, &end, &d.IsAllDay, &d.DisplayOrder); err != nil {
			return nil, err
		}
		if end.Valid {
			t := end.Time
			d.EndDatetime = &t
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}

// rollback discards an uncommitted transaction. A rollback that itself
// fails is logged loudly: it means storage may hold a half-applied
// write.
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		slog.Error("rollback failed, storage may be inconsistent", "error", err)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
