// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/random-mongol/uulzah.link/auth"
	"github.com/random-mongol/uulzah.link/cliparse"
	"github.com/random-mongol/uulzah.link/db"
	"github.com/random-mongol/uulzah.link/locale"
	"github.com/random-mongol/uulzah.link/middleware"
	"github.com/random-mongol/uulzah.link/models"
)

type ResponseHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResponseHandler(database *sql.DB, cfg cliparse.Config) *ResponseHandler {
	return &ResponseHandler{db: database, cfg: cfg}
}

// SubmitResponse handles POST /events/{id}/responses
//
// A name is a one-time identity per event: resubmitting the same name
// is a conflict, never a merge. The handler-level existence check gives
// the friendly error; the UNIQUE (event_id, name) constraint is the
// authority when two submissions race.
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidJSON)
		return
	}

	name, ok := validateParticipantName(req.ParticipantName)
	if !ok {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidName)
		return
	}

	var exists string
	err := h.db.QueryRow(`
		SELECT id FROM events WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&exists)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusNotFound, locale.KeyNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	// Keep only entries with a real status; unmarked dates are simply
	// not persisted. Duplicate date ids collapse to the last entry.
	statuses := make(map[int64]string)
	for _, in := range req.Responses {
		if in.Status == "" {
			continue
		}
		if !validStatus(in.Status) {
			middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidStatus)
			return
		}
		statuses[in.EventDateID] = in.Status
	}

	if len(statuses) > 0 {
		validDates, err := eventDateIDs(h.db, eventID)
		if err != nil {
			slog.Error("failed to query event dates", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
		for dateID := range statuses {
			if !validDates[dateID] {
				middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidDateID)
				return
			}
		}
	}

	// Friendly pre-check; the unique constraint below is authoritative
	var existingID int64
	err = h.db.QueryRow(`
		SELECT id FROM participants WHERE event_id = $1 AND name = $2
	`, eventID, name).Scan(&existingID)

	if err == nil {
		middleware.ErrorResponse(w, r, http.StatusConflict, locale.KeyNameTaken)
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	responseToken, err := auth.NewSecretToken()
	if err != nil {
		slog.Error("failed to generate response token", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	// Participant and responses commit together - no participant row
	// persists without its responses.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	defer rollback(tx)

	var participantID int64
	err = tx.QueryRow(`
		INSERT INTO participants (event_id, name, comment, response_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, eventID, name, nullString(req.Comment), responseToken, time.Now()).Scan(&participantID)

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, r, http.StatusConflict, locale.KeyNameTaken)
			return
		}
		slog.Error("failed to insert participant", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	// Deterministic insert order keeps storage traces stable
	dateIDs := make([]int64, 0, len(statuses))
	for dateID := range statuses {
		dateIDs = append(dateIDs, dateID)
	}
	sort.Slice(dateIDs, func(i, j int) bool { return dateIDs[i] < dateIDs[j] })

	for _, dateID := range dateIDs {
		_, err = tx.Exec(`
			INSERT INTO responses (participant_id, event_date_id, status)
			VALUES ($1, $2, $3)
		`, participantID, dateID, statuses[dateID])

		if err != nil {
			slog.Error("failed to insert response", "error", err)
			middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit response submission", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	// Best-effort response counter
	if _, err := h.db.Exec(`UPDATE events SET response_count = response_count + 1 WHERE id = $1`, eventID); err != nil {
		slog.Warn("failed to increment response count", "event_id", eventID, "error", err)
	}

	slog.Info("response submitted", "event_id", eventID, "participant_id", participantID, "marked_dates", len(statuses))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponseResponse{
		ParticipantID: participantID,
		ResponseToken: responseToken,
		Message:       locale.Message(locale.FromRequest(r), locale.KeyResponseSubmitted),
	})
}

// eventDateIDs returns the set of slot ids belonging to an event.
func eventDateIDs(database *sql.DB, eventID string) (map[int64]bool, error) {
	rows, err := database.Query(`SELECT id FROM event_dates WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}

	return ids, rows.Err()
}
