// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/random-mongol/uulzah.link/cliparse"
	"github.com/random-mongol/uulzah.link/locale"
	"github.com/random-mongol/uulzah.link/middleware"
	"github.com/random-mongol/uulzah.link/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(database *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: database, cfg: cfg}
}

// GetResults handles GET /events/{id}/results
//
// Returns per-date yes/maybe/no tallies, every participant's response
// map, and the best-fitting date id.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	var event models.ResultsEvent
	var description sql.NullString
	err := h.db.QueryRow(`
		SELECT id, title, description
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&event.ID, &event.Title, &description)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusNotFound, locale.KeyNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}
	event.Description = stringPtr(description)

	dates, err := loadEventDates(h.db, eventID)
	if err != nil {
		slog.Error("failed to query event dates", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	participants, err := loadParticipants(h.db, eventID)
	if err != nil {
		slog.Error("failed to query participants", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	responses, err := loadResponses(h.db, eventID)
	if err != nil {
		slog.Error("failed to query responses", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	tallies := tallyDates(dates, responses)

	results := make([]models.ParticipantResult, len(participants))
	for i, p := range participants {
		result := models.ParticipantResult{
			ID:        p.ID,
			Name:      p.Name,
			Comment:   p.Comment,
			Responses: make(map[int64]string),
		}
		for _, resp := range responses {
			if resp.participantID == p.ID {
				result.Responses[resp.eventDateID] = resp.status
			}
		}
		results[i] = result
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Event:             event,
		Dates:             tallies,
		Participants:      results,
		TotalParticipants: len(participants),
		BestDateID:        bestDate(tallies),
	})
}

// GetPreview handles GET /events/{id}/preview
// Returns compact event data for share-card display.
func (h *ResultsHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	var title string
	var responseCount int
	var createdAt time.Time
	err := h.db.QueryRow(`
		SELECT title, response_count, created_at
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&title, &responseCount, &createdAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusNotFound, locale.KeyNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	var dateCount int
	err = h.db.QueryRow(`SELECT COUNT(*) FROM event_dates WHERE event_id = $1`, eventID).Scan(&dateCount)
	if err != nil {
		slog.Error("failed to count event dates", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EventPreviewResponse{
		Title:         title,
		DateCount:     dateCount,
		ResponseCount: responseCount,
		CreatedAgo:    humanize.Time(createdAt),
		ShareURL:      h.cfg.BaseURL + "/e/" + eventID,
	})
}

// responseRow is one raw availability row.
type responseRow struct {
	participantID int64
	eventDateID   int64
	status        string
}

// tallyDates counts yes/maybe/no per slot. Slots keep the display
// order they came in; a slot nobody voted on reports zero counts.
func tallyDates(dates []models.EventDate, responses []responseRow) []models.DateTally {
	tallies := make([]models.DateTally, len(dates))
	for i, d := range dates {
		tallies[i] = models.DateTally{
			ID:            d.ID,
			StartDatetime: d.StartDatetime,
			EndDatetime:   d.EndDatetime,
			IsAllDay:      d.IsAllDay,
			DisplayOrder:  d.DisplayOrder,
		}
	}

	index := make(map[int64]int, len(tallies))
	for i, t := range tallies {
		index[t.ID] = i
	}

	for _, r := range responses {
		i, ok := index[r.eventDateID]
		if !ok {
			continue
		}
		switch r.status {
		case models.StatusYes:
			tallies[i].YesCount++
		case models.StatusMaybe:
			tallies[i].MaybeCount++
		case models.StatusNo:
			tallies[i].NoCount++
		}
	}

	return tallies
}

// bestDate picks the slot with the most yes votes. The sort is stable
// over display order, so ties resolve to the earlier slot.
func bestDate(tallies []models.DateTally) *int64 {
	if len(tallies) == 0 {
		return nil
	}

	ranked := make([]models.DateTally, len(tallies))
	copy(ranked, tallies)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].YesCount > ranked[j].YesCount
	})

	id := ranked[0].ID
	return &id
}

// loadParticipants returns an event's participants in creation order.
func loadParticipants(database *sql.DB, eventID string) ([]models.Participant, error) {
	rows, err := database.Query(`
		SELECT id, event_id, name, comment, created_at
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at, id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		var comment sql.NullString
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &comment, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Comment = stringPtr(comment)
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// loadResponses returns all availability rows for an event.
func loadResponses(database *sql.DB, eventID string) ([]responseRow, error) {
	rows, err := database.Query(`
		SELECT r.participant_id, r.event_date_id, r.status
		FROM responses r
		JOIN participants p ON r.participant_id = p.id
		WHERE p.event_id = $1
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []responseRow{}
	for rows.Next() {
		var r responseRow
		if err := rows.Scan(&r.participantID, &r.eventDateID, &r.status); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}

	return responses, rows.Err()
}
