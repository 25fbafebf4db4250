// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/random-mongol/uulzah.link/auth"
	"github.com/random-mongol/uulzah.link/cliparse"
	"github.com/random-mongol/uulzah.link/locale"
	"github.com/random-mongol/uulzah.link/middleware"
	"github.com/random-mongol/uulzah.link/models"
)

type AccessHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAccessHandler(database *sql.DB, cfg cliparse.Config) *AccessHandler {
	return &AccessHandler{db: database, cfg: cfg}
}

// VerifyAccess handles POST /events/{id}/verify-access
//
// The edit token is the capability that gates mutation at the API; the
// fingerprint comparison here is a second, UI-level tier: clients use
// the answer to decide whether to show edit controls. A token mismatch
// is an ordinary 403, never a crash.
func (h *AccessHandler) VerifyAccess(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	var req models.VerifyAccessRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyInvalidJSON)
		return
	}

	if req.EditToken == "" || req.Fingerprint == "" {
		middleware.ErrorResponse(w, r, http.StatusBadRequest, locale.KeyFieldsRequired)
		return
	}

	var storedToken string
	var storedFingerprint sql.NullString
	err := h.db.QueryRow(`
		SELECT edit_token, creator_fingerprint
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`, eventID).Scan(&storedToken, &storedFingerprint)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, r, http.StatusForbidden, locale.KeyInvalidToken)
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, r, http.StatusInternalServerError, locale.KeyServerError)
		return
	}

	if !auth.TokensMatch(req.EditToken, storedToken) {
		middleware.ErrorResponse(w, r, http.StatusForbidden, locale.KeyInvalidToken)
		return
	}

	// A stored NULL fingerprint can never match: token alone is not
	// enough for UI edit access.
	canEdit := storedFingerprint.Valid && storedFingerprint.String == req.Fingerprint

	messageKey := locale.KeyDeviceMismatch
	if canEdit {
		messageKey = locale.KeyAccessGranted
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyAccessResponse{
		CanEdit: canEdit,
		Message: locale.Message(locale.FromRequest(r), messageKey),
	})
}
