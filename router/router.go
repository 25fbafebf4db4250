// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/random-mongol/uulzah.link/cliparse"
	"github.com/random-mongol/uulzah.link/handlers"
	"github.com/random-mongol/uulzah.link/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(db, cfg)
	accessHandler := handlers.NewAccessHandler(db, cfg)
	responseHandler := handlers.NewResponseHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Event lifecycle
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("PATCH /events/{id}", middleware.WithLogging(eventHandler.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", middleware.WithLogging(eventHandler.DeleteEvent))

	// Edit-access verification (token travels in the body here)
	mux.HandleFunc("POST /events/{id}/verify-access", middleware.WithLogging(accessHandler.VerifyAccess))

	// Participant responses and aggregated results (public)
	mux.HandleFunc("POST /events/{id}/responses", middleware.WithLogging(responseHandler.SubmitResponse))
	mux.HandleFunc("GET /events/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /events/{id}/preview", middleware.WithLogging(resultsHandler.GetPreview))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("uulzah.link API v1"))
	})

	return mux
}
