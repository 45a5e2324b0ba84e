package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/session"
)

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type startSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// StartSession opens a new chat session and returns its identifier.
func StartSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := d.Sessions.Start(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(startSessionResponse{SessionID: id})
	}
}

// EndSession closes a session and drops its cached results.
func EndSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := d.Sessions.End(r.Context(), id); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			d.Logger.Error("end session failed", logger.String("session_id", id), logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// Messages returns the full message log of a session, oldest first.
func Messages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		msgs, err := d.Sessions.Messages(id)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(msgs)
	}
}

// Chat submits one user message and returns the assistant reply for it.
func Chat(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
			http.Error(w, "sessionId and message are required", http.StatusBadRequest)
			return
		}

		reply, err := d.Sessions.SubmitUserMessage(r.Context(), req.SessionID, req.Message)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotFound):
				http.Error(w, "session not found", http.StatusNotFound)
			case errors.Is(err, session.ErrBusy):
				http.Error(w, "a message is already being processed for this session", http.StatusConflict)
			default:
				d.Logger.Error("chat turn failed", logger.String("session_id", req.SessionID), logger.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}
}
