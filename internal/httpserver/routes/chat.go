package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/httpserver/handlers"
	"github.com/curioapp/curio/internal/httpserver/mw"
)

func init() { Register(registerChat) }

func registerChat(r chi.Router, d deps.Deps) {
	sub := withTimeout(r, d).With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Post("/api/chat", handlers.Chat(d))
	sub.Post("/api/session", handlers.StartSession(d))
	sub.Delete("/api/session/{id}", handlers.EndSession(d))
	sub.Get("/api/session/{id}/messages", handlers.Messages(d))
}
