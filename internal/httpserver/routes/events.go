package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/httpserver/handlers"
	"github.com/curioapp/curio/internal/httpserver/mw"
)

func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	// No request timeout here: the stream stays open until the client
	// disconnects.
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/api/events", handlers.Events(d))
}
