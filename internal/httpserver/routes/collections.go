package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/httpserver/handlers"
	"github.com/curioapp/curio/internal/httpserver/mw"
)

func init() { Register(registerCollections) }

func registerCollections(r chi.Router, d deps.Deps) {
	sub := withTimeout(r, d).With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Get("/api/collections", handlers.ListCollections(d))
	sub.Post("/api/collections", handlers.UpsertCollection(d))
	sub.Delete("/api/collections/{id}", handlers.DeleteCollection(d))
	sub.Delete("/api/collections/{id}/products/{productId}", handlers.RemoveFromCollection(d))
}
