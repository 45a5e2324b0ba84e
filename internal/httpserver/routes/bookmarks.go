package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/httpserver/handlers"
	"github.com/curioapp/curio/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	sub := withTimeout(r, d).With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Get("/api/bookmarks", handlers.ListBookmarks(d))
	sub.Post("/api/bookmarks/toggle", handlers.ToggleBookmark(d))
	sub.Delete("/api/bookmarks/{productId}", handlers.RemoveBookmark(d))
}
