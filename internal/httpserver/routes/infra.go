package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/httpserver/handlers"
	"github.com/curioapp/curio/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	sub := withTimeout(r, d).With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	sub.Get("/healthz", handlers.Healthz(d))
	sub.Get("/readyz", handlers.Readyz(d))
	sub.Get("/infra", handlers.Infra(d))
}
