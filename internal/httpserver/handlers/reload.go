package handlers

import (
	"net/http"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/logger"
)

// Reload triggers a manual reload of the origin normalization profiles.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ProfileReloadTrigger == nil {
			http.Error(w, "profile reload disabled", http.StatusNotImplemented)
			return
		}

		select {
		case d.ProfileReloadTrigger <- struct{}{}:
			d.Logger.Info("manual profile reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("reload triggered\n"))
		default:
			d.Logger.Warn("profile reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("reload already in progress\n"))
		}
	}
}
