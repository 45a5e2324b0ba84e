package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/curioapp/curio/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Mode     string `json:"mode,omitempty"`
	Sessions *int   `json:"sessions,omitempty"`
	Impact   string `json:"impact,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	StorageMode string                     `json:"storage_mode"`
	Components  map[string]componentStatus `json:"components"`
}

// Infra reports component-level status for operators: which store
// backend is active and how many sessions are live.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		sessions := d.Sessions.Count()

		storeStatus := checkStore(d)

		components := map[string]componentStatus{
			"store": storeStatus,
			"sessions": {
				OK:       true,
				Sessions: &sessions,
			},
			"assistant": {
				OK:   true,
				Mode: "proxy",
			},
		}

		response := infraResponse{
			StorageMode: storageMode(storeStatus),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func storageMode(storeStatus componentStatus) string {
	if storeStatus.Mode == "memory" {
		return "volatile"
	}
	if !storeStatus.OK {
		return "degraded"
	}
	return "persistent"
}

func checkStore(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "memory",
			Impact: "state-lost-on-restart",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "redis",
			Impact: "writes-failing",
			Error:  "unreachable",
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "redis",
	}
}
