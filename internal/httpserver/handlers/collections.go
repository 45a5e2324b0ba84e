package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/curation"
	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/sources/catalog"
)

type upsertCollectionRequest struct {
	Name     string               `json:"name"`
	Products []catalog.RawProduct `json:"products"`
	// Append-only mode: reject with 404 instead of creating when the
	// named collection does not exist.
	AppendOnly bool `json:"appendOnly,omitempty"`
}

type upsertCollectionResponse struct {
	Outcome domain.Outcome `json:"outcome"`
}

// ListCollections returns every named collection with its products.
func ListCollections(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collections, err := d.Store.GetCollections(r.Context())
		if err != nil {
			d.Logger.Error("list collections failed", logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(collections)
	}
}

// UpsertCollection creates a collection or appends products to an
// existing one, matching names case-insensitively.
func UpsertCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertCollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		products := d.Normalizer.NormalizeAll(req.Products)

		outcome, err := d.Curation.AddToCollection(r.Context(), req.Name, products, !req.AppendOnly)
		if err != nil {
			if errors.Is(err, curation.ErrCollectionNotFound) {
				http.Error(w, "collection not found", http.StatusNotFound)
				return
			}
			d.Logger.Error("upsert collection failed",
				logger.String("name", req.Name), logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(upsertCollectionResponse{Outcome: outcome})
	}
}

// DeleteCollection removes a collection by id.
func DeleteCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := d.Curation.DeleteCollection(r.Context(), id); err != nil {
			if errors.Is(err, curation.ErrCollectionNotFound) {
				http.Error(w, "collection not found", http.StatusNotFound)
				return
			}
			d.Logger.Error("delete collection failed", logger.String("collection_id", id), logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveFromCollection drops one product from a collection.
func RemoveFromCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		if err := d.Curation.RemoveFromCollection(r.Context(), id, productID); err != nil {
			if errors.Is(err, curation.ErrCollectionNotFound) {
				http.Error(w, "collection not found", http.StatusNotFound)
				return
			}
			d.Logger.Error("remove from collection failed",
				logger.String("collection_id", id),
				logger.Int64("product_id", productID), logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
