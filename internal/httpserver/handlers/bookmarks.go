package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/sources/catalog"
)

type toggleResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// ListBookmarks returns the persistent bookmark set.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, err := d.Store.GetBookmarks(r.Context())
		if err != nil {
			d.Logger.Error("list bookmarks failed", logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bookmarks)
	}
}

// ToggleBookmark adds the posted product to the bookmark set, or removes
// it when already present. The body is a raw product tile; field drift is
// normalized before the lookup.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw catalog.RawProduct
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		product := d.Normalizer.Normalize(raw)
		if product.ProductID == 0 {
			http.Error(w, "product id is required", http.StatusBadRequest)
			return
		}

		bookmarked, err := d.Curation.ToggleBookmark(r.Context(), product)
		if err != nil {
			d.Logger.Error("toggle bookmark failed",
				logger.Int64("product_id", product.ProductID), logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toggleResponse{Bookmarked: bookmarked})
	}
}

// RemoveBookmark drops one product from the bookmark set. Removing an
// absent product is a no-op and still returns 204.
func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		if err := d.Curation.RemoveBookmark(r.Context(), productID); err != nil {
			d.Logger.Error("remove bookmark failed",
				logger.Int64("product_id", productID), logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
