package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	sferrors "storefront/internal/errors"
	"storefront/internal/hours"
	"storefront/internal/shops"
)

type shopSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Open bool   `json:"open"`
}

type shopStatus struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	hours.Status
}

// RegisterShopRoutes exposes the live open/closed state of every shop. now
// is the clock used for evaluation.
func RegisterShopRoutes(r chi.Router, store shops.Store, evaluator *hours.Evaluator, now func() time.Time) {
	r.Get("/api/shops", func(w http.ResponseWriter, req *http.Request) {
		list, err := store.List(req.Context())
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, err, "failed to list shops")
			return
		}
		at := now()
		summaries := make([]shopSummary, 0, len(list))
		for _, shop := range list {
			summaries = append(summaries, shopSummary{
				ID:   shop.ID,
				Name: shop.Name,
				Open: evaluator.IsOpen(shop.OpeningHours, at),
			})
		}
		writeJSON(w, req, http.StatusOK, summaries)
	})

	r.Get("/api/shops/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		shop, err := store.Get(req.Context(), chi.URLParam(req, "id"))
		switch {
		case errors.Is(err, sferrors.ErrShopNotFound):
			writeError(w, req, http.StatusNotFound, err, "shop not found")
			return
		case err != nil:
			writeError(w, req, http.StatusInternalServerError, err, "failed to load shop")
			return
		}
		writeJSON(w, req, http.StatusOK, shopStatus{
			ID:     shop.ID,
			Name:   shop.Name,
			Status: evaluator.Status(shop.OpeningHours, now()),
		})
	})
}
