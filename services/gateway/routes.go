package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"provsync/pkg/db"
)

// Routes constructs the chi router containing all gateway endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/machines/{name}/ip", a.handleMachineIP)
		r.Post("/machines/{name}/netboot/disable", a.handleNetbootDisable)
		r.Post("/preseeds", a.handlePreseedUpsert)
		r.Get("/journal", a.handleJournalList)
		r.Get("/journal/{entryID}", a.handleJournalGet)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", a.handleReady)

	return r
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.store.DB != nil {
		if err := db.Ping(r.Context(), a.store.DB); err != nil {
			respondError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
