package gateway

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (a *API) handleJournalList(w http.ResponseWriter, r *http.Request) {
	if a.store.Journal == nil {
		respondError(w, http.StatusNotImplemented, errors.New("journal is not configured"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	entries, err := a.store.Journal.Recent(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (a *API) handleJournalGet(w http.ResponseWriter, r *http.Request) {
	if a.store.Journal == nil {
		respondError(w, http.StatusNotImplemented, errors.New("journal is not configured"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "entryID")))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid journal entry id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	entry, err := a.store.Journal.Get(ctx, id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		respondError(w, http.StatusNotFound, errors.New("journal entry not found"))
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entry": entry})
}
