package gateway

import (
	"errors"
	"net/http"
	"strings"

	"provsync/pkg/bus"
	"provsync/pkg/provisioner"
	"provsync/services/journal"
)

func (a *API) handlePreseedUpsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Type        string  `json:"type"`
		Content     *string `json:"content"`
		Description string  `json:"description"`
		KnownGood   bool    `json:"known_good"`
		Public      bool    `json:"public"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if req.Type == "" {
		req.Type = "preseed"
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	preseed, outcome, err := a.store.Inventory.UpsertPreseed(ctx, provisioner.PreseedParams{
		Name:        req.Name,
		Type:        req.Type,
		Content:     req.Content,
		Description: req.Description,
		KnownGood:   req.KnownGood,
		Public:      req.Public,
	})

	a.metrics.observe(journal.OpPreseedUpsert, err)
	if err != nil {
		a.record(ctx, journal.OpPreseedUpsert, req.Name, "error", map[string]any{
			"error": err.Error(),
		})
		respondError(w, statusForError(err), err)
		return
	}

	a.record(ctx, journal.OpPreseedUpsert, req.Name, string(outcome), map[string]any{
		"preseed_id": preseed.ID,
	})

	switch outcome {
	case provisioner.OutcomeCreated:
		a.publish(ctx, bus.SubjectPreseedCreated, req.Name, map[string]any{"preseed_id": preseed.ID})
	case provisioner.OutcomeUpdated:
		a.publish(ctx, bus.SubjectPreseedUpdated, req.Name, map[string]any{"preseed_id": preseed.ID})
	}

	status := http.StatusOK
	if outcome == provisioner.OutcomeCreated {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]any{
		"preseed": preseed,
		"outcome": outcome,
	})
}
