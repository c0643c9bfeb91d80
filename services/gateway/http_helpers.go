package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"provsync/pkg/provisioner"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// statusForError maps the client's tagged error variants onto HTTP status
// codes. Transport failures against the provisioner surface as 502 so
// callers can tell "you asked wrong" from "upstream is unwell".
func statusForError(err error) int {
	var (
		notFound  *provisioner.NotFoundError
		ambiguous *provisioner.AmbiguousError
		missing   *provisioner.MissingContentError
		transport *provisioner.TransportError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &ambiguous):
		return http.StatusConflict
	case errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, requestTimeout)
}
