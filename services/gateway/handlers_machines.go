package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"provsync/pkg/bus"
	"provsync/services/journal"
)

func (a *API) handleMachineIP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, errors.New("machine name is required"))
		return
	}

	iface := strings.TrimSpace(r.URL.Query().Get("interface"))
	if iface == "" {
		iface = a.config.DefaultInterface
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	machine, err := a.store.Inventory.LookupMachine(ctx, name)
	if err == nil {
		var ip string
		ip, err = a.store.Inventory.MachineIPv4(ctx, machine.ID, iface)
		if err == nil {
			a.metrics.observe(journal.OpMachineIP, nil)
			a.record(ctx, journal.OpMachineIP, name, "ok", map[string]any{
				"machine_id": machine.ID,
				"interface":  iface,
				"ip":         ip,
			})
			respondJSON(w, http.StatusOK, map[string]any{
				"machine_id": machine.ID,
				"name":       machine.Name,
				"interface":  iface,
				"ip":         ip,
			})
			return
		}
	}

	a.metrics.observe(journal.OpMachineIP, err)
	a.record(ctx, journal.OpMachineIP, name, "error", map[string]any{
		"interface": iface,
		"error":     err.Error(),
	})
	respondError(w, statusForError(err), err)
}

func (a *API) handleNetbootDisable(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, errors.New("machine name is required"))
		return
	}

	var req struct {
		DelaySeconds int `json:"delay_seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.DelaySeconds < 0 {
		respondError(w, http.StatusBadRequest, errors.New("delay_seconds must not be negative"))
		return
	}
	delay := time.Duration(req.DelaySeconds) * time.Second
	if delay > a.config.MaxDelay {
		respondError(w, http.StatusBadRequest,
			fmt.Errorf("delay_seconds exceeds the maximum of %d", int(a.config.MaxDelay.Seconds())))
		return
	}

	// Validate the name up front so callers get a synchronous 404/409;
	// the toggle itself re-resolves after the delay to PUT a fresh
	// representation.
	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	machine, err := a.store.Inventory.LookupMachine(ctx, name)
	if err != nil {
		a.metrics.observe(journal.OpNetbootDisable, err)
		respondError(w, statusForError(err), err)
		return
	}

	// The wait must survive the HTTP request: an accepted toggle runs on
	// the gateway's base context, not the handler's.
	go a.disableNetboot(name, delay)

	respondJSON(w, http.StatusAccepted, map[string]any{
		"machine_id":    machine.ID,
		"name":          machine.Name,
		"delay_seconds": req.DelaySeconds,
		"scheduled":     true,
	})
}

func (a *API) disableNetboot(name string, delay time.Duration) {
	machine, err := a.store.Inventory.DisableNetbootAfter(a.config.BaseContext, name, delay)

	// The toggle may settle while the base context is shutting down;
	// journal and publish on a detached context so the outcome survives.
	ctx, cancel := recordContext(a.config.BaseContext)
	defer cancel()

	a.metrics.observe(journal.OpNetbootDisable, err)
	if err != nil {
		a.logger.Printf("ERROR netboot disable %s: %v", name, err)
		a.record(ctx, journal.OpNetbootDisable, name, "error", map[string]any{
			"delay_seconds": int(delay.Seconds()),
			"error":         err.Error(),
		})
	} else {
		a.record(ctx, journal.OpNetbootDisable, name, "ok", map[string]any{
			"machine_id":    machine.ID,
			"delay_seconds": int(delay.Seconds()),
		})
		a.publish(ctx, bus.SubjectNetbootDisabled, name, map[string]any{
			"machine_id": machine.ID,
		})
	}

	if a.afterNetboot != nil {
		a.afterNetboot()
	}
}
