package provisioner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"
)

type netbootServer struct {
	mu      sync.Mutex
	putAt   []time.Time
	lastPut map[string]any
}

func (s *netbootServer) handler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/machine":
			_, _ = w.Write([]byte(`[{"id": 9, "name": "node1", "netboot_enabled": true, "hostname": "node1.lab"}]`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/machine/9":
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("read PUT body: %v", err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(body, &decoded); err != nil {
				t.Errorf("decode PUT body: %v", err)
			}
			s.mu.Lock()
			s.putAt = append(s.putAt, time.Now())
			s.lastPut = decoded
			s.mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (s *netbootServer) puts() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.putAt...)
}

func (s *netbootServer) lastBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPut
}

func TestDisableNetbootAfter(t *testing.T) {
	srv := &netbootServer{}
	client := newTestClient(t, srv.handler(t))

	const delay = 150 * time.Millisecond
	start := time.Now()

	machine, err := client.DisableNetbootAfter(context.Background(), "node1", delay)
	if err != nil {
		t.Fatalf("DisableNetbootAfter() error = %v", err)
	}

	puts := srv.puts()
	if len(puts) != 1 {
		t.Fatalf("got %d PUTs, want exactly 1", len(puts))
	}
	if elapsed := puts[0].Sub(start); elapsed < delay {
		t.Fatalf("PUT issued after %v, before the %v delay elapsed", elapsed, delay)
	}

	if machine.NetbootEnabled {
		t.Fatal("returned machine still has netboot enabled")
	}
	body := srv.lastBody()
	if body["netboot_enabled"] != false {
		t.Fatalf("PUT body netboot_enabled = %v, want false", body["netboot_enabled"])
	}
	// Full-object update: service-owned fields ride along.
	if body["hostname"] != "node1.lab" {
		t.Fatalf("PUT body dropped hostname: %v", body)
	}
}

func TestDisableNetbootAfterCancelledDuringWait(t *testing.T) {
	srv := &netbootServer{}
	client := newTestClient(t, srv.handler(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.DisableNetbootAfter(ctx, "node1", 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("DisableNetbootAfter() error = %v, want context.Canceled", err)
	}
	if got := len(srv.puts()); got != 0 {
		t.Fatalf("got %d PUTs after cancellation, want 0", got)
	}
}

func TestDisableNetbootAfterUnknownMachine(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := client.DisableNetbootAfter(context.Background(), "ghost", 0)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("DisableNetbootAfter() error = %v, want *NotFoundError", err)
	}
}

func TestDisableNetbootAfterRejectedUpdate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id": 9, "name": "node1", "netboot_enabled": true}]`))
			return
		}
		http.Error(w, "conflict", http.StatusConflict)
	}))

	_, err := client.DisableNetbootAfter(context.Background(), "node1", 0)
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("DisableNetbootAfter() error = %v, want *TransportError", err)
	}
	if transport.StatusCode != http.StatusConflict {
		t.Fatalf("TransportError status = %d, want %d", transport.StatusCode, http.StatusConflict)
	}
}
