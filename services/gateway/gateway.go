// Package gateway exposes the provisioner adapters over HTTP so pipeline
// stages that cannot link the Go client can still resolve addresses, flip
// netboot flags, and reconcile preseeds.
package gateway

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"provsync/pkg/bus"
	"provsync/pkg/provisioner"
	"provsync/services/journal"
)

const (
	defaultMaxDelay = time.Hour
	requestTimeout  = 10 * time.Second
	recordTimeout   = 5 * time.Second
)

// Inventory is the slice of the provisioner client the gateway drives.
// *provisioner.Client satisfies it.
type Inventory interface {
	LookupMachine(ctx context.Context, name string) (provisioner.Machine, error)
	MachineIPv4(ctx context.Context, machineID int, ifaceName string) (string, error)
	DisableNetbootAfter(ctx context.Context, name string, delay time.Duration) (provisioner.Machine, error)
	UpsertPreseed(ctx context.Context, p provisioner.PreseedParams) (provisioner.Preseed, provisioner.UpsertOutcome, error)
}

// Store holds external dependencies required by the gateway. Journal, Bus
// and DB are optional.
type Store struct {
	Inventory Inventory
	Journal   *journal.Journal
	Bus       *bus.Bus
	DB        *pgxpool.Pool
}

// Config controls runtime behaviour for the gateway handlers.
type Config struct {
	// DefaultInterface is consulted when a caller does not name one.
	DefaultInterface string
	// MaxDelay caps accepted netboot delays so a typo cannot park a
	// toggle for days.
	MaxDelay time.Duration
	// BaseContext governs background netboot toggles; it should outlive
	// individual requests and is cancelled on shutdown.
	BaseContext context.Context
	// Registry receives the gateway metrics; nil uses the default
	// prometheus registerer.
	Registry prometheus.Registerer
	Logger   *log.Logger
}

// API wires dependencies and configuration for the HTTP handlers.
type API struct {
	store   *Store
	config  Config
	metrics *metrics
	logger  *log.Logger

	// afterNetboot, when set, runs once each background netboot toggle
	// settles. Tests use it to observe completion.
	afterNetboot func()
}

// New initialises the gateway with defaults applied to the configuration.
func New(store *Store, cfg Config) (*API, error) {
	if store == nil || store.Inventory == nil {
		return nil, errors.New("inventory client is required")
	}

	if cfg.DefaultInterface == "" {
		cfg.DefaultInterface = provisioner.DefaultInterface
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &API{
		store:   store,
		config:  cfg,
		metrics: newMetrics(cfg.Registry),
		logger:  logger,
	}, nil
}

// recordContext yields a context for journal writes and event publishes
// that outlives parent cancellation. A toggle settling during shutdown
// must still leave its completion record behind.
func recordContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), recordTimeout)
}

func (a *API) record(ctx context.Context, operation, target, outcome string, detail map[string]any) {
	if a.store.Journal == nil {
		return
	}
	if err := a.store.Journal.Record(ctx, operation, target, outcome, detail); err != nil {
		a.logger.Printf("WARN journal %s %s: %v", operation, target, err)
	}
}
