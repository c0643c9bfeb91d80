package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"provsync/pkg/bus"
	"provsync/pkg/db"
	"provsync/pkg/provisioner"
	"provsync/pkg/telemetry"
	"provsync/services/gateway"
	"provsync/services/journal"
)

func main() {
	if err := run("provsync-gw"); err != nil {
		log.New(os.Stderr, "", log.LstdFlags).Fatal(err)
	}
}

func run(serviceName string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, middleware, logger, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "%s: telemetry shutdown error: %v\n", serviceName, err)
		}
	}()

	baseURL := strings.TrimSpace(os.Getenv("PROVSYNC_URL"))
	token := strings.TrimSpace(os.Getenv("PROVSYNC_TOKEN"))
	if baseURL == "" || token == "" {
		return errors.New("PROVSYNC_URL and PROVSYNC_TOKEN are required")
	}

	inventory, err := provisioner.New(baseURL, token, provisioner.WithTracing())
	if err != nil {
		return fmt.Errorf("init provisioner client: %w", err)
	}

	store := &gateway.Store{Inventory: inventory}

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		pool, err := db.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		orm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return fmt.Errorf("open orm: %w", err)
		}

		store.DB = pool
		if store.Journal, err = journal.New(orm, pool); err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
	} else {
		logger.Printf("WARN DATABASE_URL not set, journal disabled")
	}

	if natsURL := strings.TrimSpace(os.Getenv("NATS_URL")); natsURL != "" {
		eventBus, err := bus.Connect(natsURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer eventBus.Close()
		store.Bus = eventBus
	} else {
		logger.Printf("WARN NATS_URL not set, events disabled")
	}

	api, err := gateway.New(store, gateway.Config{
		DefaultInterface: os.Getenv("PROVSYNC_DEFAULT_INTERFACE"),
		BaseContext:      ctx,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.Routes())

	listen := os.Getenv("PROVSYNC_LISTEN")
	if listen == "" {
		listen = ":8080"
	}

	server := &http.Server{
		Addr:    listen,
		Handler: middleware(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "%s: server shutdown error: %v\n", serviceName, err)
		}
	}()

	logger.Printf("INFO listening on %s", server.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("ERROR server failed: %v", err)
		return err
	}

	return nil
}
