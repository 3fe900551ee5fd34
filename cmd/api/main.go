package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Werneck0live/mm-store/internal/address"
	"github.com/Werneck0live/mm-store/internal/admin"
	"github.com/Werneck0live/mm-store/internal/broker"
	"github.com/Werneck0live/mm-store/internal/config"
	"github.com/Werneck0live/mm-store/internal/handlers"
	"github.com/Werneck0live/mm-store/internal/repository"
)

// cmd/api/main.go
func main() {
	cfg := config.Load() // .env

	// Logger JSON "global" - permite usar slog.Info/slog.Error/Warn em qualquer lugar
	log := config.InitLogger(cfg.LogLevel, "api")
	log.Info("starting", "port", cfg.Port, "backend", cfg.StoreBackend, "address_url", cfg.AddressURL)

	// HOOK: admin job (one-off)
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()

	repo, err := repository.New(context.Background(), cfg)
	if err != nil {
		log.Error("repository_open_error", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	if *task != "" {
		code := runTask(*task, repo, log)
		_ = repo.Close()
		os.Exit(code)
	}

	addr, err := address.NewClient(cfg.AddressURL,
		address.WithTimeout(cfg.AddressTimeout),
		address.WithLogger(log),
	)
	if err != nil {
		log.Error("address_client_error", "err", err)
		os.Exit(1)
	}

	// publisher (Rabbit): sem broker a API sobe sem eventos
	var pub handlers.Publisher
	if cfg.EventsEnabled {
		p, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			log.Warn("rabbitmq_unavailable_events_disabled", "err", err)
		} else {
			pub = p
			defer func() { _ = p.Close() }()
		}
	}

	h := handlers.NewStoreHandler(repo, addr, pub, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	// start server
	go func() {
		log.Info("api_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful_shutdown_error", "err", err)
	}
	log.Info("stopped")
}

// runTask executa um job administrativo e devolve o exit code; não sobe HTTP.
func runTask(task string, repo repository.StoreRepository, log *slog.Logger) int {
	switch task {
	case "seed":
		if err := admin.SeedStores(context.Background(), repo, log); err != nil {
			log.Error("seed_failed", "err", err)
			return 1
		}
		log.Info("seed_done")
		return 0
	default:
		log.Error("unknown_admin_task", "task", task)
		return 2
	}
}
