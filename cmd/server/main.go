// Package main starts the school clinic server: it loads configuration,
// opens the storage backend, seeds it on first run, and serves the pages
// until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/config"
	"github.com/atinyakov/SchoolClinic/internal/db"
	"github.com/atinyakov/SchoolClinic/internal/logger"
	"github.com/atinyakov/SchoolClinic/internal/middleware"
	"github.com/atinyakov/SchoolClinic/internal/monitor"
	"github.com/atinyakov/SchoolClinic/internal/repository"
	"github.com/atinyakov/SchoolClinic/internal/server/handler/http"
	"github.com/atinyakov/SchoolClinic/internal/service"
	"github.com/atinyakov/SchoolClinic/internal/session"
	"github.com/atinyakov/SchoolClinic/internal/storage"
	"github.com/atinyakov/SchoolClinic/internal/view"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file, .env and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the storage backend and seed missing collections.
	kv, closeKV, err := openStorage(options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot open storage", zap.Error(err))
	}
	defer closeKV()

	store := repository.NewStore(kv)
	if err := store.Init(ctx); err != nil {
		zapLogger.Fatal("cannot seed storage", zap.Error(err))
	}

	// Restore the logged-in user from the previous run.
	sess, err := session.Load(ctx, store)
	if err != nil {
		zapLogger.Fatal("cannot load session", zap.Error(err))
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(store, sess, zapLogger.Named("auth"))
	clinicService := service.NewClinicService(store, time.Now, zapLogger.Named("clinic"))

	views, err := view.New()
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}

	// Create HTTP handlers and build the router.
	authHandler := &http.AuthHandler{AuthService: authService, Views: views, Logger: zapLogger.Named("http")}
	pageHandler := &http.PageHandler{Clinic: clinicService, Views: views, Logger: zapLogger.Named("http")}
	limiter := middleware.NewRateLimiter(options.LoginRate, options.LoginBurst, zapLogger.Named("ratelimit"))
	router := http.NewRouter(authHandler, pageHandler, sess, limiter, zapLogger)

	lowStock := monitor.NewLowStock(options.LowStockSchedule, clinicService, zapLogger.Named("monitor"))
	if err := lowStock.Start(ctx); err != nil {
		zapLogger.Fatal("cannot start low-stock monitor", zap.Error(err))
	}
	defer lowStock.Stop()

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if options.TLSCert != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStorage picks Postgres when a DSN is configured and the JSON data file
// otherwise. The returned func releases the backend.
func openStorage(options *config.Options, log *zap.Logger) (storage.KV, func(), error) {
	if options.DatabaseDSN != "" {
		conn, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres storage")
		return storage.NewPostgresStore(conn), func() { _ = conn.Close() }, nil
	}

	fs, err := storage.OpenFile(options.DataFile)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using file storage", zap.String("path", fs.Path()))
	return fs, func() {}, nil
}

// orDefault returns s if it is non-empty, otherwise def (equivalent to
// cmp.Or for two strings, which requires Go 1.22).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
