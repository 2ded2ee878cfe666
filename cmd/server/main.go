package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "gymhub/internal/adapters/email"
	web "gymhub/internal/adapters/http"
	"gymhub/internal/adapters/storage"
	accountStore "gymhub/internal/adapters/storage/account"
	availabilityStore "gymhub/internal/adapters/storage/availability"
	enrollmentStore "gymhub/internal/adapters/storage/enrollment"
	gymclassStore "gymhub/internal/adapters/storage/gymclass"
	lockerStore "gymhub/internal/adapters/storage/locker"
	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/reconcile"
	"gymhub/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_event", "event", "fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		return err
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return err
	}

	timedDB := storage.NewTimedDB(db, cfg.SlowQuery)
	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(timedDB),
		TrainerStore:      trainerStore.NewSQLiteStore(timedDB),
		ClassStore:        gymclassStore.NewSQLiteStore(timedDB),
		EnrollmentStore:   enrollmentStore.NewSQLiteStore(timedDB),
		LockerStore:       lockerStore.NewSQLiteStore(timedDB),
		AvailabilityStore: availabilityStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	if cfg.SeedDemo && !cfg.IsProduction() {
		err := orchestrators.ExecuteSeedDemo(ctx, orchestrators.SeedDemoDeps{
			AccountStore:      stores.AccountStore,
			TrainerStore:      stores.TrainerStore,
			ClassStore:        stores.ClassStore,
			LockerStore:       stores.LockerStore,
			AvailabilityStore: stores.AvailabilityStore,
			GenerateID:        func() string { return uuid.New().String() },
			Now:               time.Now,
		})
		if err != nil {
			return err
		}
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.EmailReplyTo)
		slog.Info("server_event", "event", "email_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("server_event", "event", "email_disabled", "hint", "set GYM_RESEND_KEY for delivery")
		}
	}

	strategy, err := reconcile.ParseStrategy(cfg.RosterStrategy)
	if err != nil {
		return err
	}
	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}

	handler := web.NewMux(web.Options{
		Stores:       stores,
		APIBaseURL:   cfg.ResolvedAPIBaseURL(),
		HTTPTimeout:  cfg.HTTPTimeout,
		Strategy:     strategy,
		NameWorkers:  cfg.NameWorkers,
		Sender:       sender,
		EmailFrom:    cfg.EmailFrom,
		EmailReplyTo: cfg.EmailReplyTo,
		CSRFKey:      csrfKey,
		Secure:       cfg.IsProduction(),
		RateLimit:    cfg.RateLimit,
		RateWindow:   cfg.RateWindow,
		InternalKey:  cfg.InternalKey,
		SlowRequest:  cfg.SlowRequest,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "listening",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogging installs the default slog handler from config.
func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
