package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/notify"
	"github.com/danielhkuo/quickly-vote/router"
	"github.com/danielhkuo/quickly-vote/store"
)

// postgresWait bounds how long startup waits for the database to come up.
const postgresWait = 30 * time.Second

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

func run(ctx context.Context, cfg cliparse.Config) error {
	dialect := db.Dialect(cfg.DatabaseType)
	wait := time.Duration(0)
	if dialect == db.Postgres {
		wait = postgresWait
	}

	dbConn, err := db.Open(ctx, dialect, cfg.DatabaseURL, wait)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	s := store.New(dbConn, dialect)

	def, err := election.Load(cfg.ElectionFile)
	if err != nil {
		return err
	}
	e, err := election.Seed(ctx, s, def)
	if err != nil {
		return err
	}
	slog.Info("Election ready",
		"election_id", e.ID,
		"name", e.Name,
		"opens", humanize.Time(e.OpensAt),
		"closes", humanize.Time(e.ClosesAt),
	)

	var notifier notify.Notifier = notify.Log{}
	if cfg.RedisURL != "" {
		rdb, err := notify.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			slog.Warn("redis unavailable, tally events may be dropped", "error", err)
		}
		notifier = rdb
	}

	svc := admission.NewService(s, admission.WithNotifier(notifier))
	auditor := audit.New(s, cfg.AuditInterval)
	sessions := auth.NewSessionVerifier(cfg.SessionSecret)
	if sessions == nil {
		slog.Info("Sessions disabled, votes are keyed by device token")
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(router.NewRouter(s, svc, auditor, sessions, cfg)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return auditor.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), admission.DefaultTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
