package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/api"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/db"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/dispatch"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/middleware"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/utils"
)

// store is the full persistence surface the application needs. Both
// db.MemoryStore and db.SQLStore satisfy it.
type store interface {
	services.AuthStore
	services.QuizStore
	services.LeadStore
	services.IntegrationStore
	dispatch.IntegrationSource
}

func main() {
	_ = godotenv.Load()

	logger := newLogger()

	st, closeDB, err := openStore(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer closeDB()

	httpClient := &http.Client{Timeout: dispatch.DefaultDeliveryTimeout}
	registry := dispatch.NewRegistry(
		dispatch.NewWebhookAdapter(httpClient),
		dispatch.NewCRMAdapter(httpClient),
	)
	dispatcher := dispatch.NewDispatcher(st, registry, logger)

	authSvc := services.NewAuthService(st, middleware.SignToken)
	quizSvc := services.NewQuizService(st)
	leadSvc := services.NewLeadService(st, dispatcher)
	integrationSvc := services.NewIntegrationService(st)

	router := api.NewRouter(authSvc, quizSvc, leadSvc, integrationSvc, dispatcher)

	addr := utils.SafeEnv("QUIZMAKER_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// Let in-flight deliveries finish before the process exits.
	drainTimeout := utils.EnvDuration("QUIZMAKER_DRAIN_TIMEOUT", 15*time.Second)
	if !dispatcher.Drain(drainTimeout) {
		logger.Warn().Dur("timeout", drainTimeout).Msg("dispatch drain timed out, abandoning deliveries")
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(utils.SafeEnv("QUIZMAKER_LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if utils.SafeEnv("QUIZMAKER_LOG_PRETTY", "") != "" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

// openStore picks the persistence backend from the environment:
// DATABASE_URL selects Postgres, QUIZMAKER_SQLITE_PATH selects SQLite,
// and with neither set the server runs on the in-memory store.
func openStore(logger zerolog.Logger) (store, func(), error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return openSQL(logger, "postgres", dsn)
	}
	if path := os.Getenv("QUIZMAKER_SQLITE_PATH"); path != "" {
		return openSQL(logger, "sqlite3", path)
	}
	logger.Warn().Msg("no database configured, using in-memory store")
	return db.NewMemoryStore(), func() {}, nil
}

func openSQL(logger zerolog.Logger, driver, dsn string) (store, func(), error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	st, err := db.NewSQLStore(conn, driver)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info().Str("driver", driver).Msg("database connected")
	return st, func() { conn.Close() }, nil
}
