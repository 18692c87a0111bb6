package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/maxschool-bot/internal/config"
	"github.com/maxschool-bot/internal/infrastructure/dynamo"
	jwtinfra "github.com/maxschool-bot/internal/infrastructure/jwt"
	"github.com/maxschool-bot/internal/infrastructure/maxapi"
	"github.com/maxschool-bot/internal/infrastructure/smtp"
	"github.com/maxschool-bot/internal/logging"
	transporthttp "github.com/maxschool-bot/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat))

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional, the admin API stays off without keys).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("jwt provider not available, admin api disabled", "err", err)
	}

	mailer := smtp.NewMailer(cfg)
	replier := maxapi.NewClient(cfg)

	deps := &transporthttp.Deps{
		RecordRepo:   dynamo.NewDirectoryRepo(dynamoClient, cfg.DynamoTables.Records),
		GuardianRepo: dynamo.NewGuardianRepo(dynamoClient, cfg.DynamoTables.Guardians),
		MentorRepo:   dynamo.NewMentorRepo(dynamoClient, cfg.DynamoTables.Mentors),
		CodeSender:   mailer,
		Replier:      replier,
		JWTProvider:  jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
