package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/api"
	"github.com/kp9community/portal/internal/core/ports"
	"github.com/kp9community/portal/internal/core/service"
	"github.com/kp9community/portal/internal/pkg/config"
	"github.com/kp9community/portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "kp9-community",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage outlives the signal context so in-flight writes can finish
	// during shutdown.
	storageCtx, stopStorage := context.WithCancel(context.Background())
	defer stopStorage()

	st, err := openStores(storageCtx, cfg, logger.Component("storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.close(context.Background())

	hasher, err := service.NewCredentialHasher(cfg.Access.PasswordScheme)
	if err != nil {
		return err
	}
	if cfg.Access.PasswordScheme == service.PasswordSchemePlain {
		log.Warn().Msg("passwords are stored in plain text; set PASSWORD_SCHEME=bcrypt for new deployments")
	}

	svcLog := logger.Component("service")
	users := service.NewUserDirectory(st.users, hasher, cfg.Access.StrictRoles, svcLog)
	board := service.NewAnnouncementBoard(st.announcements, svcLog)
	audit := service.NewAuditLog(st.logs, svcLog)
	guard := service.NewGuard(cfg.Access.RoleSource, users, svcLog)
	community := service.NewCommunityService(guard, users, board, audit, svcLog)
	auth := service.NewAuthService(users, cfg.Session.Secret, cfg.Session.TTL, logger.Component("auth"))

	created, err := community.Bootstrap(ctx, ports.AddUserInput{
		Username: cfg.Bootstrap.Username,
		Password: cfg.Bootstrap.Password,
		Name:     cfg.Bootstrap.Name,
	})
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("username", cfg.Bootstrap.Username).Msg("bootstrap administrator created")
	}

	e := api.NewRouter(api.Deps{
		Auth:         auth,
		Community:    community,
		Guard:        guard,
		Dependencies: st.pingers,
		SessionTTL:   auth.SessionTTL(),
		CookieSecure: cfg.Session.CookieSecure,
		StrictRoles:  cfg.Access.StrictRoles,
		Log:          logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.Storage.Driver).
			Str("role_source", cfg.Access.RoleSource).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
