// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/auth"
	authpg "github.com/staffhub/staffhub/internal/auth/postgres"
	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/httpapi"
	"github.com/staffhub/staffhub/internal/logging"
	"github.com/staffhub/staffhub/internal/mail"
	"github.com/staffhub/staffhub/internal/observability"
	"github.com/staffhub/staffhub/internal/store"
	"github.com/staffhub/staffhub/pkg/errutil"
)

const (
	shutdownTimeout   = 10 * time.Second
	resetSweepPeriod  = time.Minute
	readinessDeadline = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		Long: `Start the REST API server, apply pending database migrations,
and expose metrics and health probes.`,
		RunE: runServe,
	}

	// Flag names mirror the config keys so posflag maps them directly.
	cmd.Flags().String("server.listen", "", "API listen address (e.g. :8080)")
	cmd.Flags().String("server.frontend_url", "", "frontend base URL used in reset links")
	cmd.Flags().String("metrics.listen", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("staffhub", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	ctx := cmd.Context()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Schema is applied on startup so a fresh database just works.
	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck
		return err
	}
	if err := migrator.Close(); err != nil {
		errutil.LogError(logger, "migrator close failed", err)
	}

	employees := authpg.NewEmployeeRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	resets := authpg.NewPasswordResetRepository(pool)
	hasher := auth.NewArgon2idHasher()

	var mailer auth.ResetMailer
	if cfg.SMTP.Enabled {
		mailer, err = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return err
		}
	} else {
		mailer = mail.NewLogSender(logger)
	}

	authSvc, err := auth.NewService(employees, sessions, hasher, auth.WithLogger(logger))
	if err != nil {
		return err
	}
	resetSvc, err := auth.NewResetService(employees, resets, sessions, hasher, mailer,
		auth.ResetConfig{
			TokenTTL:       cfg.Reset.TokenTTL,
			MinPasswordLen: cfg.Reset.MinPasswordLen,
			FrontendURL:    cfg.Server.FrontendURL,
		},
		auth.WithResetLogger(logger),
	)
	if err != nil {
		return err
	}
	directorySvc, err := auth.NewDirectoryService(employees, hasher, logger)
	if err != nil {
		return err
	}

	// Observability server first so the handler can record metrics.
	var obsServer *observability.Server
	var obsErrCh <-chan error
	var metrics *observability.Metrics
	if cfg.Metrics.Listen != "" {
		obsServer = observability.NewServer(cfg.Metrics.Listen, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), readinessDeadline)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
	}

	handler, err := httpapi.NewHandler(authSvc, resetSvc, directorySvc,
		httpapi.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		logger, metrics)
	if err != nil {
		return err
	}

	apiServer := httpapi.NewServer(cfg.Server.Listen, handler.Router(cfg.CORS.AllowedOrigins))
	apiErrCh, err := apiServer.Start()
	if err != nil {
		return err
	}

	// Periodic cleanup of expired reset tokens. Correctness never
	// depends on this loop running.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepResets(sweepCtx, resetSvc, logger)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			runErr = oops.Code("SERVE_FAILED").Wrap(serveErr)
		}
	case obsErr := <-obsErrCh:
		if obsErr != nil {
			runErr = oops.Code("SERVE_FAILED").Wrap(obsErr)
		}
	}

	stopSweep()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Stop(stopCtx); err != nil {
		errutil.LogError(logger, "api server stop failed", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(stopCtx); err != nil {
			errutil.LogError(logger, "observability server stop failed", err)
		}
	}

	return runErr
}

// sweepResets deletes expired reset tokens on a fixed period until ctx
// is cancelled.
func sweepResets(ctx context.Context, resetSvc *auth.ResetService, logger *slog.Logger) {
	ticker := time.NewTicker(resetSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := resetSvc.SweepExpired(ctx); err != nil {
				errutil.LogError(logger, "reset sweep failed", err)
			}
		}
	}
}
