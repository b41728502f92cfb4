package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schadensbericht/portal/internal/api"
	"github.com/schadensbericht/portal/internal/api/handler"
	"github.com/schadensbericht/portal/internal/api/metrics"
	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/infrastructure/export"
)

const shutdownTimeout = 10 * time.Second

var skipBootstrap bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP server",
	Long: `Starts the portal HTTP server. The admin account is bootstrapped on
startup unless --skip-bootstrap is given. Usage:

	portal serve
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := a.close(closeCtx); err != nil {
				a.log.Error().Err(err).Msg("closing connections")
			}
		}()

		if !skipBootstrap {
			created, err := a.provisioning.BootstrapAdmin(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			if created {
				metrics.UsersProvisionedTotal.WithLabelValues(domain.RoleAdmin.String(), "bootstrap").Inc()
			}
		}

		cfg := a.cfg
		e := api.NewRouter(api.Dependencies{
			Auth:         a.auth,
			Provisioning: a.provisioning,
			Sessions:     a.sessions,
			Users:        a.users,
			Exporter:     export.NewArchiver(cfg.Export.Root, cfg.Export.Include, cfg.Export.Filename, a.log),
			Probes: map[string]handler.Pinger{
				"credential_store": a.users,
				"session_store":    a.sessionStore,
			},
			Cookie: handler.SessionCookie{
				Name:   cfg.Session.CookieName,
				Secure: cfg.Session.CookieSecure,
			},
			ExportFilename: cfg.Export.Filename,
			EnableSwagger:  cfg.Env != "production",
			Log:            a.log,
		})

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
			if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&skipBootstrap, "skip-bootstrap", false, "do not create the admin account on startup")
}
