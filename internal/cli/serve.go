package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/server"
	"github.com/yukikurage/project-management-api/internal/services"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Migrates the schema and serves the projects, tasks and users API until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !skipMigrate {
			if err := database.Migrate(a.db, a.logger); err != nil {
				return err
			}
		}

		gateway, verifier, err := a.identityProvider(ctx)
		if err != nil {
			return err
		}

		projectRepo := repository.NewProjectRepository(a.db)
		taskRepo := repository.NewTaskRepository(a.db)

		gin.SetMode(a.cfg.GinMode)
		srv := server.New(server.Dependencies{
			Projects: services.NewProjectService(projectRepo),
			Tasks:    services.NewTaskService(taskRepo, projectRepo, services.WithAdminOnlyTaskDelete(a.cfg.TaskDeleteRequireAdmin)),
			Users:    services.NewUserService(gateway),
			Verifier: verifier,
			Pages: pagination.Options{
				DefaultPageSize: a.cfg.DefaultPageSize,
				MaxPageSize:     a.cfg.MaxPageSize,
			},
			RateLimitPerMinute: a.cfg.RateLimitPerMinute,
			Logger:             a.logger,
		})

		httpServer := &http.Server{
			Addr:    a.cfg.AppAddr,
			Handler: srv.Engine(),
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("starting server",
				slog.String("addr", httpServer.Addr),
				slog.String("identity_provider", a.cfg.IdentityProvider),
				slog.String("db_driver", a.cfg.DBDriver),
			)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server", slog.Any("error", err))
			return err
		}

		a.logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on startup")
	rootCmd.AddCommand(serveCmd)
}
