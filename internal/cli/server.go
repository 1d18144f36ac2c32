package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/config"
	"quiz-admin-service/internal/logging"
	transport "quiz-admin-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()
	log := d.logger.WithField("storage", cfg.Storage.Driver)
	ctx = logging.NewContext(ctx, log)

	issuer := auth.NewIssuer(
		cfg.Auth.Secret,
		cfg.Auth.Issuer,
		config.TTLDuration(cfg.Auth.AccessTTL, time.Hour),
		config.TTLDuration(cfg.Auth.RefreshTTL, 7*24*time.Hour),
	)
	accounts := app.NewAuthService(d.stores.admins, d.revoked, issuer)
	router := transport.NewRouter(d.logger, d.quizService(), accounts, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if d.redisHub != nil {
		g.Go(func() error {
			return d.redisHub.Run(gctx)
		})
	}
	g.Go(func() error {
		log.WithField("addr", server.Addr).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
		return err
	}
	return nil
}
