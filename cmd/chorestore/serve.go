package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/chorestore/internal/photo"
	"github.com/dukerupert/chorestore/internal/push"
	"github.com/dukerupert/chorestore/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	uploader, err := photo.New(a.cfg.Photo())
	if err != nil {
		return fmt.Errorf("photo storage: %w", err)
	}
	mailer := a.mailer()
	pushSvc := push.NewService(a.cfg.VAPIDPublicKey, a.cfg.VAPIDPrivateKey, a.cfg.VAPIDSubject)

	a.logger.Info("features",
		"email", mailer.Configured(),
		"push", pushSvc.Configured(),
		"photo_backend", a.cfg.PhotoBackend,
		"time_zone", loc.String(),
	)

	srv := server.New(db, server.Options{
		JWTSecret:   a.cfg.JWTSecret,
		Location:    loc,
		CORSOrigins: a.cfg.CORSOrigins,
		Inviter:     mailer,
		Uploader:    uploader,
		Push:        pushSvc,
	}, a.logger)

	go srv.RateLimiter().Run(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("chorestore running", "addr", "http://localhost:"+a.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
