package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/venue"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func bridgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "bridge",
		Usage: "Run a local execution bridge",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the bridge websocket protocol backed by the paper venue",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "Listen address", Value: ":9090"},
					&cli.DurationFlag{Name: "timeout", Usage: "Time allowed to execute one command", Value: 5 * time.Second},
					&cli.StringFlag{Name: "log-level", Usage: "Log level", Value: "info"},
				},
				Action: bridgeServeAction,
			},
		},
	}
}

func bridgeServeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithOptions(logger.Options{Level: cmd.String("log-level"), Development: false})
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := venue.NewPaperVenue()
	bridge := venue.NewBridgeServer(backend, cmd.Duration("timeout"), log)

	server := &http.Server{
		Addr:              cmd.String("listen"),
		Handler:           bridge.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		bridge.CloseConnections()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Bridge shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Bridge listening", zap.String("address", server.Addr), zap.String("backend", backend.Name()))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return backend.Close()
}
