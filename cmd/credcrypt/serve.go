package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/absfs/credcrypt/internal/api/router"
	"github.com/absfs/credcrypt/internal/objectstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, state)
		},
	}
}

func runServe(ctx context.Context, state *cliState) error {
	s, err := newServer(ctx, state)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("Starting server", zap.String("addr", state.cfg.ListenAddr()))
		errc <- s.Start()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func newServer(ctx context.Context, state *cliState) (*api.Server, error) {
	codec, key, err := credcrypt.NewCodecFromProvider(state.cfg.KeyProvider())
	if err != nil {
		return nil, newCLIExitError(exitCodeConfig, err)
	}
	zap.L().Info("Encryption key ready", zap.Stringer("fingerprint", key))

	store, err := objectstore.Open(ctx, state.cfg.StoreOptions())
	if err != nil {
		return nil, newCLIExitError(exitCodeConfig, err)
	}

	gateway, err := credcrypt.NewGateway(store, codec, state.cfg.Bucket)
	if err != nil {
		return nil, err
	}

	s := api.NewServer(state.cfg, codec, gateway)
	router.Init(s)
	return s, nil
}
