package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/config"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Router struct {
	Routes        []*echo.Route
	Root          *echo.Group
	APIFiles      *echo.Group
	APIObjects    *echo.Group
	APIRaw        *echo.Group
	APIMeta       *echo.Group
	APIEncryption *echo.Group
}

// Server keeps the dependencies shared by all handlers. Echo and Router are
// set by router.Init.
type Server struct {
	Echo   *echo.Echo
	Router *Router

	Config  config.Config
	Codec   *credcrypt.Codec
	Gateway *credcrypt.Gateway
}

func NewServer(cfg config.Config, codec *credcrypt.Codec, gateway *credcrypt.Gateway) *Server {
	return &Server{
		Config:  cfg,
		Codec:   codec,
		Gateway: gateway,
	}
}

func (s *Server) Ready() bool {
	return s.Echo != nil && s.Router != nil && s.Codec != nil && s.Gateway != nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.ListenAddr()); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	zap.L().Warn("Shutting down server")

	if s.Echo == nil {
		return nil
	}

	if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("Failed to shutdown echo server", zap.Error(err))
		return err
	}

	return nil
}
