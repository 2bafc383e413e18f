package router

import (
	"context"
	"net/http"
	"time"

	"github.com/absfs/credcrypt/internal/api"
	"github.com/absfs/credcrypt/internal/api/handlers"
	"github.com/absfs/credcrypt/internal/api/httperrors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 64 << 10

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = HTTPErrorHandler

	s.Echo.Pre(middleware.RemoveTrailingSlash())

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.Echo.Use(requestLogger())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{s.Config.AllowedOrigin},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		ExposeHeaders: []string{echo.HeaderContentDisposition, api.HeaderEncrypted, api.HeaderStoredEncrypted},
	}))
	s.Echo.Use(bodyLimit(s.Config.MaxUploadSize + multipartOverhead))
	s.Echo.Use(requestTimeout(s.Config.RequestTimeout))

	s.Router = &api.Router{
		Routes:        nil,
		Root:          s.Echo.Group(""),
		APIFiles:      s.Echo.Group("/api/files"),
		APIObjects:    s.Echo.Group("/api/objects"),
		APIRaw:        s.Echo.Group("/api/objects-raw"),
		APIMeta:       s.Echo.Group("/api/objects-meta"),
		APIEncryption: s.Echo.Group("/api/encryption"),
	}

	handlers.AttachAllRoutes(s)
}

// HTTPErrorHandler renders every error as {"error": message}
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := httperrors.FromError(err)

	fields := []zap.Field{
		zap.Int("status", httpErr.Code),
		zap.String("path", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	}
	if httpErr.Code >= http.StatusInternalServerError {
		zap.L().Error("Request failed", fields...)
	} else {
		zap.L().Debug("Request rejected", fields...)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpErr.Code)
	} else {
		err = c.JSON(httpErr.Code, httperrors.Body{Error: httpErr.Message})
	}
	if err != nil {
		zap.L().Warn("Failed to write error response", zap.Error(err))
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

func bodyLimit(limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.ContentLength > limit {
				return httperrors.ErrFileTooLarge
			}
			req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)
			return next(c)
		}
	}
}

func requestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
