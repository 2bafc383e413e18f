package common

import (
	"net/http"

	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status string `json:"status"`
}

func GetHealthRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/health", getHealthHandler(s))
}

func getHealthHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}
