package objects

import (
	"net/http"

	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
)

func GetObjectMetadataRoute(s *api.Server) *echo.Route {
	return s.Router.APIMeta.GET("/*", getObjectMetadataHandler(s))
}

func getObjectMetadataHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := api.ObjectRef(c)
		if err != nil {
			return err
		}

		meta, err := s.Gateway.Metadata(c.Request().Context(), ref)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, meta)
	}
}
