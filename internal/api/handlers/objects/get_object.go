package objects

import (
	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
)

func GetObjectRoute(s *api.Server) *echo.Route {
	return s.Router.APIObjects.GET("/*", getObjectHandler(s))
}

func getObjectHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := api.ObjectRef(c)
		if err != nil {
			return err
		}

		file, err := s.Gateway.Download(c.Request().Context(), ref)
		if err != nil {
			return err
		}

		api.SetEncrypted(c, api.HeaderEncrypted, false)
		api.SetEncrypted(c, api.HeaderStoredEncrypted, file.Encrypted)
		return api.Attachment(c, file.Name, file.ContentType, file.Body)
	}
}
