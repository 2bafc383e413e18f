package objects

import (
	"net/http"
	"sort"

	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
)

func GetObjectRawRoute(s *api.Server) *echo.Route {
	return s.Router.APIRaw.GET("/*", getObjectRawHandler(s))
}

// Serves the stored bytes untouched, with the store metadata exposed as
// X-Object-Meta-* headers.
func getObjectRawHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := api.ObjectRef(c)
		if err != nil {
			return err
		}

		file, err := s.Gateway.DownloadRaw(c.Request().Context(), ref)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(file.Metadata))
		for k := range file.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		h := c.Response().Header()
		for _, k := range keys {
			h.Set(http.CanonicalHeaderKey(api.HeaderObjectMetaPrefix+k), file.Metadata[k])
		}

		api.SetEncrypted(c, api.HeaderEncrypted, file.Encrypted)
		return api.Attachment(c, file.Name, file.ContentType, file.Body)
	}
}
