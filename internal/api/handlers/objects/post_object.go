package objects

import (
	"net/http"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func PostObjectRoute(s *api.Server) *echo.Route {
	return s.Router.APIObjects.POST("", postObjectHandler(s))
}

// Encrypts the uploaded file and stores it. The form may carry "key" and
// "bucket"; without a key one is generated under uploads/.
func postObjectHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		upload, err := api.ReadUpload(c, s.Config.MaxUploadSize)
		if err != nil {
			return err
		}

		ref := credcrypt.ObjectRef{
			Bucket: c.FormValue("bucket"),
			Key:    c.FormValue("key"),
		}

		res, err := s.Gateway.Upload(c.Request().Context(), ref, upload.Name, upload.ContentType, upload.Data)
		if err != nil {
			return err
		}

		zap.L().Info("Stored encrypted object",
			zap.String("bucket", res.Bucket),
			zap.String("key", res.Key),
			zap.Int("size", res.Size))

		return c.JSON(http.StatusCreated, res)
	}
}
