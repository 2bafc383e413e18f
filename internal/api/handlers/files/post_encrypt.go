package files

import (
	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func PostEncryptRoute(s *api.Server) *echo.Route {
	return s.Router.APIFiles.POST("/encrypt", postEncryptHandler(s))
}

func postEncryptHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		upload, err := api.ReadUpload(c, s.Config.MaxUploadSize)
		if err != nil {
			return err
		}

		if err := credcrypt.CheckUpload(upload.Name); err != nil {
			return err
		}

		blob, err := s.Codec.Encrypt(upload.Data)
		if err != nil {
			zap.L().Error("Failed to encrypt upload", zap.String("file", upload.Name), zap.Error(err))
			return err
		}

		api.SetEncrypted(c, api.HeaderEncrypted, true)
		return api.Attachment(c, credcrypt.EncryptedName(upload.Name), credcrypt.DefaultContentType, blob)
	}
}
