package files

import (
	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func PostDecryptRoute(s *api.Server) *echo.Route {
	return s.Router.APIFiles.POST("/decrypt", postDecryptHandler(s))
}

// Decryption accepts any file name; the blob itself is the only input that
// matters.
func postDecryptHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		upload, err := api.ReadUpload(c, s.Config.MaxUploadSize)
		if err != nil {
			return err
		}

		plaintext, err := s.Codec.Decrypt(upload.Data)
		if err != nil {
			zap.L().Info("Failed to decrypt upload", zap.String("file", upload.Name), zap.Error(err))
			return err
		}

		api.SetEncrypted(c, api.HeaderEncrypted, false)
		return api.Attachment(c, credcrypt.DecryptedName(upload.Name), credcrypt.DefaultContentType, plaintext)
	}
}
