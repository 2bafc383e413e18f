package common

import (
	"net/http"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/labstack/echo/v4"
)

type encryptionInfoResponse struct {
	credcrypt.Info
	AllowedExtensions []string `json:"allowedExtensions"`
	MaxUploadSize     int64    `json:"maxUploadSize"`
}

func GetEncryptionInfoRoute(s *api.Server) *echo.Route {
	return s.Router.APIEncryption.GET("/info", getEncryptionInfoHandler(s))
}

func getEncryptionInfoHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, encryptionInfoResponse{
			Info:              s.Codec.Describe(),
			AllowedExtensions: credcrypt.AllowedExtensions(),
			MaxUploadSize:     s.Config.MaxUploadSize,
		})
	}
}
