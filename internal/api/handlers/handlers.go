package handlers

import (
	"github.com/absfs/credcrypt/internal/api"
	"github.com/absfs/credcrypt/internal/api/handlers/common"
	"github.com/absfs/credcrypt/internal/api/handlers/files"
	"github.com/absfs/credcrypt/internal/api/handlers/objects"
	"github.com/labstack/echo/v4"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthRoute(s),
		common.GetEncryptionInfoRoute(s),
		files.PostEncryptRoute(s),
		files.PostDecryptRoute(s),
		objects.GetObjectRoute(s),
		objects.GetObjectRawRoute(s),
		objects.GetObjectMetadataRoute(s),
		objects.PostObjectRoute(s),
	}
}
