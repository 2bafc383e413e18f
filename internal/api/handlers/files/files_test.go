package files_test

import (
	"net/http"
	"testing"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/absfs/credcrypt/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var certificate = []byte("-----BEGIN CERTIFICATE-----\nMIIBszCCAVmgAwIBAgIUK\n-----END CERTIFICATE-----\n")

func TestPostEncryptThenDecrypt(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformUpload(t, s, "/api/files/encrypt", "server.cer", certificate, nil)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		assert.Equal(t, "true", res.Header().Get(api.HeaderEncrypted))
		assert.Contains(t, res.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, res.Header().Get("Content-Disposition"), "server.cer.enc")
		assert.Equal(t, credcrypt.DefaultContentType, res.Header().Get("Content-Type"))

		blob := res.Body.Bytes()
		require.Greater(t, len(blob), credcrypt.IVSize)
		assert.Zero(t, (len(blob)-credcrypt.IVSize)%credcrypt.BlockSize)

		res = test.PerformUpload(t, s, "/api/files/decrypt", "server.cer.enc", blob, nil)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		assert.Equal(t, certificate, res.Body.Bytes())
		assert.Equal(t, "false", res.Header().Get(api.HeaderEncrypted))
		assert.Contains(t, res.Header().Get("Content-Disposition"), "server.cer")
		assert.NotContains(t, res.Header().Get("Content-Disposition"), ".enc")
	})
}

func TestPostEncrypt_ExtensionIsCaseInsensitive(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformUpload(t, s, "/api/files/encrypt", "Bundle.P12", certificate, nil)
		assert.Equal(t, http.StatusOK, res.Code, res.Body.String())
	})
}

func TestPostEncrypt_Rejected(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformUpload(t, s, "/api/files/encrypt", "", nil, map[string]string{"other": "x"})
		test.RequireHTTPError(t, res, http.StatusBadRequest, "No file uploaded")

		res = test.PerformUpload(t, s, "/api/files/encrypt", "notes.txt", []byte("hello"), nil)
		test.RequireHTTPError(t, res, http.StatusBadRequest, "Unsupported file type")

		res = test.PerformRequest(t, s, http.MethodPost, "/api/files/encrypt", nil, nil)
		test.RequireHTTPError(t, res, http.StatusBadRequest, "No file uploaded")
	})
}

func TestPostEncrypt_TooLarge(t *testing.T) {
	cfg := test.DefaultConfig()
	cfg.MaxUploadSize = 8

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		res := test.PerformUpload(t, s, "/api/files/encrypt", "server.cer", certificate, nil)
		test.RequireHTTPError(t, res, http.StatusRequestEntityTooLarge, "File is too large")
	})
}

func TestPostDecrypt_Rejected(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformUpload(t, s, "/api/files/decrypt", "short.enc", []byte("too short"), nil)
		test.RequireHTTPError(t, res, http.StatusBadRequest, "Invalid encrypted file")

		// An IV with no ciphertext after it.
		res = test.PerformUpload(t, s, "/api/files/decrypt", "iv-only.enc", make([]byte, credcrypt.IVSize), nil)
		test.RequireHTTPError(t, res, http.StatusBadRequest, "Failed to decrypt file")

		res = test.PerformUpload(t, s, "/api/files/decrypt", "", nil, nil)
		test.RequireHTTPError(t, res, http.StatusBadRequest, "No file uploaded")
	})
}

func TestPostDecrypt_WrongKey(t *testing.T) {
	other, err := credcrypt.NewCodec(credcrypt.DeriveKey("another-secret"))
	require.NoError(t, err)

	plaintext := []byte("hello world, this spans more than one block")
	blob, err := other.Encrypt(plaintext)
	require.NoError(t, err)

	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformUpload(t, s, "/api/files/decrypt", "hello.enc", blob, nil)
		// Padding of the garbage can be valid by chance; the plaintext never
		// comes back.
		if res.Code == http.StatusOK {
			assert.NotEqual(t, plaintext, res.Body.Bytes())
			return
		}
		test.RequireHTTPError(t, res, http.StatusBadRequest, "Failed to decrypt file")
	})
}
