// Package test holds helpers shared by the HTTP handler tests.
package test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api"
	"github.com/absfs/credcrypt/internal/api/router"
	"github.com/absfs/credcrypt/internal/config"
	"github.com/absfs/credcrypt/internal/objectstore"
	"github.com/stretchr/testify/require"
)

// TestSecret is the secret every test server derives its key from
const TestSecret = "test-secret"

// Bucket is the default bucket of test servers
const Bucket = "test-bucket"

// DefaultConfig returns a configuration suitable for tests
func DefaultConfig() config.Config {
	cfg := config.Default()
	cfg.EncryptionSecretKey = TestSecret
	cfg.StoreBackend = objectstore.BackendMemory
	cfg.Bucket = Bucket
	return cfg
}

// WithTestServer runs closure against a server backed by an in-memory store
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()
	WithTestServerConfigurable(t, DefaultConfig(), closure)
}

// WithTestServerConfigurable is WithTestServer with a caller supplied config
func WithTestServerConfigurable(t *testing.T, cfg config.Config, closure func(s *api.Server)) {
	t.Helper()

	store, err := objectstore.NewMemoryStore()
	require.NoError(t, err)

	WithTestServerStore(t, cfg, store, closure)
}

// WithTestServerStore runs closure against a server backed by store
func WithTestServerStore(t *testing.T, cfg config.Config, store credcrypt.ObjectStore, closure func(s *api.Server)) {
	t.Helper()

	codec, _, err := credcrypt.NewCodecFromProvider(cfg.KeyProvider())
	require.NoError(t, err)

	gateway, err := credcrypt.NewGateway(store, codec, cfg.Bucket)
	require.NoError(t, err)

	s := api.NewServer(cfg, codec, gateway)
	router.Init(s)
	require.True(t, s.Ready())

	closure(s)
}

// PerformRequest sends a request through the server's echo instance
func PerformRequest(t *testing.T, s *api.Server, method, path string, body io.Reader, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header[k] = v
	}
	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)
	return res
}

// PerformUpload sends a multipart request with data in the "file" field
// and the given extra form fields.
func PerformUpload(t *testing.T, s *api.Server, path, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", "application/x-x509-ca-cert")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	headers := http.Header{}
	headers.Set("Content-Type", w.FormDataContentType())
	return PerformRequest(t, s, http.MethodPost, path, &buf, headers)
}

// RequireHTTPError checks the status and JSON error message of res
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, code int, message string) {
	t.Helper()

	require.Equal(t, code, res.Code, res.Body.String())

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, message, body.Error)
}
