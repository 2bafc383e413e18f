package api

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/api/httperrors"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// FormFieldFile is the multipart field carrying uploads
	FormFieldFile = "file"

	HeaderEncrypted        = "X-Encrypted"
	HeaderStoredEncrypted  = "X-Stored-Encrypted"
	HeaderObjectMetaPrefix = "X-Object-Meta-"
)

// Upload is a file read from a multipart request
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadUpload reads the "file" form field. A request without one yields
// credcrypt.ErrNoFileProvided.
func ReadUpload(c echo.Context, maxSize int64) (*Upload, error) {
	fh, err := c.FormFile(FormFieldFile)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, credcrypt.NewValidationError(credcrypt.ErrNoFileProvided, FormFieldFile, "", "no file uploaded")
	}
	if fh.Size > maxSize {
		return nil, httperrors.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open upload %q", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read upload %q", fh.Filename)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = credcrypt.DefaultContentType
	}

	return &Upload{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

// ObjectRef builds the object reference from the wildcard path and the
// optional bucket query parameter. Echo routes on URL.RawPath when it is set,
// leaving the param escaped; otherwise the param is already decoded.
func ObjectRef(c echo.Context) (credcrypt.ObjectRef, error) {
	key := c.Param("*")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(key)
		if err != nil {
			return credcrypt.ObjectRef{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid object key")
		}
		key = unescaped
	}
	return credcrypt.ObjectRef{Bucket: c.QueryParam("bucket"), Key: key}, nil
}

// Attachment writes data as a file download named name
func Attachment(c echo.Context, name, contentType string, data []byte) error {
	if contentType == "" {
		contentType = credcrypt.DefaultContentType
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, disposition)
	h.Set(echo.HeaderContentLength, strconv.Itoa(len(data)))
	return c.Blob(http.StatusOK, contentType, data)
}

// SetEncrypted sets a boolean response header
func SetEncrypted(c echo.Context, header string, encrypted bool) {
	c.Response().Header().Set(header, strconv.FormatBool(encrypted))
}
