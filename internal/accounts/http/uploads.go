package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
)

// DefaultMaxUploadBytes caps a whole multipart request.
const DefaultMaxUploadBytes = 8 << 20

// Parts above this spill to temporary files.
const multipartMemory = 1 << 20

// parseMultipart reads a multipart body of at most limit bytes. A request
// that is not multipart at all is left for the caller's field validation.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(multipartMemory)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return nil
	case errors.As(err, &tooLarge):
		return httpx.ErrBodyTooLarge
	default:
		return httpx.ErrInvalidJSON
	}
}

// formUpload opens the named file part. It returns nil when the part is
// absent or empty; the caller must call close.
func formUpload(r *http.Request, field string) (*media.Upload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	if hdr.Size == 0 {
		_ = f.Close()
		return nil, noop, nil
	}

	return &media.Upload{
		Filename:    hdr.Filename,
		ContentType: contentType(hdr),
		Size:        hdr.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
