// Package media stores user-supplied images and hands back a public URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind groups uploads under a key prefix.
type Kind string

const (
	KindAvatar     Kind = "avatars"
	KindCoverImage Kind = "cover-images"
)

var (
	ErrEmpty = errors.New("media: empty upload")

	// ErrUnsupportedType is returned for files that are not an accepted
	// image type.
	ErrUnsupportedType = errors.New("media: unsupported image type")
)

// imageTypes maps the accepted extensions to the content type they are
// stored and served with.
var imageTypes = map[string]string{
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Upload is a single file taken from a request.
type Upload struct {
	Kind        Kind
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.Reader
}

// Store persists uploads.
type Store interface {
	// Put stores the upload and returns the URL clients should use to
	// fetch it.
	Put(ctx context.Context, u Upload) (string, error)
}

// Check rejects uploads whose filename is not an accepted image type. The
// client's declared content type is not trusted.
func Check(u Upload) error {
	if ContentType(u.Filename) == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(u.Filename))
	}
	return nil
}

// ContentType returns the image content type for name, or "" when its
// extension is not accepted.
func ContentType(name string) string {
	return imageTypes[extension(name)]
}

// ObjectKey builds a unique, date-partitioned key such as
// "avatars/2024/3/1/5f0c...e1.png".
func ObjectKey(kind Kind, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%d/%v%s", kind, now.Year(), now.Month(), now.Day(), uuid.New(), extension(filename))
}

// extension keeps short alphanumeric extensions and drops anything else.
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
