// Package localfs keeps media on the local filesystem and serves it over
// HTTP. It is meant for development and single-node deployments.
package localfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
)

type Store struct {
	dir     string
	baseURL string
	now     func() time.Time
}

var _ media.Store = (*Store)(nil)

// New stores files under dir and builds URLs from baseURL, which should point
// at wherever Handler is mounted.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

func (s *Store) Put(ctx context.Context, u media.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := media.Check(u); err != nil {
		return "", err
	}

	key := media.ObjectKey(u.Kind, u.Filename, s.now().UTC())
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, u.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == 0 {
		err = media.ErrEmpty
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return s.baseURL + "/" + key, nil
}

// Handler serves stored images. Mount it with the URL prefix stripped.
// Directories are never listed and only accepted image types are served,
// always under their fixed content type.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(noDirs{http.Dir(s.dir)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := media.ContentType(r.URL.Path)
		if ct == "" {
			http.NotFound(w, r)
			return
		}

		h := w.Header()
		h.Set("Content-Type", ct)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; sandbox")
		files.ServeHTTP(w, r)
	})
}

// noDirs hides directories so the file server cannot list them.
type noDirs struct {
	fs http.FileSystem
}

func (n noDirs) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
