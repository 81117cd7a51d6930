package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalUploader writes images into a directory served by the web server.
type LocalUploader struct {
	dir string
	now func() time.Time
}

func NewLocalUploader(dir string) *LocalUploader {
	return &LocalUploader{dir: dir, now: time.Now}
}

func (u *LocalUploader) Backend() string { return "local" }

// Upload stores the file as <UTC timestamp>_<safe name> and returns that name.
// The name is relative to the upload directory.
func (u *LocalUploader) Upload(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	stamp := u.now().UTC().Format("20060102150405")
	name := stamp + "_" + SafeFilename(img.Filename)
	path := filepath.Join(u.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		// same name within the same second
		name = stamp + "_" + uuid.NewString()[:8] + "_" + SafeFilename(img.Filename)
		path = filepath.Join(u.dir, name)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := f.Write(img.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return name, nil
}
