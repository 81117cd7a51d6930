// Package media stores post images either on an S3 compatible media host or
// on local disk.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"path/filepath"
	"regexp"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// AllowedExtensions lists the file types accepted for post images.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
}

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrNotAnImage      = errors.New("file content is not a supported image")
	ErrEmptyFile       = errors.New("empty file")
)

// Image is an uploaded file held in memory. Request bodies are capped by the
// server so the whole file fits.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Uploader stores an image and returns the reference persisted on the post:
// an absolute URL for remote hosts, a file name for local storage.
type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
	Backend() string
}

// Extension returns the lower-cased extension without the dot.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedFile reports whether filename has an allowed image extension.
func AllowedFile(filename string) bool {
	_, ok := AllowedExtensions[Extension(filename)]
	return ok
}

// Check validates the extension and then decodes the image header so that a
// renamed non-image never reaches the media host. It returns the detected format.
func Check(img Image) (string, error) {
	if !AllowedFile(img.Filename) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, img.Filename)
	}
	if len(img.Data) == 0 {
		return "", ErrEmptyFile
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return format, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename strips directories and any character outside [A-Za-z0-9._-].
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "image"
	}
	return name
}

// ContentTypeFor maps a detected format to its MIME type.
func ContentTypeFor(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
