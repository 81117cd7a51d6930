package garden

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
)

const placeholderSize = 8

// placeholderJPEG returns a small solid JPEG whose colour is derived from name.
func placeholderJPEG(name string) ([]byte, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	// keep it green-ish
	c := color.RGBA{R: uint8(sum>>16) / 3, G: 120 + uint8(sum>>8)%100, B: uint8(sum) / 3, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	for y := range placeholderSize {
		for x := range placeholderSize {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePlaceholders creates a placeholder JPEG under staticDir for each local
// catalog image. Existing files are kept unless overwrite is set. It returns
// the paths it wrote.
func WritePlaceholders(c *Catalog, staticDir string, overwrite bool) ([]string, error) {
	var written []string
	for _, rel := range c.LocalImages() {
		path := filepath.Join(staticDir, filepath.FromSlash(rel))
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}

		data, err := placeholderJPEG(rel)
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", rel, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
