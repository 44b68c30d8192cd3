package archive

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxCoverWidth = 800
	jpegQuality   = 80
	maxCoverSize  = 10 << 20 // 10MB
)

// Covers copies remote cover images next to the archive.
type Covers struct {
	// Dir is where the re-encoded images are written.
	Dir string
	// URLPrefix is the public path Dir is served under, e.g. "/public/covers".
	URLPrefix string
	Client    *http.Client
}

// Localize downloads url, scales it down to at most 800px wide, stores it
// as <slug>.jpg and returns its public path. Non-remote URLs are returned
// unchanged. slug must be a single path element.
func (c Covers) Localize(ctx context.Context, slug, url string) (string, error) {
	if !usableSlug(slug) {
		return "", fmt.Errorf("archive: unusable slug %q", slug)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return url, nil
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("archive: cover request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("archive: download cover: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archive: download cover: %s", resp.Status)
	}

	data, err := processImage(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create %s: %w", c.Dir, err)
	}
	name := slug + ".jpg"
	if err := os.WriteFile(filepath.Join(c.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("archive: write cover: %w", err)
	}
	return path.Join("/", c.URLPrefix, name), nil
}

// processImage decodes src, scales it down to maxCoverWidth when wider, and
// encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("archive: decode image: %w", err)
	}

	bounds := img.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > maxCoverWidth {
		dst := image.NewRGBA(image.Rect(0, 0, maxCoverWidth, h*maxCoverWidth/w))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("archive: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
