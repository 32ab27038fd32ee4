// Package thumbnail renders bounded-size previews of image files.
// Decoding, EXIF orientation correction and resampling are delegated to
// the imaging library; renders are cached in sqlite and concurrent
// requests for the same file are collapsed into a single render.
package thumbnail

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"time"

	"phototriage/logging"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	// imaging registers jpeg/png/gif/tiff/bmp; webp comes from x/image so
	// an extended extension allow-list still decodes
	_ "golang.org/x/image/webp"
)

const (
	// ThumbWidth and ThumbHeight bound the grid thumbnail box
	ThumbWidth  = 320
	ThumbHeight = 320

	thumbQuality = 80
	imageQuality = 92
)

// Renderer is the thumbnail gateway. The zero value is not usable; use
// NewRenderer.
type Renderer struct {
	db    *sql.DB
	group singleflight.Group
}

// NewRenderer opens (or creates) the render cache at cachePath. An empty
// cachePath disables caching and every request renders from scratch.
func NewRenderer(cachePath string) (*Renderer, error) {
	r := &Renderer{}

	if cachePath != "" {
		db, err := InitCache(cachePath)
		if err != nil {
			return nil, fmt.Errorf("cannot open thumbnail cache %s: %v", cachePath, err)
		}
		r.db = db
	}

	return r, nil
}

// Close releases the cache database
func (r *Renderer) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Thumbnail renders a grid-sized JPEG preview for a file, upright per
// its EXIF orientation. Results are cached against the file's
// modification time.
func (r *Renderer) Thumbnail(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access image %s: %v", path, err)
	}
	modifiedAt := info.ModTime().Format(time.RFC3339Nano)

	if r.db != nil {
		data, hit, err := lookupThumb(r.db, path, ThumbWidth, ThumbHeight, modifiedAt)
		if err != nil {
			logging.LogWarning("Thumbnail cache lookup error, rendering directly: %v", err)
		} else if hit {
			return data, nil
		}
	}

	// Collapse concurrent renders of the same file into one
	v, err, _ := r.group.Do(path, func() (interface{}, error) {
		data, err := renderJPEG(path, ThumbWidth, ThumbHeight, thumbQuality)
		if err != nil {
			return nil, err
		}
		if r.db != nil {
			if err := storeThumb(r.db, path, ThumbWidth, ThumbHeight, modifiedAt, data); err != nil {
				logging.LogWarning("Could not cache thumbnail: %v", err)
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Image renders a full-quality, orientation-corrected JPEG of a file.
// Full renders are served per request and never cached.
func (r *Renderer) Image(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image %s: %v", path, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(imageQuality)); err != nil {
		return nil, fmt.Errorf("cannot encode image %s: %v", path, err)
	}
	return buf.Bytes(), nil
}

// renderJPEG decodes, orients, fits into the bounding box and re-encodes
func renderJPEG(path string, maxW, maxH, quality int) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image %s: %v", path, err)
	}

	fitted := imaging.Fit(img, maxW, maxH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("cannot encode thumbnail for %s: %v", path, err)
	}
	return buf.Bytes(), nil
}
