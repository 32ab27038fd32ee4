// Package metadata reads and writes rating and color-label tags through
// exiftool. All EXIF/XMP binary handling is delegated to the exiftool
// process; this package only maps tag values onto catalog types.
package metadata

import (
	"fmt"
	"os"

	"phototriage/logging"
	"phototriage/types"

	"github.com/barasher/go-exiftool"
)

const (
	ratingTag = "Rating"
	labelTag  = "Label"
)

// TagResult is the outcome of reading one file's tags.
type TagResult struct {
	Rating int
	Label  types.ColorLabel
	Err    error
}

// Gateway talks to a pool of stay-open exiftool instances. A single
// instance serializes its own command queue, so the pool is what allows
// concurrent readers during a scan.
type Gateway struct {
	pool chan *exiftool.Exiftool
	size int
}

// NewGateway starts poolSize exiftool instances. Writes never create
// "_original" backup files; exiftool replaces the target in place.
func NewGateway(poolSize int) (*Gateway, error) {
	if poolSize < 1 {
		poolSize = 1
	}

	g := &Gateway{
		pool: make(chan *exiftool.Exiftool, poolSize),
		size: poolSize,
	}

	for i := 0; i < poolSize; i++ {
		et, err := exiftool.NewExiftool()
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to start exiftool: %v", err)
		}
		g.pool <- et
	}

	return g, nil
}

// Close shuts down every exiftool instance in the pool
func (g *Gateway) Close() {
	for {
		select {
		case et := <-g.pool:
			et.Close()
		default:
			return
		}
	}
}

func (g *Gateway) acquire() *exiftool.Exiftool {
	return <-g.pool
}

func (g *Gateway) release(et *exiftool.Exiftool) {
	g.pool <- et
}

// ReadTags reads the rating and label for a single file.
// Returns NotFoundError if the file is missing, ReadError if exiftool
// cannot parse it.
func (g *Gateway) ReadTags(path string) (int, types.ColorLabel, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, types.LabelNone, &NotFoundError{Path: path}
	}

	et := g.acquire()
	fms := et.ExtractMetadata(path)
	g.release(et)

	if len(fms) == 0 {
		return 0, types.LabelNone, &ReadError{Path: path, Err: fmt.Errorf("no metadata returned")}
	}
	fm := fms[0]
	if fm.Err != nil {
		return 0, types.LabelNone, &ReadError{Path: path, Err: fm.Err}
	}

	rating, label := tagsFromFields(fm)
	return rating, label, nil
}

// ReadTagsBatch reads tags for many files in one exiftool round trip.
// The result map always contains an entry per requested path; per-file
// failures are carried in TagResult.Err, never returned as a batch error.
func (g *Gateway) ReadTagsBatch(paths []string) map[string]TagResult {
	results := make(map[string]TagResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	et := g.acquire()
	fms := et.ExtractMetadata(paths...)
	g.release(et)

	for _, fm := range fms {
		if fm.Err != nil {
			results[fm.File] = TagResult{Err: &ReadError{Path: fm.File, Err: fm.Err}}
			continue
		}
		rating, label := tagsFromFields(fm)
		results[fm.File] = TagResult{Rating: rating, Label: label}
	}

	// Paths exiftool never reported back are treated as read failures
	for _, p := range paths {
		if _, ok := results[p]; !ok {
			results[p] = TagResult{Err: &ReadError{Path: p, Err: fmt.Errorf("no metadata returned")}}
		}
	}

	return results
}

// WriteTags persists the requested fields to a file. Both fields go out
// in a single exiftool command, so either all requested tags land or
// none do. Returns WriteError on failure.
func (g *Gateway) WriteTags(path string, tags types.Tags) error {
	if tags.Rating == nil && tags.Label == nil {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &WriteError{Path: path, Err: &NotFoundError{Path: path}}
	}

	fm := exiftool.FileMetadata{
		File:   path,
		Fields: map[string]interface{}{},
	}
	if tags.Rating != nil {
		fm.SetInt(ratingTag, int64(types.ClampRating(*tags.Rating)))
	}
	if tags.Label != nil {
		if *tags.Label == types.LabelNone {
			fm.Clear(labelTag)
		} else {
			fm.SetString(labelTag, string(*tags.Label))
		}
	}

	et := g.acquire()
	fms := []exiftool.FileMetadata{fm}
	et.WriteMetadata(fms)
	g.release(et)

	if fms[0].Err != nil {
		logging.LogMetadataWrite(path, false, fms[0].Err.Error())
		return &WriteError{Path: path, Err: fms[0].Err}
	}

	logging.LogMetadataWrite(path, true, "")
	return nil
}

// tagsFromFields maps exiftool fields onto catalog values. Missing or
// malformed tags degrade to the zero values rather than erroring.
func tagsFromFields(fm exiftool.FileMetadata) (int, types.ColorLabel) {
	rating := 0
	if v, err := fm.GetInt(ratingTag); err == nil {
		rating = types.ClampRating(int(v))
	}

	label := types.LabelNone
	if v, err := fm.GetString(labelTag); err == nil {
		if l := types.ColorLabel(v); types.ValidLabel(l) {
			label = l
		}
	}

	return rating, label
}
