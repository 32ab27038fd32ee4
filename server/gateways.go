package server

import (
	"time"

	"phototriage/metadata"
	"phototriage/scanner"
	"phototriage/types"
)

// Gateways binds the directory scanner and the exiftool gateway into the
// single collaborator interface the catalog depends on.
type Gateways struct {
	Meta       *metadata.Gateway
	Extensions map[string]bool
}

func (g *Gateways) ListImages(root string, recursive bool) ([]types.FileEntry, error) {
	return scanner.ListImages(root, recursive, g.Extensions)
}

func (g *Gateways) ReadTags(path string) (int, types.ColorLabel, error) {
	return g.Meta.ReadTags(path)
}

func (g *Gateways) ReadTagsBatch(paths []string) map[string]metadata.TagResult {
	return g.Meta.ReadTagsBatch(paths)
}

func (g *Gateways) WriteTags(path string, tags types.Tags) error {
	return g.Meta.WriteTags(path, tags)
}

func (g *Gateways) CaptureTime(path string) (time.Time, bool) {
	return scanner.CaptureTime(path)
}
