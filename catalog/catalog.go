// Package catalog is the in-memory source of truth for the current scan:
// photo records keyed by path, optimistic edits, and reconciliation of
// asynchronous metadata writes against per-path version tokens.
package catalog

import (
	"sort"
	"sync"
	"time"

	"phototriage/logging"
	"phototriage/metadata"
	"phototriage/types"

	"golang.org/x/sync/errgroup"
)

// Gateway is the external collaborator the catalog depends on: directory
// listing and tag persistence. Implemented by server.Gateways in
// production and by fakes in tests.
type Gateway interface {
	ListImages(root string, recursive bool) ([]types.FileEntry, error)
	ReadTags(path string) (int, types.ColorLabel, error)
	ReadTagsBatch(paths []string) map[string]metadata.TagResult
	WriteTags(path string, tags types.Tags) error
	CaptureTime(path string) (time.Time, bool)
}

// tag reads go out in chunks so a huge folder does not build one
// enormous exiftool command line
const readBatchSize = 100

// writeTask carries one pending metadata write through the writer
// goroutine. The token pins the optimistic state the write belongs to.
type writeTask struct {
	path   string
	tags   types.Tags
	token  uint64
	result chan error
}

// Store owns the catalog for the currently scanned root. All other
// components read records by value and never mutate them.
type Store struct {
	gw Gateway

	mu        sync.RWMutex
	root      string
	recursive bool
	records   []types.PhotoRecord
	index     map[string]int
	versions  map[string]uint64

	writeCh chan writeTask
	done    chan struct{}

	// workers bounds the capture-time readers during a scan
	workers int
}

// NewStore creates a store backed by the given gateway and starts its
// write queue. Call Close when done.
func NewStore(gw Gateway, workers int) *Store {
	if workers < 1 {
		workers = 1
	}
	s := &Store{
		gw:       gw,
		index:    make(map[string]int),
		versions: make(map[string]uint64),
		writeCh:  make(chan writeTask, 64),
		done:     make(chan struct{}),
		workers:  workers,
	}
	go s.writeLoop()
	return s
}

// Close stops the background writer
func (s *Store) Close() {
	close(s.done)
}

// Gateway exposes the external collaborator, for callers that need a
// direct read outside the catalog (e.g. metadata of an unscanned file)
func (s *Store) Gateway() Gateway {
	return s.gw
}

// Root returns the currently scanned root path and recursion flag
func (s *Store) Root() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root, s.recursive
}

// Records returns a copy of the catalog in ascending-name order
func (s *Store) Records() []types.PhotoRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.PhotoRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record for a path, if present
func (s *Store) Get(path string) (types.PhotoRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[path]
	if !ok {
		return types.PhotoRecord{}, false
	}
	return s.records[i], true
}

// Scan replaces the catalog wholesale with the contents of root. A
// listing failure degrades to an empty catalog with a warning instead of
// propagating; per-file tag read failures degrade to unrated/unlabeled.
func (s *Store) Scan(root string, recursive bool) []types.PhotoRecord {
	start := time.Now()

	entries, err := s.gw.ListImages(root, recursive)
	if err != nil {
		logging.LogWarning("Scan of %s failed, returning empty catalog: %v", root, err)
		logging.LogScanResult(root, 0, time.Since(start), err)
		s.replace(root, recursive, nil)
		return nil
	}

	records := make([]types.PhotoRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, types.PhotoRecord{
			Path: e.Path,
			Name: e.Name,
			Size: e.Size,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	s.attachTags(records)
	s.attachCaptureTimes(records)

	s.replace(root, recursive, records)
	logging.LogScanResult(root, len(records), time.Since(start), nil)
	return s.Records()
}

// attachTags fills rating and label from the metadata gateway in chunks
func (s *Store) attachTags(records []types.PhotoRecord) {
	for lo := 0; lo < len(records); lo += readBatchSize {
		hi := lo + readBatchSize
		if hi > len(records) {
			hi = len(records)
		}

		paths := make([]string, 0, hi-lo)
		for _, r := range records[lo:hi] {
			paths = append(paths, r.Path)
		}

		results := s.gw.ReadTagsBatch(paths)
		for i := lo; i < hi; i++ {
			res, ok := results[records[i].Path]
			if !ok || res.Err != nil {
				// Unreadable metadata shows up as unrated, not as a failed scan
				if ok {
					logging.DebugLog("Using default tags for %s: %v", records[i].Path, res.Err)
				}
				continue
			}
			records[i].Rating = types.ClampRating(res.Rating)
			records[i].Label = res.Label
		}
	}
}

// attachCaptureTimes fills TakenAt with a bounded worker group
func (s *Store) attachCaptureTimes(records []types.PhotoRecord) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range records {
		i := i
		g.Go(func() error {
			if t, ok := s.gw.CaptureTime(records[i].Path); ok {
				records[i].TakenAt = t
			}
			return nil
		})
	}
	g.Wait()
}

// replace swaps in a new catalog; pending version tokens from the old
// catalog are discarded with it
func (s *Store) replace(root string, recursive bool, records []types.PhotoRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.root = root
	s.recursive = recursive
	s.records = records
	s.index = make(map[string]int, len(records))
	s.versions = make(map[string]uint64, len(records))
	for i, r := range records {
		s.index[r.Path] = i
	}
}

// ApplyOptimistic mutates the in-memory record immediately, before the
// backing write has completed. Each provided field is applied
// independently; omitted fields keep their current value. Returns the
// version token of the mutation, or ok=false for an unknown path or an
// invalid field value.
func (s *Store) ApplyOptimistic(path string, tags types.Tags) (uint64, bool) {
	if tags.Label != nil && !types.ValidLabel(*tags.Label) {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[path]
	if !ok {
		return 0, false
	}

	if tags.Rating != nil {
		s.records[i].Rating = types.ClampRating(*tags.Rating)
	}
	if tags.Label != nil {
		s.records[i].Label = *tags.Label
	}

	s.versions[path]++
	return s.versions[path], true
}

// Confirm reconciles a completed asynchronous write. Failures keep the
// optimistic value (no rollback); completions carrying a stale token are
// ignored so a slow superseded write can never clobber a newer edit.
func (s *Store) Confirm(path string, token uint64, err error) {
	s.mu.RLock()
	latest := s.versions[path]
	s.mu.RUnlock()

	if token != latest {
		logging.DebugLog("Stale write completion for %s (token %d, latest %d)", path, token, latest)
		return
	}
	if err != nil {
		logging.LogError("Metadata write failed for %s, keeping optimistic value: %v", path, err)
	}
}

// SubmitWrite applies an optimistic edit and queues the persistent
// write. The returned channel delivers the write outcome exactly once;
// callers may stop waiting at any point without blocking the writer.
func (s *Store) SubmitWrite(path string, tags types.Tags) (<-chan error, bool) {
	token, ok := s.ApplyOptimistic(path, tags)
	if !ok {
		return nil, false
	}

	result := make(chan error, 1)
	s.writeCh <- writeTask{path: path, tags: tags, token: token, result: result}
	return result, true
}

// writeLoop drains the write queue one task at a time. Completion order
// across paths is whatever exiftool yields; the token check in Confirm
// is what keeps that safe.
func (s *Store) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case task := <-s.writeCh:
			err := s.gw.WriteTags(task.path, task.tags)
			s.Confirm(task.path, task.token, err)
			task.result <- err
		}
	}
}
