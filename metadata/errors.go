package metadata

import "fmt"

// NotFoundError indicates the file does not exist on disk.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// ReadError indicates exiftool could not extract metadata from a file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read metadata for %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError indicates exiftool could not persist metadata to a file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write metadata for %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
