package types

import (
	"fmt"
	"time"
)

// ColorLabel is one of the named color tags a photo can carry.
type ColorLabel string

const (
	LabelNone   ColorLabel = ""
	LabelRed    ColorLabel = "Red"
	LabelYellow ColorLabel = "Yellow"
	LabelGreen  ColorLabel = "Green"
	LabelBlue   ColorLabel = "Blue"
)

// LabelAny is the filter wildcard. It is never stored on a record.
const LabelAny ColorLabel = "Any"

// ValidLabel checks if a label is one that can be stored on a record
func ValidLabel(l ColorLabel) bool {
	switch l {
	case LabelNone, LabelRed, LabelYellow, LabelGreen, LabelBlue:
		return true
	default:
		return false
	}
}

// ClampRating forces a rating into the valid 0-5 range
func ClampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// PhotoRecord holds one scanned image file and its triage metadata
type PhotoRecord struct {
	Path    string     `json:"path"`
	Name    string     `json:"name"`
	Size    int64      `json:"size"`
	Rating  int        `json:"rating"`
	Label   ColorLabel `json:"label"`
	TakenAt time.Time  `json:"taken_at,omitzero"`
}

// Tags is the metadata slice of a record that the exiftool gateway reads
// and writes. A nil field means "leave this field untouched".
type Tags struct {
	Rating *int        `json:"rating,omitempty"`
	Label  *ColorLabel `json:"label,omitempty"`
}

// String renders the requested fields for logging
func (t Tags) String() string {
	s := "{"
	if t.Rating != nil {
		s += fmt.Sprintf("rating=%d", *t.Rating)
	}
	if t.Label != nil {
		if len(s) > 1 {
			s += " "
		}
		s += fmt.Sprintf("label=%q", string(*t.Label))
	}
	return s + "}"
}

// FilterCriteria selects which records are visible.
// MinRating 0 and Label "Any" mean unfiltered.
type FilterCriteria struct {
	MinRating int        `json:"minRating"`
	Label     ColorLabel `json:"label"`
}

// Unfiltered is the criteria that shows every record
var Unfiltered = FilterCriteria{MinRating: 0, Label: LabelAny}

// FileEntry is one file produced by a directory listing, before any
// metadata has been attached to it
type FileEntry struct {
	Path string
	Name string
	Size int64
}

// FolderEntry is one subdirectory in a folder listing
type FolderEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
