package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not really an image"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []string
	}{
		{"plain list", "jpg,jpeg,png", []string{".jpeg", ".jpg", ".png"}},
		{"dots and spaces tolerated", " .JPG , png ", []string{".jpg", ".png"}},
		{"empty entries dropped", "jpg,,png,", []string{".jpg", ".png"}},
		{"empty list", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExtensions(tt.list)
			var keys []string
			for k := range got {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if !reflect.DeepEqual(keys, tt.want) {
				t.Errorf("ParseExtensions(%q) = %v, want %v", tt.list, keys, tt.want)
			}
		})
	}
}

func TestIsImageFileCaseInsensitive(t *testing.T) {
	exts := ParseExtensions(DefaultExtensions)

	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.JpEg", true},
		{"photo.png", true},
		{"photo.gif", false},
		{"photo.txt", false},
		{"photo", false},
	}

	for _, tt := range tests {
		if got := IsImageFile(tt.path, exts); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestListImagesFlat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.jpg"))
	writeFile(t, filepath.Join(root, "a.PNG"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "sub", "nested.jpg"))

	entries, err := ListImages(root, false, ParseExtensions(DefaultExtensions))
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}

	got := map[string]bool{}
	for _, e := range entries {
		got[e.Name] = true
		if e.Size == 0 {
			t.Errorf("entry %s has zero size", e.Name)
		}
	}
	if len(entries) != 2 || !got["b.jpg"] || !got["a.PNG"] {
		t.Errorf("flat listing = %v, want exactly [a.PNG b.jpg]", got)
	}
}

func TestListImagesRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.jpg"))
	writeFile(t, filepath.Join(root, "sub", "nested.jpeg"))
	writeFile(t, filepath.Join(root, "sub", "deeper", "deep.png"))
	writeFile(t, filepath.Join(root, ".hidden", "secret.jpg"))
	writeFile(t, filepath.Join(root, "sub", "skip.raw"))

	entries, err := ListImages(root, true, ParseExtensions(DefaultExtensions))
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}

	got := map[string]bool{}
	for _, e := range entries {
		got[e.Name] = true
	}
	want := []string{"top.jpg", "nested.jpeg", "deep.png"}
	if len(entries) != len(want) {
		t.Fatalf("recursive listing found %d files (%v), want %d", len(entries), got, len(want))
	}
	for _, n := range want {
		if !got[n] {
			t.Errorf("recursive listing missing %s", n)
		}
	}
	if got["secret.jpg"] {
		t.Error("recursive listing descended into a hidden directory")
	}
}

func TestListImagesErrors(t *testing.T) {
	if _, err := ListImages(filepath.Join(t.TempDir(), "missing"), false, ParseExtensions(DefaultExtensions)); err == nil {
		t.Error("expected an error for a missing root")
	}

	file := filepath.Join(t.TempDir(), "file.jpg")
	writeFile(t, file)
	if _, err := ListImages(file, false, ParseExtensions(DefaultExtensions)); err == nil {
		t.Error("expected an error when root is a file")
	}
}

func TestListFolders(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"zeta", "alpha", ".git", "mid"} {
		if err := os.Mkdir(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, filepath.Join(root, "loose.jpg"))

	folders, err := ListFolders(root)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}

	var got []string
	for _, f := range folders {
		got = append(got, f.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFolders = %v, want %v (sorted, hidden skipped)", got, want)
	}
}

func TestCaptureTimeMissingExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	writeFile(t, path)

	if _, ok := CaptureTime(path); ok {
		t.Error("CaptureTime reported ok for a file with no EXIF data")
	}
	if _, ok := CaptureTime(filepath.Join(t.TempDir(), "missing.jpg")); ok {
		t.Error("CaptureTime reported ok for a missing file")
	}
}
