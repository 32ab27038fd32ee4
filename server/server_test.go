package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"phototriage/catalog"
	"phototriage/metadata"
	"phototriage/thumbnail"
	"phototriage/types"

	"github.com/gofiber/fiber/v2"
)

// fakeGateway serves a fixed catalog regardless of the requested root
type fakeGateway struct {
	entries []types.FileEntry
	tags    map[string]metadata.TagResult
	listErr error
}

func (f *fakeGateway) ListImages(root string, recursive bool) ([]types.FileEntry, error) {
	return f.entries, f.listErr
}

func (f *fakeGateway) ReadTags(path string) (int, types.ColorLabel, error) {
	res, ok := f.tags[path]
	if !ok {
		return 0, types.LabelNone, &metadata.NotFoundError{Path: path}
	}
	return res.Rating, res.Label, nil
}

func (f *fakeGateway) ReadTagsBatch(paths []string) map[string]metadata.TagResult {
	out := make(map[string]metadata.TagResult, len(paths))
	for _, p := range paths {
		out[p] = f.tags[p]
	}
	return out
}

func (f *fakeGateway) WriteTags(path string, tags types.Tags) error { return nil }

func (f *fakeGateway) CaptureTime(path string) (time.Time, bool) { return time.Time{}, false }

func testApp(t *testing.T) (*fiber.App, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{tags: map[string]metadata.TagResult{}}
	gw.entries = []types.FileEntry{
		{Path: "/p/b.jpg", Name: "b.jpg", Size: 2},
		{Path: "/p/a.jpg", Name: "a.jpg", Size: 1},
	}
	gw.tags["/p/b.jpg"] = metadata.TagResult{Rating: 4, Label: types.LabelRed}

	store := catalog.NewStore(gw, 1)
	t.Cleanup(store.Close)

	renderer, err := thumbnail.NewRenderer("")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(renderer.Close)

	return New(catalog.NewSession(store), renderer), gw
}

func decodeJSON(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return out
}

func TestPhotosRequiresPath(t *testing.T) {
	app, _ := testApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/photos", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestPhotosReturnsSortedCatalog(t *testing.T) {
	app, _ := testApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/photos?path=/p", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	data := decodeJSON(t, res)
	photos := data["photos"].([]interface{})
	if len(photos) != 2 {
		t.Fatalf("photos = %d entries, want 2", len(photos))
	}
	first := photos[0].(map[string]interface{})
	if first["name"] != "a.jpg" {
		t.Errorf("first photo = %v, want a.jpg (name order)", first["name"])
	}
	if data["selected"].(float64) != 0 {
		t.Errorf("selected = %v, want 0", data["selected"])
	}
}

func TestPhotosAppliesFilterCriteria(t *testing.T) {
	app, _ := testApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/photos?path=/p&minRating=4", nil))
	if err != nil {
		t.Fatal(err)
	}
	data := decodeJSON(t, res)
	photos := data["photos"].([]interface{})
	if len(photos) != 1 {
		t.Fatalf("filtered photos = %d entries, want 1", len(photos))
	}
	if photos[0].(map[string]interface{})["name"] != "b.jpg" {
		t.Errorf("filtered photo = %v, want b.jpg", photos[0])
	}
}

func TestReadMetadataDefaultsOnFailure(t *testing.T) {
	app, _ := testApp(t)

	// Never scanned and unknown to the gateway: defaults, not an error
	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/metadata?file=/nowhere/x.jpg", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	data := decodeJSON(t, res)
	if data["rating"].(float64) != 0 || data["label"] != nil {
		t.Errorf("metadata = %v, want rating 0 and null label", data)
	}
}

func TestReadMetadataFromCatalog(t *testing.T) {
	app, _ := testApp(t)
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/photos?path=/p", nil)); err != nil {
		t.Fatal(err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/metadata?file="+url.QueryEscape("/p/b.jpg"), nil))
	if err != nil {
		t.Fatal(err)
	}
	data := decodeJSON(t, res)
	if data["rating"].(float64) != 4 || data["label"] != "Red" {
		t.Errorf("metadata = %v, want rating 4 label Red", data)
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestWriteMetadata(t *testing.T) {
	app, _ := testApp(t)
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/photos?path=/p", nil)); err != nil {
		t.Fatal(err)
	}

	res := postJSON(t, app, "/metadata", map[string]interface{}{
		"file":   "/p/a.jpg",
		"rating": 5,
	})
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	data := decodeJSON(t, res)
	if data["success"] != true {
		t.Errorf("response = %v, want success", data)
	}
	// Auto-advance: selection was 0, the write moves it to 1
	if data["selected"].(float64) != 1 {
		t.Errorf("selected = %v, want 1", data["selected"])
	}
}

func TestWriteMetadataValidation(t *testing.T) {
	app, _ := testApp(t)
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/photos?path=/p", nil)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		payload map[string]interface{}
		want    int
	}{
		{"missing file", map[string]interface{}{"rating": 3}, fiber.StatusBadRequest},
		{"no fields", map[string]interface{}{"file": "/p/a.jpg"}, fiber.StatusBadRequest},
		{"invalid label", map[string]interface{}{"file": "/p/a.jpg", "label": "Purple"}, fiber.StatusBadRequest},
		{"unknown file", map[string]interface{}{"file": "/p/zz.jpg", "rating": 3}, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := postJSON(t, app, "/metadata", tt.payload); res.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}

func TestCopyFilesEndpoint(t *testing.T) {
	app, _ := testApp(t)

	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "picks")
	var files []string
	for i := 0; i < 2; i++ {
		p := filepath.Join(src, fmt.Sprintf("f%d.jpg", i))
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, p)
	}
	files = append(files, filepath.Join(src, "missing.jpg"))

	res := postJSON(t, app, "/copy-files", map[string]interface{}{
		"files":       files,
		"destination": dest,
	})
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	data := decodeJSON(t, res)
	if data["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2 (missing file skipped)", data["count"])
	}
}

func TestThumbnailMissingFile(t *testing.T) {
	app, _ := testApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/thumbnail?file="+url.QueryEscape("/nowhere/x.jpg"), nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
}
