package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/timmy/mygallery/internal/app"
	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/service"
)

// fakePicsum serves /v2/list and image bytes. Pages 1 and 2 are full,
// page 3 has three items.
type fakePicsum struct {
	srv         *httptest.Server
	unavailable atomic.Bool
}

func newFakePicsum(t *testing.T) *fakePicsum {
	t.Helper()
	f := &fakePicsum{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/list", func(w http.ResponseWriter, r *http.Request) {
		if f.unavailable.Load() {
			w.WriteHeader(525)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		n := limit
		if page >= 3 && limit > 1 {
			n = 3
		}
		items := make([]map[string]interface{}, 0, n)
		for i := 0; i < n; i++ {
			id := strconv.Itoa((page-1)*limit + i)
			items = append(items, map[string]interface{}{
				"id": id, "author": "Author " + id, "width": 640, "height": 480,
				"url":          "https://unsplash.com/photos/" + id,
				"download_url": f.srv.URL + "/img/" + id,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image bytes"))
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func setupTestRouter(t *testing.T) (http.Handler, *fakePicsum) {
	t.Helper()
	return setupTestRouterIn(t, t.TempDir())
}

// setupTestRouterIn keeps the collection under dir/store and files under dir/images.
func setupTestRouterIn(t *testing.T, dir string) (http.Handler, *fakePicsum) {
	t.Helper()
	picsum := newFakePicsum(t)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test", CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:8081"}}},
		Source: config.SourceConfig{
			BaseURL:       picsum.srv.URL,
			Timeout:       time.Second,
			RetryCount:    3,
			RetryWaitTime: time.Millisecond,
			RetryMaxWait:  2 * time.Millisecond,
			RandomMaxPage: 100,
		},
		Storage: config.StorageConfig{Driver: "file", Dir: filepath.Join(dir, "store"), Key: "@MyGallery:images"},
		Cache:   config.CacheConfig{Backend: "local", Dir: filepath.Join(dir, "images"), Timeout: time.Second},
		Gallery: config.GalleryConfig{PageSize: 10},
	}

	log := logger.New(&logger.Config{Level: "error", Output: io.Discard, ServiceName: "test"})
	a, err := app.Build(context.Background(), cfg, log, &app.Options{PagePicker: service.FixedPagePicker(37)})
	if err != nil {
		t.Fatalf("app.Build: %v", err)
	}
	return SetupRouter(a.Effects, a.Source, cfg.Server, log), picsum
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON %q", method, path, rec.Body.String())
		}
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	h, _ := setupTestRouter(t)
	rec, body := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" || body["source"] != "picsum" || body["sourceName"] == "" {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestGalleryPagination(t *testing.T) {
	h, _ := setupTestRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/v1/gallery", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET gallery = %d %v", rec.Code, body)
	}
	if n := len(body["images"].([]interface{})); n != 10 || body["hasMore"] != true || body["page"] != float64(2) {
		t.Fatalf("first load = %d images, hasMore %v, page %v", n, body["hasMore"], body["page"])
	}

	_, body = do(t, h, http.MethodPost, "/api/v1/gallery/next", nil)
	if n := len(body["images"].([]interface{})); n != 20 || body["hasMore"] != true {
		t.Fatalf("after next = %d images, hasMore %v", n, body["hasMore"])
	}

	_, body = do(t, h, http.MethodPost, "/api/v1/gallery/next", nil)
	if n := len(body["images"].([]interface{})); n != 23 || body["hasMore"] != false {
		t.Fatalf("after short page = %d images, hasMore %v", n, body["hasMore"])
	}

	_, body = do(t, h, http.MethodPost, "/api/v1/gallery/refresh", nil)
	if n := len(body["images"].([]interface{})); n != 10 || body["hasMore"] != true {
		t.Fatalf("after refresh = %d images, hasMore %v", n, body["hasMore"])
	}
}

func TestSaveListDelete(t *testing.T) {
	h, picsum := setupTestRouter(t)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/saved", map[string]interface{}{"id": "", "url": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid save = %d, want 400", rec.Code)
	}

	image := map[string]interface{}{"id": "5", "url": picsum.srv.URL + "/img/5", "author": "A", "width": 10, "height": 10}
	rec, body := do(t, h, http.MethodPost, "/api/v1/saved", image)
	if rec.Code != http.StatusCreated || body["degraded"] != false {
		t.Fatalf("save = %d %v", rec.Code, body)
	}
	saved := body["image"].(map[string]interface{})
	if saved["localPath"] == "" || saved["isSaved"] != true {
		t.Errorf("saved image = %v", saved)
	}

	// saving again upserts
	if rec, _ := do(t, h, http.MethodPost, "/api/v1/saved", image); rec.Code != http.StatusCreated {
		t.Fatalf("second save = %d", rec.Code)
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/saved?reload=true", nil)
	if body["total"] != float64(1) {
		t.Fatalf("saved total = %v", body["total"])
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/gallery", nil)
	for _, raw := range body["images"].([]interface{}) {
		img := raw.(map[string]interface{})
		if img["id"] == "5" && img["isSaved"] != true {
			t.Errorf("gallery image 5 not flagged as saved: %v", img)
		}
	}

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/saved/5", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	_, body = do(t, h, http.MethodGet, "/api/v1/saved?reload=true", nil)
	if body["total"] != float64(0) {
		t.Errorf("saved total after delete = %v", body["total"])
	}
}

func TestDegradedSave(t *testing.T) {
	h, picsum := setupTestRouter(t)

	image := map[string]interface{}{"id": "8", "url": picsum.srv.URL + "/broken/8", "author": "A", "width": 1, "height": 1}
	rec, body := do(t, h, http.MethodPost, "/api/v1/saved", image)
	if rec.Code != http.StatusAccepted || body["degraded"] != true || body["message"] == "" {
		t.Fatalf("degraded save = %d %v", rec.Code, body)
	}
	if _, ok := body["image"].(map[string]interface{})["localPath"]; ok {
		t.Errorf("degraded record should have no localPath: %v", body["image"])
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/state", nil)
	if body["errors"].(map[string]interface{})["save"] == nil {
		t.Error("save error not recorded in state")
	}
	if n := len(body["savedImages"].([]interface{})); n != 1 {
		t.Errorf("savedImages = %d, want degraded record", n)
	}
}

func TestSaveWithStorageFailure(t *testing.T) {
	dir := t.TempDir()
	h, picsum := setupTestRouterIn(t, dir)

	// a regular file where the store directory was makes every read and write fail
	store := filepath.Join(dir, "store")
	if err := os.RemoveAll(store); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	image := map[string]interface{}{"id": "9", "url": picsum.srv.URL + "/broken/9"}
	rec, body := do(t, h, http.MethodPost, "/api/v1/saved", image)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("save = %d %v, want 500", rec.Code, body)
	}
	if msg, _ := body["error"].(string); strings.Contains(msg, "saved without a local copy") {
		t.Errorf("error %q claims the image was saved", msg)
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/state", nil)
	if n := len(body["savedImages"].([]interface{})); n != 0 {
		t.Errorf("savedImages = %d, want 0", n)
	}
	if msg, _ := body["errors"].(map[string]interface{})["save"].(string); strings.Contains(msg, "saved without a local copy") {
		t.Errorf("state error %q claims the image was saved", msg)
	}
}

func TestSaveRejectsPathID(t *testing.T) {
	h, picsum := setupTestRouter(t)
	image := map[string]interface{}{"id": "../escaped", "url": picsum.srv.URL + "/img/1"}
	if rec, body := do(t, h, http.MethodPost, "/api/v1/saved", image); rec.Code != http.StatusBadRequest {
		t.Fatalf("save = %d %v, want 400", rec.Code, body)
	}
}

func TestRandomAndHistory(t *testing.T) {
	h, picsum := setupTestRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/v1/random", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("random = %d %v", rec.Code, body)
	}
	if body["image"].(map[string]interface{})["id"] != "36" {
		t.Errorf("random image = %v, want the single image on page 37", body["image"])
	}

	rec, body = do(t, h, http.MethodPost, "/api/v1/random/save", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("fetch and save = %d %v", rec.Code, body)
	}

	_, body = do(t, h, http.MethodPost, "/api/v1/history/back", nil)
	if body["canGoForward"] != true || body["historyIndex"] != float64(0) {
		t.Errorf("after back = %v", body)
	}
	_, body = do(t, h, http.MethodPost, "/api/v1/history/forward", nil)
	if body["canGoForward"] != false || body["image"].(map[string]interface{})["isSaved"] != true {
		t.Errorf("after forward = %v", body)
	}

	picsum.unavailable.Store(true)
	rec, body = do(t, h, http.MethodGet, "/api/v1/random", nil)
	if rec.Code != http.StatusBadGateway || body["error"] != "Server temporarily unavailable. Try again in a few moments." {
		t.Fatalf("unavailable = %d %v", rec.Code, body)
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/state", nil)
	if body["errors"].(map[string]interface{})["random"] == nil {
		t.Fatal("random error not recorded")
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/errors/random", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("clear error = %d", rec.Code)
	}
	_, body = do(t, h, http.MethodGet, "/api/v1/state", nil)
	if _, ok := body["errors"].(map[string]interface{})["random"]; ok {
		t.Error("random error not cleared")
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/errors/bogus", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown op = %d", rec.Code)
	}
}

func TestClearSaved(t *testing.T) {
	h, picsum := setupTestRouter(t)
	for _, id := range []string{"1", "2"} {
		img := map[string]interface{}{"id": id, "url": fmt.Sprintf("%s/img/%s", picsum.srv.URL, id)}
		if rec, _ := do(t, h, http.MethodPost, "/api/v1/saved", img); rec.Code != http.StatusCreated {
			t.Fatalf("save %s = %d", id, rec.Code)
		}
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/saved", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("clear = %d", rec.Code)
	}
	_, body := do(t, h, http.MethodGet, "/api/v1/saved?reload=true", nil)
	if body["total"] != float64(0) {
		t.Errorf("total after clear = %v", body["total"])
	}
}

func TestCORS(t *testing.T) {
	h, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/saved", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:8081" {
		t.Errorf("allowed preflight = %d, origin %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("disallowed origin got CORS headers")
	}
}
