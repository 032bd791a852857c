package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/list", func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]interface{}{}
		for i := 0; i < 3; i++ {
			id := fmt.Sprintf("%s-%d", r.URL.Query().Get("page"), i)
			items = append(items, map[string]interface{}{
				"id": id, "author": "Author", "width": 100, "height": 80,
				"download_url": srv.URL + "/img/" + id,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`source:
  base_url: %s
  timeout: 2s
storage:
  driver: file
  dir: %s
cache:
  backend: local
  dir: %s
`, baseURL, filepath.Join(dir, "store"), filepath.Join(dir, "images"))
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"gallery", "--config", configPath, "--log-level", "error"}, args...)
	err := newRootCommand(&out).Run(context.Background(), argv)
	return out.String(), err
}

func TestSavedCommands(t *testing.T) {
	srv := newCatalog(t)
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, cfg, "saved", "add", "--id", "42", "--url", srv.URL+"/img/42", "--author", "Ann")
	if err != nil {
		t.Fatalf("saved add: %v", err)
	}
	if !strings.Contains(out, "Saved:") || !strings.Contains(out, "local:") {
		t.Errorf("saved add output = %q", out)
	}

	// a fresh process reads the persisted collection
	out, err = run(t, cfg, "saved", "list")
	if err != nil || !strings.Contains(out, "(1 total)") || !strings.Contains(out, "42") {
		t.Fatalf("saved list = %q, %v", out, err)
	}

	if _, err := run(t, cfg, "saved", "delete"); err == nil {
		t.Error("delete without id should fail")
	}
	if _, err := run(t, cfg, "saved", "delete", "42"); err != nil {
		t.Fatalf("saved delete: %v", err)
	}
	out, _ = run(t, cfg, "saved", "list")
	if !strings.Contains(out, "No saved images") {
		t.Errorf("after delete = %q", out)
	}
}

func TestGalleryCommand(t *testing.T) {
	srv := newCatalog(t)
	cfg := writeConfig(t, srv.URL)

	// three items per page is a short page, so loading stops after page 1
	out, err := run(t, cfg, "gallery", "--pages", "3")
	if err != nil {
		t.Fatalf("gallery: %v", err)
	}
	if !strings.Contains(out, "3 images from Lorem Picsum (page size 10), more available: false") {
		t.Errorf("gallery output = %q", out)
	}
}

func TestRandomSaveAndPurge(t *testing.T) {
	srv := newCatalog(t)
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, cfg, "random", "--save")
	if err != nil || !strings.Contains(out, "Saved:") {
		t.Fatalf("random --save = %q, %v", out, err)
	}
	if out, err := run(t, cfg, "cache", "purge"); err != nil || !strings.Contains(out, "Cache purged") {
		t.Fatalf("cache purge = %q, %v", out, err)
	}
	// records survive a purge
	out, _ = run(t, cfg, "saved", "list")
	if !strings.Contains(out, "(1 total)") {
		t.Errorf("saved list after purge = %q", out)
	}
}
