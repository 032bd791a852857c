package filecache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/timmy/mygallery/internal/domain"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) EnsureBucket(context.Context) error { return nil }

func (m *memObjects) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memObjects) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func (m *memObjects) GetURL(key string) string { return "http://bucket/" + key }

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memObjects) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memObjects) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func TestObjectCache_Lifecycle(t *testing.T) {
	ctx := context.Background()
	srv := newImageServer(t, pngBytes(t))
	objects := newMemObjects()
	cache := NewObjectCache(objects, "/images/", 0)

	key, err := cache.DownloadAndSave(ctx, domain.Image{ID: "42", URL: srv.URL + "/id/42/10/10"})
	if err != nil {
		t.Fatalf("DownloadAndSave: %v", err)
	}
	if key != "images/42.png" {
		t.Errorf("key = %q, want images/42.png", key)
	}
	if objects.types[key] != "image/png" {
		t.Errorf("content type = %q", objects.types[key])
	}
	if got := cache.URL(key); got != "http://bucket/images/42.png" {
		t.Errorf("URL = %q", got)
	}

	got, found, err := cache.GetLocalPath(ctx, "42")
	if err != nil || !found || got != key {
		t.Errorf("GetLocalPath = %q, %v, %v", got, found, err)
	}

	if err := cache.DeleteLocalFile(ctx, key); err != nil {
		t.Fatalf("DeleteLocalFile: %v", err)
	}
	if _, found, _ := cache.GetLocalPath(ctx, "42"); found {
		t.Error("object still present after delete")
	}
	if err := cache.DeleteLocalFile(ctx, key); err != nil {
		t.Errorf("deleting a missing object should be a no-op, got %v", err)
	}
	if err := cache.DeleteLocalFile(ctx, "other/42.png"); err == nil {
		t.Error("expected refusal for key outside prefix")
	}
	if err := cache.DeleteLocalFile(ctx, "images/../secret.png"); err == nil {
		t.Error("expected refusal for key escaping the prefix")
	}
}

func TestObjectCache_RejectsPathIDs(t *testing.T) {
	srv := newImageServer(t, pngBytes(t))
	objects := newMemObjects()
	cache := NewObjectCache(objects, "images", 0)

	_, err := cache.DownloadAndSave(context.Background(), domain.Image{ID: "../escaped", URL: srv.URL + "/x"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if len(objects.objects) != 0 {
		t.Errorf("uploaded %d objects for a rejected id", len(objects.objects))
	}
}

func TestObjectCache_ClearAll(t *testing.T) {
	ctx := context.Background()
	objects := newMemObjects()
	objects.objects["images/1.jpg"] = []byte("a")
	objects.objects["images/2.png"] = []byte("b")
	objects.objects["keep/3.jpg"] = []byte("c")
	cache := NewObjectCache(objects, "", 0)

	if err := cache.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(objects.objects) != 1 {
		t.Errorf("objects left = %v", objects.objects)
	}
}
