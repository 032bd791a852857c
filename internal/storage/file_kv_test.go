package storage

import (
	"context"
	"os"
	"testing"
)

func TestFileKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	if _, found, err := kv.Get(ctx, "@MyGallery:images"); err != nil || found {
		t.Fatalf("Get on empty store = found %v, err %v", found, err)
	}

	if err := kv.Set(ctx, "@MyGallery:images", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "@MyGallery:images", `[{"id":"2"}]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	val, found, err := kv.Get(ctx, "@MyGallery:images")
	if err != nil || !found {
		t.Fatalf("Get = found %v, err %v", found, err)
	}
	if val != `[{"id":"2"}]` {
		t.Errorf("Get = %q", val)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file (no temp leftovers), got %d", len(entries))
	}

	if err := kv.Remove(ctx, "@MyGallery:images"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, _ := kv.Get(ctx, "@MyGallery:images"); found {
		t.Error("key still present after Remove")
	}
	if err := kv.Remove(ctx, "@MyGallery:images"); err != nil {
		t.Errorf("Remove of missing key: %v", err)
	}
}

func TestFileKV_CanceledContext(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := kv.Set(ctx, "k", "v"); err == nil {
		t.Error("Set with canceled context should fail")
	}
}
