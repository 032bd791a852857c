package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/filecache"
	"github.com/timmy/mygallery/internal/repository"
	"github.com/timmy/mygallery/internal/storage"
)

type fakeStore struct {
	images  []domain.Image
	saveErr error
	saves   int
	deletes []string
}

func (f *fakeStore) GetSavedImages(context.Context) ([]domain.Image, error) {
	return domain.CloneImages(f.images), nil
}

func (f *fakeStore) SaveImage(_ context.Context, img domain.Image) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	for i := range f.images {
		if f.images[i].ID == img.ID {
			f.images[i] = img
			return nil
		}
	}
	f.images = append(f.images, img)
	return nil
}

func (f *fakeStore) DeleteImage(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeStore) ClearAllImages(context.Context) error {
	f.images = nil
	return nil
}

type fakeCache struct {
	cached      map[string]string
	downloadErr error
	downloads   int
	lookups     int
}

func (f *fakeCache) DownloadAndSave(_ context.Context, img domain.Image) (string, error) {
	f.downloads++
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return "/cache/" + img.ID + ".jpg", nil
}

func (f *fakeCache) GetLocalPath(_ context.Context, id string) (string, bool, error) {
	f.lookups++
	p, ok := f.cached[id]
	return p, ok, nil
}

func (f *fakeCache) DeleteLocalFile(context.Context, string) error { return nil }
func (f *fakeCache) ClearAll(context.Context) error               { return nil }

func testImage(id string) domain.Image {
	return domain.Image{ID: id, URL: "https://picsum.photos/id/" + id + "/100/100", Author: "a", Width: 100, Height: 100}
}

func TestSaveImageUseCase_ResolvesLocalCopy(t *testing.T) {
	withPath := testImage("1")
	withPath.LocalPath = "/already/1.png"

	tests := []struct {
		name          string
		img           domain.Image
		cached        map[string]string
		wantPath      string
		wantDownloads int
		wantLookups   int
	}{
		{"keeps existing local path", withPath, nil, "/already/1.png", 0, 0},
		{"reuses cached file", testImage("2"), map[string]string{"2": "/cache/2.webp"}, "/cache/2.webp", 0, 1},
		{"downloads when not cached", testImage("3"), nil, "/cache/3.jpg", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			cache := &fakeCache{cached: tt.cached}
			uc := NewSaveImageUseCase(store, cache, nil)

			got, err := uc.Execute(context.Background(), tt.img)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got.LocalPath != tt.wantPath {
				t.Errorf("LocalPath = %q, want %q", got.LocalPath, tt.wantPath)
			}
			if cache.downloads != tt.wantDownloads || cache.lookups != tt.wantLookups {
				t.Errorf("downloads=%d lookups=%d, want %d/%d", cache.downloads, cache.lookups, tt.wantDownloads, tt.wantLookups)
			}
			if len(store.images) != 1 || store.images[0].LocalPath != tt.wantPath {
				t.Errorf("persisted = %+v", store.images)
			}
		})
	}
}

func TestSaveImageUseCase_InvalidInputHasNoSideEffects(t *testing.T) {
	store := &fakeStore{}
	cache := &fakeCache{}
	uc := NewSaveImageUseCase(store, cache, nil)

	for _, img := range []domain.Image{{URL: "https://x"}, {ID: "1"}} {
		_, err := uc.Execute(context.Background(), img)
		if !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("Execute(%+v) error = %v, want ErrInvalidImage", img, err)
		}
	}
	if store.saves != 0 || cache.downloads != 0 || cache.lookups != 0 {
		t.Errorf("side effects: saves=%d downloads=%d lookups=%d", store.saves, cache.downloads, cache.lookups)
	}
}

func TestSaveImageUseCase_DownloadFailureSavesDegradedRecord(t *testing.T) {
	store := &fakeStore{}
	cache := &fakeCache{downloadErr: &domain.DownloadFailedError{ImageID: "4", StatusCode: 500}}
	uc := NewSaveImageUseCase(store, cache, nil)

	img := testImage("4")
	img.IsSaved = true
	got, err := uc.Execute(context.Background(), img)

	if !errors.Is(err, domain.ErrDownloadFailed) {
		t.Fatalf("error = %v, want ErrDownloadFailed", err)
	}
	if got.ID != "4" || got.LocalPath != "" || got.URL != img.URL {
		t.Errorf("degraded record = %+v", got)
	}
	if len(store.images) != 1 || store.images[0].LocalPath != "" || store.images[0].IsSaved {
		t.Errorf("persisted = %+v", store.images)
	}
}

func TestSaveImageUseCase_UntypedDownloadErrorIsWrapped(t *testing.T) {
	uc := NewSaveImageUseCase(&fakeStore{}, &fakeCache{downloadErr: errors.New("boom")}, nil)
	_, err := uc.Execute(context.Background(), testImage("5"))

	var dfe *domain.DownloadFailedError
	if !errors.As(err, &dfe) || dfe.ImageID != "5" {
		t.Fatalf("error = %v, want DownloadFailedError for 5", err)
	}
}

func TestSaveImageUseCase_DegradedStorageFailureSurfacesBoth(t *testing.T) {
	store := &fakeStore{saveErr: domain.NewStorageWriteError("k", errors.New("disk full"))}
	cache := &fakeCache{downloadErr: &domain.DownloadFailedError{ImageID: "6"}}
	uc := NewSaveImageUseCase(store, cache, nil)

	_, err := uc.Execute(context.Background(), testImage("6"))
	if !errors.Is(err, domain.ErrDownloadFailed) || !errors.Is(err, domain.ErrStorageWrite) {
		t.Fatalf("error = %v, want both download and storage failures", err)
	}
}

func TestSaveImageUseCase_StorageFailure(t *testing.T) {
	store := &fakeStore{saveErr: domain.NewStorageWriteError("k", errors.New("disk full"))}
	uc := NewSaveImageUseCase(store, &fakeCache{}, nil)

	_, err := uc.Execute(context.Background(), testImage("7"))
	if !errors.Is(err, domain.ErrStorageWrite) || errors.Is(err, domain.ErrDownloadFailed) {
		t.Fatalf("error = %v, want storage failure only", err)
	}
}

func TestDeleteImageUseCase_RejectsEmptyID(t *testing.T) {
	store := &fakeStore{}
	uc := NewDeleteImageUseCase(store)

	if err := uc.Execute(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("error = %v", err)
	}
	if len(store.deletes) != 0 {
		t.Errorf("store called: %v", store.deletes)
	}
	if err := uc.Execute(context.Background(), "9"); err != nil || len(store.deletes) != 1 {
		t.Errorf("delete 9: err %v, deletes %v", err, store.deletes)
	}
}

type fakeSource struct {
	pages map[int][]domain.Image
	calls []string
	err   error
}

func (f *fakeSource) GetSourceID() string    { return "fake" }
func (f *fakeSource) GetDisplayName() string { return "Fake" }

func (f *fakeSource) FetchPage(_ context.Context, page, limit int) ([]domain.Image, error) {
	f.calls = append(f.calls, fmt.Sprintf("%d/%d", page, limit))
	if f.err != nil {
		return nil, f.err
	}
	images := f.pages[page]
	if len(images) > limit {
		images = images[:limit]
	}
	return domain.CloneImages(images), nil
}

// End to end over the real file-backed store and local cache: fetching the
// image on page 37, saving it and deleting it again restores the prior state.
func TestRandomImageSaveDeleteRestoresState(t *testing.T) {
	ctx := context.Background()
	imgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg bytes"))
	}))
	defer imgServer.Close()

	kv, err := storage.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cacheDir := filepath.Join(t.TempDir(), "images")
	cache := filecache.NewLocalCache(cacheDir, 0)
	store := repository.NewKVImageStore(kv, cache, "")

	if err := store.SaveImage(ctx, testImage("prior")); err != nil {
		t.Fatal(err)
	}
	before, _ := store.GetSavedImages(ctx)

	src := &fakeSource{pages: map[int][]domain.Image{
		37: {{ID: "370", URL: imgServer.URL + "/id/370/640/480", Author: "Picsum", Width: 640, Height: 480}},
	}}
	svc := NewImageService(src, NewSaveImageUseCase(store, cache, nil), nil, &ImageServiceConfig{PagePicker: FixedPagePicker(37)})

	saved, err := svc.FetchAndSaveRandomImage(ctx)
	if err != nil {
		t.Fatalf("FetchAndSaveRandomImage: %v", err)
	}
	if !reflect.DeepEqual(src.calls, []string{"37/1"}) {
		t.Errorf("source calls = %v, want [37/1]", src.calls)
	}
	if saved.LocalPath != filepath.Join(cacheDir, "370.jpg") {
		t.Errorf("LocalPath = %q", saved.LocalPath)
	}
	if _, err := os.Stat(saved.LocalPath); err != nil {
		t.Errorf("local file missing: %v", err)
	}

	if err := NewDeleteImageUseCase(store).Execute(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	after, _ := NewListSavedImagesUseCase(store).Execute(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state not restored: before %+v, after %+v", before, after)
	}
	if _, err := os.Stat(saved.LocalPath); !os.IsNotExist(err) {
		t.Errorf("local file should be deleted, stat err = %v", err)
	}
}

func TestClearAllImagesUseCase(t *testing.T) {
	store := &fakeStore{images: []domain.Image{testImage("1")}}
	if err := NewClearAllImagesUseCase(store).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.images) != 0 {
		t.Errorf("images = %v", store.images)
	}
}
