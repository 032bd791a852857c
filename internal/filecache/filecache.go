// Package filecache stores downloaded image bytes so saved images stay
// viewable without the network.
package filecache

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/mygallery/internal/domain"
)

// FileCache downloads and tracks local copies of images.
type FileCache interface {
	// DownloadAndSave fetches img.URL and stores it as {id}{ext}.
	// Failures are reported as *domain.DownloadFailedError.
	DownloadAndSave(ctx context.Context, img domain.Image) (string, error)

	// GetLocalPath returns the stored copy for id, if any.
	GetLocalPath(ctx context.Context, id string) (path string, found bool, err error)

	// DeleteLocalFile removes a stored copy. Missing files are not an error.
	DeleteLocalFile(ctx context.Context, path string) error

	// ClearAll removes every stored copy.
	ClearAll(ctx context.Context) error
}

const defaultDownloadTimeout = 30 * time.Second

func newDownloader(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultDownloadTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "image/*")
}

// fetch downloads the raw bytes of img.
func fetch(ctx context.Context, client *resty.Client, img domain.Image) ([]byte, string, error) {
	resp, err := client.R().SetContext(ctx).Get(img.URL)
	if err != nil {
		return nil, "", &domain.DownloadFailedError{ImageID: img.ID, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, "", &domain.DownloadFailedError{ImageID: img.ID, StatusCode: resp.StatusCode()}
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, "", &domain.DownloadFailedError{ImageID: img.ID, Err: errEmptyBody}
	}
	return body, resp.Header().Get("Content-Type"), nil
}
