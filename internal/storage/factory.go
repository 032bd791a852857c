package storage

import (
	"fmt"
	"strings"

	"github.com/timmy/mygallery/internal/config"
)

// NewObjectStorage creates an ObjectStorage for the configured cache backend.
// Parameters:
//   - backend: "s3" or "minio".
//   - cfg: object storage endpoint, credentials and bucket.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the backend is unknown or the client cannot be created.
func NewObjectStorage(backend string, cfg config.ObjectConfig) (ObjectStorage, error) {
	switch backend {
	case "minio":
		return NewMinIOStorage(cfg)
	case "s3":
		storeType := StorageType(cfg.Type)
		if storeType == "" {
			storeType = detectStorageType(cfg.Endpoint)
		}
		return NewS3Storage(cfg, storeType)
	default:
		return nil, fmt.Errorf("unsupported object storage backend %q", backend)
	}
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
