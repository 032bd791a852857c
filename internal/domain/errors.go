package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the gallery error taxonomy.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidImage    = fmt.Errorf("%w: invalid image", ErrInvalidArgument)
	ErrDownloadFailed  = errors.New("image download failed")
	ErrStorageRead     = errors.New("storage read failed")
	ErrStorageWrite    = errors.New("storage write failed")
	ErrNetwork         = errors.New("network request failed")
	ErrNoImages        = errors.New("no images found")
)

// InvalidArgumentError reports a missing or empty required field.
// It is returned before any I/O happens.
type InvalidArgumentError struct {
	Field string
	Err   error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%v: %s is required", e.cause(), e.Field)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.cause()
}

func (e *InvalidArgumentError) cause() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidArgument
}

// NewInvalidArgument creates an InvalidArgumentError for field.
func NewInvalidArgument(field string) error {
	return &InvalidArgumentError{Field: field, Err: ErrInvalidArgument}
}

// DownloadFailedError reports that the bytes of an image could not be fetched or written.
type DownloadFailedError struct {
	ImageID    string
	StatusCode int
	Err        error
}

func (e *DownloadFailedError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("download image %s: status %d: %v", e.ImageID, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("download image %s: status %d", e.ImageID, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("download image %s: %v", e.ImageID, e.Err)
	default:
		return fmt.Sprintf("download image %s failed", e.ImageID)
	}
}

// Is matches ErrDownloadFailed so callers can test with errors.Is.
func (e *DownloadFailedError) Is(target error) bool {
	return target == ErrDownloadFailed
}

func (e *DownloadFailedError) Unwrap() error {
	return e.Err
}

// StorageError wraps a persisted-storage failure. Op is either ErrStorageRead or ErrStorageWrite.
type StorageError struct {
	Op  error
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%v (key %q): %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

// Is matches the operation sentinel.
func (e *StorageError) Is(target error) bool {
	return target == e.Op
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageReadError wraps err as a read failure on key.
func NewStorageReadError(key string, err error) error {
	return &StorageError{Op: ErrStorageRead, Key: key, Err: err}
}

// NewStorageWriteError wraps err as a write failure on key.
func NewStorageWriteError(key string, err error) error {
	return &StorageError{Op: ErrStorageWrite, Key: key, Err: err}
}

// NetworkErrorKind classifies remote catalog failures for user-facing messages.
type NetworkErrorKind string

const (
	NetworkUnavailable  NetworkErrorKind = "unavailable"
	NetworkHTTPStatus   NetworkErrorKind = "http_status"
	NetworkTimeout      NetworkErrorKind = "timeout"
	NetworkConnectivity NetworkErrorKind = "connectivity"
)

// StatusUpstreamUnavailable is the upstream status the catalog returns while temporarily down.
const StatusUpstreamUnavailable = 525

// NetworkError reports a remote list fetch failure after retries are exhausted.
type NetworkError struct {
	Kind       NetworkErrorKind
	StatusCode int
	Status     string
	Endpoint   string
	Err        error
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("request %s failed (%s)", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message shown to the user for this failure.
// Parameters: none.
// Returns:
//   - string: message distinguishing unavailable, HTTP status, timeout and connectivity cases.
func (e *NetworkError) UserMessage() string {
	switch e.Kind {
	case NetworkUnavailable:
		return "Server temporarily unavailable. Try again in a few moments."
	case NetworkHTTPStatus:
		status := e.Status
		if status == "" {
			status = http.StatusText(e.StatusCode)
		}
		return fmt.Sprintf("Error %d: %s", e.StatusCode, status)
	case NetworkTimeout:
		return "Request timed out. Check your connection."
	default:
		return "Request failed. Check your connection and try again."
	}
}

// UserMessage returns the user-facing message for any error in the taxonomy.
// Unknown errors fall back to their Error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.UserMessage()
	}
	var storeErr *StorageError
	if errors.As(err, &storeErr) {
		return storeErr.Error()
	}
	var dlErr *DownloadFailedError
	if IsDegraded(err) && errors.As(err, &dlErr) {
		return "Image saved without a local copy: " + dlErr.Error()
	}
	return err.Error()
}

// IsDegraded reports whether err only says the local copy of a saved
// image could not be made. The record itself was persisted.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrDownloadFailed) &&
		!errors.Is(err, ErrStorageWrite) &&
		!errors.Is(err, ErrStorageRead)
}
