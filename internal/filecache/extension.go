package filecache

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"
	"strings"

	_ "golang.org/x/image/webp"
)

const defaultExtension = ".jpg"

var errEmptyBody = errors.New("empty response body")

// knownExtensions are the file extensions kept from a URL path.
var knownExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// formatExtensions maps image.DecodeConfig format names to extensions.
var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// extensionFromURL returns the lowercased extension of the URL path when it
// is one of knownExtensions.
func extensionFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, known := range knownExtensions {
		if ext == known {
			return ext, true
		}
	}
	return "", false
}

// sniffExtension inspects the image header in data.
func sniffExtension(data []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	ext, ok := formatExtensions[format]
	return ext, ok
}

// chooseExtension picks the URL extension, then the sniffed format, then .jpg.
func chooseExtension(rawURL string, data []byte) string {
	if ext, ok := extensionFromURL(rawURL); ok {
		return ext
	}
	if ext, ok := sniffExtension(data); ok {
		return ext
	}
	return defaultExtension
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// matchesID reports whether name is id followed by a file extension.
func matchesID(name, id string) bool {
	return strings.TrimSuffix(name, path.Ext(name)) == id
}
