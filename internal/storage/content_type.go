package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// normalizeContentType drops parameters and lower-cases a MIME type.
func normalizeContentType(contentType string) string {
	base := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(base))
}

// DetectContentType returns providedType when set, otherwise the type
// registered for the key's extension, falling back to octet-stream.
func DetectContentType(providedType, key string) string {
	if providedType != "" {
		return normalizeContentType(providedType)
	}
	if contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(key))); contentType != "" {
		return normalizeContentType(contentType)
	}
	return "application/octet-stream"
}

// SniffContentType inspects the leading bytes of an upload. Client supplied
// content types are not trusted for portfolio photos.
func SniffContentType(head []byte) string {
	if len(head) > 512 {
		head = head[:512]
	}
	return normalizeContentType(http.DetectContentType(head))
}

// ExtensionForContentType returns the file extension used when storing
// objects of contentType.
func ExtensionForContentType(contentType string) string {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
