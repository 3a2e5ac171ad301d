package domain

import (
	"fmt"
	"strings"
)

// Upload is a single file forwarded to the backend as a multipart part.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Validate checks size and content type.
func (u *Upload) Validate() error {
	if len(u.Data) == 0 {
		return &ValidationError{Field: u.Field, Message: "file is empty"}
	}
	if len(u.Data) > MaxUploadSize {
		return &ValidationError{Field: u.Field, Message: fmt.Sprintf("file exceeds %d bytes", MaxUploadSize)}
	}

	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(u.ContentType, ";", 2)[0]))
	if !allowedUploadTypes[ct] {
		return &ValidationError{Field: u.Field, Message: "unsupported file type " + ct}
	}

	return nil
}

// AssetURL expands a backend storage path to a public URL.
// Absolute URLs are returned unchanged; empty paths stay empty.
func AssetURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, "storage/")

	return strings.TrimRight(baseURL, "/") + "/storage/" + path
}
