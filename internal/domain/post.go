package domain

import (
	"strings"
	"time"
)

// Post is an informational article ("informasi") shown on the public site.
type Post struct {
	ID          string
	Title       string
	Content     string
	ImagePath   string
	PublishedAt time.Time
}

// PostInput is the payload for creating or updating a post.
type PostInput struct {
	Title   string
	Content string
	Image   *Upload
}

// Validate checks the input.
func (in *PostInput) Validate() error {
	if err := ValidateTitle(in.Title); err != nil {
		return &ValidationError{Field: "judul", Message: err.Error()}
	}
	if strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Field: "isi", Message: "content is required"}
	}
	if in.Image != nil {
		return in.Image.Validate()
	}
	return nil
}
