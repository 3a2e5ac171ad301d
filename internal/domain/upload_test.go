package domain

import (
	"bytes"
	"testing"
)

func TestUpload_Validate(t *testing.T) {
	t.Parallel()

	ok := &Upload{Field: "bukti", FileName: "nota.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid upload, got %v", err)
	}

	withParams := &Upload{Field: "bukti", ContentType: "application/pdf; charset=binary", Data: []byte("%PDF")}
	if err := withParams.Validate(); err != nil {
		t.Fatalf("expected media type parameters to be ignored, got %v", err)
	}

	for name, u := range map[string]*Upload{
		"empty":     {Field: "bukti", ContentType: "image/png"},
		"too large": {Field: "bukti", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, MaxUploadSize+1)},
		"exe":       {Field: "bukti", ContentType: "application/x-msdownload", Data: []byte("MZ")},
	} {
		if err := u.Validate(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestAssetURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"kegiatan/a.jpg", "https://api.masjid.id/storage/kegiatan/a.jpg"},
		{"/storage/kegiatan/a.jpg", "https://api.masjid.id/storage/kegiatan/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
	}

	for _, tt := range tests {
		if got := AssetURL("https://api.masjid.id/", tt.path); got != tt.want {
			t.Errorf("AssetURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
