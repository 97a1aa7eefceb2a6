package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// pngHeader is the 8-byte PNG signature followed by enough padding for
// http.DetectContentType to sniff it.
var pngHeader = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

func TestFromReaderTrustsAllowlistedDeclaredType(t *testing.T) {
	img, err := FromReader(strings.NewReader("raw-heic-bytes"), "image/heic")
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}
	if img.MediaType != "image/heic" {
		t.Errorf("media type = %q, want declared image/heic", img.MediaType)
	}
	if string(img.Data) != "raw-heic-bytes" {
		t.Errorf("data = %q", img.Data)
	}
}

func TestFromReaderSniffsWhenDeclaredTypeUnknown(t *testing.T) {
	for _, declared := range []string{"", "application/octet-stream", "image/x-custom"} {
		img, err := FromReader(bytes.NewReader(pngHeader), declared)
		if err != nil {
			t.Fatalf("FromReader(declared=%q) error = %v", declared, err)
		}
		if img.MediaType != "image/png" {
			t.Errorf("FromReader(declared=%q) media type = %q, want sniffed image/png", declared, img.MediaType)
		}
	}
}

func TestFromReaderStripsContentTypeParameters(t *testing.T) {
	img, err := FromReader(bytes.NewReader(pngHeader), "IMAGE/PNG; charset=binary")
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}
	if img.MediaType != "image/png" {
		t.Errorf("media type = %q, want image/png", img.MediaType)
	}
}

func TestFromReaderRejectsNonImage(t *testing.T) {
	_, err := FromReader(strings.NewReader("<html><body>hi</body></html>"), "text/html")
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("FromReader() error = %v, want ErrNotImage", err)
	}
}

func TestFromReaderRejectsEmptyFile(t *testing.T) {
	_, err := FromReader(strings.NewReader(""), "image/png")
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("FromReader() error = %v, want ErrEmptyFile", err)
	}
}

func TestFromReaderRejectsOversizedUpload(t *testing.T) {
	big := bytes.NewReader(make([]byte, maxUploadBytes+1))
	_, err := FromReader(big, "image/png")
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("FromReader() error = %v, want size limit rejection", err)
	}
}
