package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fpang/backdrop-studio/internal/session"
	"github.com/fpang/backdrop-studio/internal/transform"
)

func imagePart(mime string, data []byte) geminiPart {
	return geminiPart{InlineData: &geminiBlobData{
		MIMEType: mime,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

func responseWith(parts ...geminiPart) geminiResponse {
	return geminiResponse{Candidates: []geminiCandidate{
		{Content: geminiContent{Parts: parts}},
	}}
}

func serveJSON(t *testing.T, status int, resp any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
}

var testInput = session.EncodedImage{Data: []byte("input-jpeg"), MediaType: "image/jpeg"}

func TestGenerateImageSuccess(t *testing.T) {
	var gotPath string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		resp := responseWith(
			geminiPart{Text: "Here is your edited photo."},
			imagePart("image/png", []byte("edited-png")),
		)
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithModel("test-model"), WithBaseURL(srv.URL))
	out, err := c.GenerateImage(context.Background(), testInput, "Remove the background")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}

	if string(out.Data) != "edited-png" {
		t.Errorf("output data = %q, want %q", out.Data, "edited-png")
	}
	if out.MediaType != "image/png" {
		t.Errorf("output media type = %q, want image/png", out.MediaType)
	}

	if want := "/models/test-model:generateContent"; gotPath != want {
		t.Errorf("request path = %q, want %q", gotPath, want)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 2 {
		t.Fatalf("request parts = %+v, want one content with image then instruction", gotReq.Contents)
	}
	img := gotReq.Contents[0].Parts[0].InlineData
	if img == nil || img.MIMEType != "image/jpeg" {
		t.Errorf("first part = %+v, want inline image/jpeg data", gotReq.Contents[0].Parts[0])
	}
	if got := gotReq.Contents[0].Parts[1].Text; got != "Remove the background" {
		t.Errorf("instruction part = %q", got)
	}
	if gotReq.GenerationConfig == nil || len(gotReq.GenerationConfig.ResponseModalities) != 2 {
		t.Errorf("generation config = %+v, want TEXT and IMAGE modalities", gotReq.GenerationConfig)
	}
}

func TestGenerateImageFirstImagePartWins(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, responseWith(
		imagePart("image/png", []byte("first")),
		imagePart("image/png", []byte("second")),
	))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	out, err := c.GenerateImage(context.Background(), testInput, "instruction")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if string(out.Data) != "first" {
		t.Errorf("output = %q, want the first image part", out.Data)
	}
}

func TestGenerateImageNoImagePart(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, responseWith(
		geminiPart{Text: "I cannot edit this image."},
	))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateImage(context.Background(), testInput, "instruction")
	if !errors.Is(err, transform.ErrNoImage) {
		t.Fatalf("GenerateImage() error = %v, want ErrNoImage", err)
	}
	if !strings.Contains(err.Error(), "I cannot edit this image.") {
		t.Errorf("error = %q, want the response text for context", err)
	}
}

func TestGenerateImageEmptyCandidates(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, geminiResponse{})
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateImage(context.Background(), testInput, "instruction")
	if !errors.Is(err, transform.ErrNoImage) {
		t.Fatalf("GenerateImage() error = %v, want ErrNoImage", err)
	}
}

func TestGenerateImageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateImage(context.Background(), testInput, "instruction")
	if err == nil {
		t.Fatal("GenerateImage() should fail on a non-200 status")
	}
	if errors.Is(err, transform.ErrNoImage) {
		t.Error("transport failures must not look like empty results")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %q, want the status code", err)
	}
}

func TestGenerateImageAPIError(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, geminiResponse{
		Error: &geminiError{Code: 400, Message: "invalid argument", Status: "INVALID_ARGUMENT"},
	})
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateImage(context.Background(), testInput, "instruction")
	if err == nil || !strings.Contains(err.Error(), "invalid argument") {
		t.Fatalf("GenerateImage() error = %v, want the API error message", err)
	}
}

func TestGenerateImageBadBase64(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, responseWith(
		geminiPart{InlineData: &geminiBlobData{MIMEType: "image/png", Data: "%%not-base64%%"}},
	))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateImage(context.Background(), testInput, "instruction")
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("GenerateImage() error = %v, want a decode failure", err)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("somewhat longer", 8); got != "somewhat..." {
		t.Errorf("truncateString() = %q", got)
	}
}
