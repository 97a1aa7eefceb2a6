// Package gemini calls the Gemini image model over its REST API to edit a
// photo's background. It uses direct HTTP calls because image output support
// in the Go SDKs has lagged behind the REST surface.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/session"
	"github.com/fpang/backdrop-studio/internal/transform"
)

// defaultBaseURL is the Gemini REST API base URL.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini image model for background editing. It implements
// transform.Service.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ transform.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the image model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for Gemini image editing.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   ImageModelName(),
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // image generation can take 10-30s
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateImage sends the photo with an editing instruction and returns the
// edited image. The response's parts are scanned in order and the first part
// carrying inline image data wins; remaining parts are ignored. A completed
// response with no image part returns an error wrapping transform.ErrNoImage.
func (c *Client) GenerateImage(ctx context.Context, img session.EncodedImage, instruction string) (session.EncodedImage, error) {
	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_bytes", len(img.Data)).
		Str("image_mime", img.MediaType).
		Msg("Sending image to Gemini for background editing")

	req := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{
						InlineData: &geminiBlobData{
							MIMEType: img.MediaType,
							Data:     base64.StdEncoding.EncodeToString(img.Data),
						},
					},
					{Text: instruction},
				},
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return session.EncodedImage{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini image API returned error")
		return session.EncodedImage{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return session.EncodedImage{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return session.EncodedImage{}, fmt.Errorf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	out, text, err := firstImagePart(geminiResp)
	if err != nil {
		return session.EncodedImage{}, err
	}
	if !out.Present() {
		return session.EncodedImage{}, fmt.Errorf("%w (text: %s)", transform.ErrNoImage, truncateString(text, 200))
	}

	log.Info().
		Int("output_bytes", len(out.Data)).
		Str("output_mime", out.MediaType).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini background editing complete")

	return out, nil
}

// firstImagePart scans candidates in order and decodes the first inline image
// part found. Accompanying text parts are collected for error context.
func firstImagePart(resp geminiResponse) (session.EncodedImage, string, error) {
	var text string
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
			if part.InlineData == nil {
				continue
			}
			decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return session.EncodedImage{}, text, fmt.Errorf("failed to decode image data: %w", err)
			}
			return session.EncodedImage{Data: decoded, MediaType: part.InlineData.MIMEType}, text, nil
		}
	}
	return session.EncodedImage{}, text, nil
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
