// Package gemini is the remote effect invoker: it sends a photo plus a
// relighting instruction to the Gemini image model and returns the edited
// photo. Callers treat it as a single opaque call; there is no retry and no
// partial-result handling here.
//
// The client talks to the REST API directly with inline base64 image data,
// requesting TEXT and IMAGE response modalities.
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
	"golang.org/x/time/rate"
)

// defaultBaseURL is the Gemini REST API base URL.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini image model via REST for lighting edits.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given model. requestsPerMinute bounds
// outbound calls; pass 0 to disable limiting.
func NewClient(apiKey, model string, requestsPerMinute int) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // image generation can take 10-30s
		},
		limiter: limiter,
	}
}

// --- REST API request/response types ---

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string    `json:"text,omitempty"`
	InlineData *blobData `json:"inlineData,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type blobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Result holds the outcome of one lighting edit.
type Result struct {
	// Data is the raw bytes of the edited image.
	Data []byte
	// MIMEType is the MIME type of the output image.
	MIMEType string
	// Text is any description the model returned alongside the image.
	Text string
}

// ApplyEffect sends the photo with the rendered instruction to the image
// model and returns the edited photo. The context cancels the in-flight HTTP
// call when the caller supersedes this request.
func (c *Client) ApplyEffect(ctx context.Context, imageData []byte, imageMIME, instruction, systemInstruction string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_bytes", len(imageData)).
		Str("image_mime", imageMIME).
		Msg("Sending image to Gemini for relighting")

	req := generateRequest{
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{
						InlineData: &blobData{
							MIMEType: imageMIME,
							Data:     base64.StdEncoding.EncodeToString(imageData),
						},
					},
					{Text: instruction},
				},
			},
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &content{
			Parts: []part{{Text: systemInstruction}},
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if genResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", genResp.Error.Message, genResp.Error.Code)
	}

	result := &Result{}
	for _, cand := range genResp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil {
				decoded, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				result.Data = decoded
				result.MIMEType = p.InlineData.MIMEType
			}
			if p.Text != "" {
				result.Text += p.Text
			}
		}
	}

	if result.Data == nil {
		return nil, fmt.Errorf("no image returned in response (text: %s)", truncateString(result.Text, 200))
	}

	log.Info().
		Int("output_bytes", len(result.Data)).
		Str("output_mime", result.MIMEType).
		Dur("duration", time.Since(startTime)).
		Msg("Relighting complete")

	return result, nil
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
