// Package gemini is a thin client for the Gemini generateContent API. It
// covers the two calls the pipeline needs: free-form chat completion and
// audio transcription with word-level timestamps.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tanush/cleanspeech/internal/transcript"
)

// Static errors for Gemini client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is provided and the
	// GEMINI_API_KEY environment variable is not set.
	ErrAPIKeyNotSet = errors.New("gemini: GEMINI_API_KEY environment variable is not set")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("gemini: request failed")
	// ErrEmptyResponse is returned when the response contains no candidates.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

const transcribeSystemPrompt = `You are a speech-to-text engine. Transcribe the spoken audio exactly as spoken, ` +
	`including filler words such as "um", "uh" and false starts. ` +
	`Respond with ONLY a JSON array of word objects, no markdown, no commentary: ` +
	`[{"word": "hello", "start": 0.0, "end": 0.4}, ...] ` +
	`where start and end are seconds from the beginning of the audio.`

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey            string
	model             string
	baseURL           string
	httpClient        *http.Client
	chatTimeout       time.Duration
	transcribeTimeout time.Duration
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithModel sets the model name used for all calls.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithBaseURL sets a custom base URL for the Gemini API.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Gemini client.
// The API key can be set via the WithAPIKey option. If not provided,
// it is read from the environment variable GEMINI_API_KEY.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		model:             "gemini-2.0-flash",
		baseURL:           "https://generativelanguage.googleapis.com/v1beta",
		httpClient:        &http.Client{},
		chatTimeout:       120 * time.Second,
		transcribeTimeout: 180 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
	}

	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return c, nil
}

// Chat sends a system-prompted text request and returns the model's reply.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 8192,
		},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}

	return c.generate(ctx, req)
}

// Transcribe sends WAV audio inline and returns word-level timestamps.
// When the model replies with prose instead of the requested JSON array,
// timings are estimated from word order so the pipeline can still run.
func (c *Client) Transcribe(ctx context.Context, wavData []byte) ([]transcript.Word, error) {
	ctx, cancel := context.WithTimeout(ctx, c.transcribeTimeout)
	defer cancel()

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: transcribeSystemPrompt}}},
		Contents: []content{
			{Role: "user", Parts: []part{
				{Text: "Transcribe this recording with word timestamps."},
				{InlineData: &inlineData{
					MimeType: "audio/wav",
					Data:     base64.StdEncoding.EncodeToString(wavData),
				}},
			}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			MaxOutputTokens: 8192,
		},
	}

	reply, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	return parseTranscript(reply), nil
}

// generate performs one generateContent call and extracts the first
// candidate's text. Failures are not retried; the caller decides whether
// to fall back.
func (c *Client) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("gemini: unmarshal response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// parseTranscript decodes the model reply into words. The happy path is
// the JSON array the prompt asks for; anything else degrades to evenly
// estimated timings over the reply's whitespace-split words.
func parseTranscript(reply string) []transcript.Word {
	jsonPart := extractJSONArray(reply)
	if jsonPart != "" {
		var words []transcript.Word
		if err := json.Unmarshal([]byte(jsonPart), &words); err == nil {
			return transcript.Sanitize(words)
		}
	}

	return estimateTimings(reply)
}

// estimateTimings fabricates word timings at roughly natural speaking
// pace. Accuracy only matters to the second or so here, enough for pause
// detection to behave sensibly.
func estimateTimings(text string) []transcript.Word {
	const (
		wordDurationSec = 0.3
		wordGapSec      = 0.1
	)

	var words []transcript.Word
	cursor := 0.0
	for _, tok := range strings.Fields(text) {
		// Anything this long is markup or a URL, not speech.
		if len(tok) >= 30 {
			continue
		}
		words = append(words, transcript.Word{
			Text:     tok,
			StartSec: cursor,
			EndSec:   cursor + wordDurationSec,
		})
		cursor += wordDurationSec + wordGapSec
	}
	return words
}

// extractJSONArray returns the outermost bracketed slice of the reply, or
// "" when the reply contains no array at all.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
