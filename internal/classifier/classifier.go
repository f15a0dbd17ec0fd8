// Package classifier talks to the external emotion classifiers: a text
// sentiment model and a facial-expression detector, each served over HTTP.
// Both return a single raw label from their own vocabulary.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultTimeout bounds a single classifier call.
const DefaultTimeout = 30 * time.Second

// ErrUnavailable is returned when a classifier is not configured, cannot be
// reached, or produced no usable label.
var ErrUnavailable = errors.New("classifier unavailable")

type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string, timeout time.Duration) client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c client) configured() bool {
	return c.baseURL != ""
}

// do sends a request and decodes a JSON response into out. Every failure is
// reported as ErrUnavailable.
func (c client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	if !c.configured() {
		return fmt.Errorf("%w: no endpoint configured", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// TextClient classifies free text.
type TextClient struct {
	client
}

// NewTextClient creates a client for the text model served at baseURL.
// An empty baseURL yields a client that always reports ErrUnavailable.
func NewTextClient(baseURL string, timeout time.Duration) *TextClient {
	return &TextClient{client: newClient(baseURL, timeout)}
}

type textRequest struct {
	Text string `json:"text"`
}

type labelResponse struct {
	Label string `json:"label"`
	Error string `json:"error,omitempty"`
}

type healthResponse struct {
	ModelLoaded bool `json:"model_loaded"`
}

// ClassifyText returns the model's raw label for text, e.g. "joy".
func (c *TextClient) ClassifyText(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(textRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	var parsed labelResponse
	if err := c.do(ctx, http.MethodPost, "/predict/text", "application/json", bytes.NewReader(body), &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, parsed.Error)
	}
	if strings.TrimSpace(parsed.Label) == "" {
		return "", fmt.Errorf("%w: empty label", ErrUnavailable)
	}
	return parsed.Label, nil
}

// Ready reports whether the text model is loaded and answering.
func (c *TextClient) Ready(ctx context.Context) bool {
	var parsed healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &parsed); err != nil {
		return false
	}
	return parsed.ModelLoaded
}

// FaceClient classifies facial expressions in an image.
type FaceClient struct {
	client
}

// NewFaceClient creates a client for the face detector served at baseURL.
// An empty baseURL yields a client that always reports ErrUnavailable.
func NewFaceClient(baseURL string, timeout time.Duration) *FaceClient {
	return &FaceClient{client: newClient(baseURL, timeout)}
}

type faceResponse struct {
	Faces []struct {
		Emotions map[string]float64 `json:"emotions"`
	} `json:"faces"`
	Error string `json:"error,omitempty"`
}

// ClassifyFace sends a JPEG frame to the detector and returns the dominant
// emotion label of the first detected face, e.g. "neutral".
func (c *FaceClient) ClassifyFace(ctx context.Context, jpeg []byte) (string, error) {
	var parsed faceResponse
	if err := c.do(ctx, http.MethodPost, "/predict/face", "image/jpeg", bytes.NewReader(jpeg), &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, parsed.Error)
	}
	if len(parsed.Faces) == 0 {
		return "", fmt.Errorf("%w: no face detected", ErrUnavailable)
	}

	label, ok := DominantEmotion(parsed.Faces[0].Emotions)
	if !ok {
		return "", fmt.Errorf("%w: no emotion scores", ErrUnavailable)
	}
	return label, nil
}

// DominantEmotion returns the label with the highest score. Ties go to the
// lexicographically smallest label so the result does not depend on map
// order. It reports false for an empty map.
func DominantEmotion(scores map[string]float64) (string, bool) {
	if len(scores) == 0 {
		return "", false
	}
	labels := make([]string, 0, len(scores))
	for k := range scores {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, l := range labels[1:] {
		if scores[l] > scores[best] {
			best = l
		}
	}
	return best, true
}
