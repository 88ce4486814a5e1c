package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPTranslator calls an external translation engine over HTTP. The engine
// is a process-wide singleton created once at startup and shared by every
// session through the pool; it holds no per-call state beyond the client.
type HTTPTranslator struct {
	url    string
	client *http.Client
}

type engineRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_language"`
	TargetLang string `json:"target_language"`
}

type engineResponse struct {
	Translation string `json:"translation"`
	Error       string `json:"error,omitempty"`
}

// NewHTTPTranslator creates a translator against the given endpoint. No
// client timeout is set here: the pool layer deliberately imposes none, and
// callers cancel through their context.
func NewHTTPTranslator(url string) *HTTPTranslator {
	return &HTTPTranslator{
		url:    url,
		client: &http.Client{},
	}
}

// Translate performs one engine call. A non-2xx status or engine-reported
// error comes back as ErrEngineFailure; the caller substitutes the original
// text.
func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(engineRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrEngineFailure, resp.StatusCode)
	}

	var out engineResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: bad response: %v", ErrEngineFailure, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrEngineFailure, out.Error)
	}
	return out.Translation, nil
}
