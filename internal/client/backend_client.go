package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"adflow/internal/domain"
)

const (
	scrapePath        = "/scrape/"
	generateAdPath    = "/generate_ad/"
	generateImagePath = "/generate_image/"
	publishAdPath     = "/publish_ad/"

	maxResponseBytes = 4 << 20
)

// ErrNoResult means the backend answered but left out the field we asked for.
var ErrNoResult = domain.ErrNoResult

// TransportError covers everything between "could not connect" and "the
// backend said it failed".
type TransportError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendClient implements the four collaborator ports against one backend.
// It never retries and holds no per-call state.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string, httpClient *http.Client) (*BackendClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base url %q must include scheme and host", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// FetchProduct calls GET /scrape/?url=.
func (c *BackendClient) FetchProduct(ctx context.Context, productURL string) (domain.Product, error) {
	query := url.Values{}
	query.Set("url", productURL)

	body, fields, err := c.call(ctx, http.MethodGet, scrapePath, query, nil)
	if err != nil {
		return domain.Product{}, err
	}
	if !hasString(fields, "title") {
		return domain.Product{}, fmt.Errorf("%s: title missing: %w", scrapePath, ErrNoResult)
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return domain.Product{}, &TransportError{Endpoint: scrapePath, Message: "malformed product", Err: err}
	}
	return product, nil
}

// GenerateAdText calls POST /generate_ad/.
func (c *BackendClient) GenerateAdText(ctx context.Context, req domain.AdTextRequest) (string, error) {
	_, fields, err := c.call(ctx, http.MethodPost, generateAdPath, nil, req)
	if err != nil {
		return "", err
	}
	text, ok := stringField(fields, "ad_text")
	if !ok {
		return "", fmt.Errorf("%s: ad_text missing: %w", generateAdPath, ErrNoResult)
	}
	return text, nil
}

// GenerateAdImage calls POST /generate_image/.
func (c *BackendClient) GenerateAdImage(ctx context.Context, req domain.AdImageRequest) (domain.AdImage, error) {
	_, fields, err := c.call(ctx, http.MethodPost, generateImagePath, nil, req)
	if err != nil {
		return domain.AdImage{}, err
	}
	imageURL, ok := stringField(fields, "image_url")
	if !ok {
		return domain.AdImage{}, fmt.Errorf("%s: image_url missing: %w", generateImagePath, ErrNoResult)
	}
	return domain.AdImage{URL: imageURL}, nil
}

// PublishAd calls POST /publish_ad/. Any JSON object is a confirmation;
// an empty body means the platform confirmed nothing.
func (c *BackendClient) PublishAd(ctx context.Context, req domain.PublishRequest) (domain.PublishConfirmation, error) {
	body, _, err := c.call(ctx, http.MethodPost, publishAdPath, nil, req)
	if err != nil {
		return domain.PublishConfirmation{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PublishConfirmation{}, &TransportError{Endpoint: publishAdPath, Message: "malformed confirmation", Err: err}
	}
	conf := domain.PublishConfirmation{
		ID:       textField(raw, "id", "post_id"),
		Platform: domain.Platform(textField(raw, "platform")),
		Status:   textField(raw, "status"),
		Message:  textField(raw, "message"),
		Raw:      raw,
	}
	if conf.Platform == "" {
		conf.Platform = req.Platform
	}
	return conf, nil
}

// textField returns the first present key rendered as text.
func textField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// call issues one request and returns the raw body plus its top-level fields.
// Non-2xx statuses and bodies carrying "error" or "detail" become TransportErrors;
// a 2xx with an empty or null body is ErrNoResult.
func (c *BackendClient) call(ctx context.Context, method, endpoint string, query url.Values, in any) ([]byte, map[string]json.RawMessage, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	var fields map[string]json.RawMessage
	decodeErr := json.Unmarshal(body, &fields)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: backendMessage(fields, body)}
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, fmt.Errorf("%s: empty response: %w", endpoint, ErrNoResult)
	}
	if decodeErr != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "response is not a JSON object", Err: decodeErr}
	}
	if msg := backendMessage(fields, nil); msg != "" {
		return nil, nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}
	return body, fields, nil
}

// backendMessage pulls "error" or "detail" out of a body, falling back to the raw text.
func backendMessage(fields map[string]json.RawMessage, raw []byte) string {
	for _, key := range []string{"error", "detail"} {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		return string(v)
	}
	return strings.TrimSpace(string(raw))
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func hasString(fields map[string]json.RawMessage, key string) bool {
	_, ok := stringField(fields, key)
	return ok
}
