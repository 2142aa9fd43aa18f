// Package translate is the client for the photo translation endpoint.
//
// One call to Translate sends exactly one request:
//
//	POST {baseURL}/{lang}
//	Accept: application/json
//	Content-Type: application/json
//
//	{"img64": "<base64 image>"}
//
// The endpoint answers 200 with a JSON string. Numeric character references
// ("&#33;") in that string are decoded before it is returned. There is no
// retry and no caching.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/go-phototranslate/internal/httpc"
	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/entity"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Translator is implemented by Client and Mock.
type Translator interface {
	Translate(ctx context.Context, img *capture.Image, lang string) (string, error)
}

// Client is the HTTP translation client.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

// request is the JSON body sent to the endpoint.
type request struct {
	Img64 string `json:"img64"`
}

// NewClient creates a new translation client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := cfg.HTTPClient
	if h == nil {
		h = httpc.NewClient(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    h,
		logger:  logger.With("component", "translate.client"),
	}, nil
}

// BaseURL returns the endpoint base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the URL a request for lang is posted to.
func (c *Client) Endpoint(lang string) string {
	return c.baseURL + "/" + url.PathEscape(lang)
}

// Translate submits img and returns the decoded translated text.
// The request is abandoned after the configured timeout even if the
// server keeps the connection open.
func (c *Client) Translate(ctx context.Context, img *capture.Image, lang string) (string, error) {
	if img == nil || img.Base64 == "" {
		return "", newError(KindInvalid, "build", ErrNoImage)
	}
	if lang == "" {
		return "", newError(KindInvalid, "build", ErrNoLanguage)
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(request{Img64: img.Base64})
	if err != nil {
		return "", newError(KindInvalid, "build", err)
	}

	endpoint := c.Endpoint(lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", newError(KindInvalid, "build", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("submitting",
		"lang", lang,
		"source", img.Source,
		"payload_bytes", len(body),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.transportError(ctx, "send", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", c.transportError(ctx, "read", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		attrs := []any{
			"lang", lang,
			"status", resp.StatusCode,
			"message", apiErr.Message,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case apiErr.IsRateLimited():
			c.logger.Warn("endpoint rate limited", attrs...)
		case apiErr.IsClientError():
			c.logger.Warn("endpoint rejected request", attrs...)
		default:
			c.logger.Error("endpoint failed", attrs...)
		}
		return "", newError(KindStatus, "send", apiErr)
	}

	text, err := decodeText(raw)
	if err != nil {
		return "", newError(KindMalformed, "decode", err)
	}

	c.logger.Info("translated",
		"lang", lang,
		"chars", len([]rune(text)),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// transportError classifies a send or read failure. A deadline on our own
// context is a timeout; a canceled parent is a cancellation.
func (c *Client) transportError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newError(KindTimeout, op, fmt.Errorf("no response within %s: %w", c.timeout, err))
	case errors.Is(ctx.Err(), context.Canceled):
		return newError(KindCanceled, op, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return newError(KindTimeout, op, err)
	}
	return newError(KindNetwork, op, err)
}

// decodeText parses a JSON string body and decodes numeric references.
func decodeText(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w (got %s)", ErrNotString, jsonType(v))
	}
	return entity.DecodeNumeric(s), nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// errorMessage extracts a short message from an error body.
// Accepts {"error": "..."}, {"message": "..."}, a JSON string or plain text.
func errorMessage(raw []byte) string {
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Error != "" {
			return obj.Error
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Verify Client implements Translator at compile time.
var _ Translator = (*Client)(nil)
