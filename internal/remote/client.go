// Package remote is the HTTP transport for the interrupt service: one query
// asking whether an interrupt type is required and one update recording the
// user's choice.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// RequiredPath is the query endpoint, relative to the base URL.
	RequiredPath = "/wsapi/rest/staffwebinterruptrequired"

	// ContextHeader carries the browser context key so the service can scope
	// answers the way a browser's cookies would.
	ContextHeader = "X-Interstitial-Context"

	defaultTimeout = 10 * time.Second
	userAgent      = "interstitial/1"
)

// DefaultUpdatePaths maps interrupt types to their update sub-path.
var DefaultUpdatePaths = map[string]string{
	"sra":                         "sraupdate",
	"credit-card-security-policy": "credit-card-security-policy-update",
}

// ErrBadInterruptType is returned when no update path is known for a type.
var ErrBadInterruptType = errors.New("bad interrupt type")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL        string
	BrowserContext string
	Timeout        time.Duration
	// UpdatePaths overrides or extends DefaultUpdatePaths.
	UpdatePaths map[string]string
	HTTPClient  *http.Client
}

// Client talks to the interrupt service.
type Client struct {
	base           string
	browserContext string
	updatePaths    map[string]string
	http           *http.Client
}

// New builds a client. A nil HTTPClient gets one with cfg.Timeout (default 10s).
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	paths := make(map[string]string, len(DefaultUpdatePaths)+len(cfg.UpdatePaths))
	for k, v := range DefaultUpdatePaths {
		paths[k] = v
	}
	for k, v := range cfg.UpdatePaths {
		if v = strings.Trim(strings.TrimSpace(v), "/"); v != "" {
			paths[k] = v
		}
	}
	return &Client{
		base:           strings.TrimRight(cfg.BaseURL, "/"),
		browserContext: cfg.BrowserContext,
		updatePaths:    paths,
		http:           hc,
	}
}

// UpdatePath returns the update sub-path for interruptType.
func (c *Client) UpdatePath(interruptType string) (string, error) {
	p, ok := c.updatePaths[interruptType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrBadInterruptType, interruptType)
	}
	return p, nil
}

// IsInterruptRequired asks whether interruptType must be shown. The service
// answers with a bare JSON boolean.
func (c *Client) IsInterruptRequired(ctx context.Context, interruptType string) (bool, error) {
	u := c.base + RequiredPath + "?popuptype=" + url.QueryEscape(interruptType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build required request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return false, err
	}

	var required bool
	if err := json.Unmarshal(bytes.TrimSpace(body), &required); err != nil {
		return false, fmt.Errorf("decode required response for %q: %w", interruptType, err)
	}
	return required, nil
}

// UpdateAgreementStatus records the user's choice for interruptType.
func (c *Client) UpdateAgreementStatus(ctx context.Context, interruptType, status string) error {
	sub, err := c.UpdatePath(interruptType)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("encode agreement status: %w", err)
	}

	u := c.base + RequiredPath + "/" + sub
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", userAgent)
	if c.browserContext != "" {
		req.Header.Set(ContextHeader, c.browserContext)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body[:min(len(body), 2048)])),
		}
	}
	return body, nil
}
