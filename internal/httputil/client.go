// Package httputil provides a hardened HTTP client, request helpers and input sanitization utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BrowserAgent is sent on scraping requests unless the caller overrides it.
const BrowserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

// maxBody bounds how much of a response body is read into memory.
const maxBody = 10 * 1024 * 1024

// NewClient creates a hardened HTTP client with secure defaults.
// Redirects are followed by the standard policy.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// StatusError is returned when a primary fetch answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Get performs a GET request with standard browser-like headers.
// extra headers override the defaults.
func Get(ctx context.Context, client *http.Client, rawURL string, extra http.Header) (*http.Response, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", BrowserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	merge(req.Header, extra)

	return client.Do(req)
}

// GetBody performs a GET request and returns the body of a 2xx response.
func GetBody(ctx context.Context, client *http.Client, rawURL string, extra http.Header) ([]byte, error) {
	resp, err := Get(ctx, client, rawURL, extra)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readOK(resp, rawURL)
}

// PostForm sends form as an application/x-www-form-urlencoded body and
// returns the body of a 2xx response.
func PostForm(ctx context.Context, client *http.Client, rawURL string, form url.Values, extra http.Header) ([]byte, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", BrowserAgent)
	merge(req.Header, extra)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readOK(resp, rawURL)
}

// Head performs a header-only request. The caller owns the response.
func Head(ctx context.Context, client *http.Client, rawURL string, extra http.Header) (*http.Response, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", BrowserAgent)
	merge(req.Header, extra)

	return client.Do(req)
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

func readOK(resp *http.Response, rawURL string) ([]byte, error) {
	if !IsSuccess(resp.StatusCode) {
		return nil, &StatusError{URL: Redact(rawURL), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func merge(dst, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
