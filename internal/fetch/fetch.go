// Package fetch is the HTTP transport for catalog listings, latest-version
// lookups and archive downloads. Every request is an anonymous GET, routed
// through an optional proxy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "wdb/1.0"
	// maxRedirects bounds redirect chains on followed requests
	maxRedirects = 10
	// maxBodyBytes bounds in-memory responses (listings, version files)
	maxBodyBytes = 32 << 20
)

var (
	// ErrStatus is wrapped by errors for non-2xx responses.
	ErrStatus = errors.New("unexpected status code")
	// ErrTooLarge is returned when an in-memory response exceeds its cap.
	ErrTooLarge = errors.New("response too large")
)

// Config configures a Client.
type Config struct {
	// Proxy is an optional proxy URL applied to every request.
	Proxy string
	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed request.
	// Zero (the default) surfaces the first failure to the caller.
	Retries int
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

// Client issues GET requests for driver metadata and archives.
type Client struct {
	client    *http.Client
	noFollow  *http.Client
	userAgent string
	retries   int
	maxBody   int64
}

// New creates a client from cfg. An unparsable proxy URL is a configuration error.
func New(cfg Config) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", cfg.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		noFollow: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: userAgent,
		retries:   cfg.Retries,
		maxBody:   maxBodyBytes,
	}, nil
}

// Bytes fetches url and returns the whole body. Bodies over 32 MiB fail
// with ErrTooLarge.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.withRetries(ctx, func() error {
		resp, err := c.do(ctx, c.client, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := checkStatus(resp); err != nil {
			return err
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		if int64(len(body)) > c.maxBody {
			body = nil
			return fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, c.maxBody)
		}
		return nil
	})
	return body, err
}

// RedirectLocation requests url without following redirects and returns
// the Location header. An empty string means the server did not redirect.
func (c *Client) RedirectLocation(ctx context.Context, url string) (string, error) {
	var location string
	err := c.withRetries(ctx, func() error {
		resp, err := c.do(ctx, c.noFollow, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		if resp.StatusCode >= 400 {
			return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		}
		location = resp.Header.Get("Location")
		return nil
	})
	return location, err
}

// DownloadToFile streams url into destPath through a temporary file and an
// atomic rename, and returns the number of bytes written.
func (c *Client) DownloadToFile(ctx context.Context, url, destPath string) (int64, error) {
	var written int64
	err := c.withRetries(ctx, func() error {
		n, err := c.downloadOnce(ctx, url, destPath)
		written = n
		return err
	})
	return written, err
}

func (c *Client) downloadOnce(ctx context.Context, url, destPath string) (int64, error) {
	resp, err := c.do(ctx, c.client, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("create dest dir: %w", err)
	}

	// Unique temp name so concurrent processes never share a partial file
	tmpPath := destPath + "." + uuid.NewString() + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return n, nil
}

func (c *Client) do(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// withRetries runs fn up to 1+retries times with exponential backoff.
func (c *Client) withRetries(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if c.retries > 0 {
		return fmt.Errorf("failed after %d retries: %w", c.retries, lastErr)
	}
	return lastErr
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return nil
}
