package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pdf-slide-synth/internal/domain"

	"golang.org/x/sync/singleflight"
)

const (
	defaultImageTimeout = 30 * time.Second
	maxImageBytes       = 10 << 20
)

// HTTPImageFetcher downloads images over HTTP. Concurrent requests for the
// same URL share one download.
type HTTPImageFetcher struct {
	client *http.Client
	policy RetryPolicy
	logger domain.Logger
	group  singleflight.Group
}

// NewHTTPImageFetcher creates a fetcher with a per-request timeout.
func NewHTTPImageFetcher(timeout time.Duration, logger domain.Logger) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return &HTTPImageFetcher{
		client: &http.Client{Timeout: timeout},
		policy: RetryPolicy{MaxRetries: 2, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 5 * time.Second},
		logger: logger,
	}
}

// WithFetchRetryPolicy overrides the retry policy. Intended for tests.
func (f *HTTPImageFetcher) WithFetchRetryPolicy(p RetryPolicy) *HTTPImageFetcher {
	f.policy = p
	return f
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (*domain.FetchedImage, error) {
	v, err, shared := f.group.Do(url, func() (interface{}, error) {
		img, _, err := WithRetry(ctx, f.policy, IsTransient, f.logger, "image_fetch",
			func(ctx context.Context, attempt int) (*domain.FetchedImage, error) {
				return f.fetchOnce(ctx, url)
			})
		return img, err
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.logger.Debug("Image download shared", "url", url)
	}
	return v.(*domain.FetchedImage), nil
}

func (f *HTTPImageFetcher) fetchOnce(ctx context.Context, url string) (*domain.FetchedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build image request: %v", domain.ErrNonRetryable, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrNonRetryable, maxImageBytes)
	}

	ext, ok := imageExtension(data)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image content %q", domain.ErrNonRetryable, http.DetectContentType(data))
	}
	return &domain.FetchedImage{Data: data, Extension: ext}, nil
}

// imageExtension sniffs the payload rather than trusting Content-Type.
func imageExtension(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "png", true
	case "image/jpeg":
		return "jpeg", true
	case "image/gif":
		return "gif", true
	case "image/webp":
		return "webp", true
	}
	return "", false
}

func imageContentType(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
