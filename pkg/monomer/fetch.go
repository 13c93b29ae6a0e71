package monomer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/helmdraw/pkg/cache"
)

// maxLibrarySize bounds a downloaded library.
const maxLibrarySize = 8 << 20

const fetchAttempts = 3

// fetchDelay is the wait before the first retry; it doubles after each one.
var fetchDelay = time.Second

// IsURL reports whether src names a remote library rather than a file.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "http://")
}

// Fetch downloads a TOML library. Transport failures and 5xx responses are
// retried with backoff; other statuses fail at once. The body is returned
// only if it parses as a library, so callers may cache it as is.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, fetchAttempts, fetchDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return cache.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return cache.Retryable(fmt.Errorf("fetch monomer library: %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch monomer library: %s", resp.Status)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxLibrarySize+1))
		if err != nil {
			return cache.Retryable(err)
		}
		if len(body) > maxLibrarySize {
			return fmt.Errorf("fetch monomer library: larger than %d bytes", maxLibrarySize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := Load(bytes.NewReader(body)); err != nil {
		return nil, err
	}
	return body, nil
}
