// FILE: internal/scrape/fetch.go
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// FetchError reports that one page could not be retrieved after all
// retry attempts. It wraps the final attempt's error.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.status)
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	Delay       time.Duration
}

// Fetcher retrieves ECO reference pages. The source serves Latin-1;
// responses are decoded to UTF-8 before extraction.
type Fetcher struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	delay       time.Duration
}

// NewFetcher builds a Fetcher with its own HTTP client using the
// configured per-request timeout.
func NewFetcher(opts FetcherOptions) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		delay:       opts.Delay,
	}
}

// PageURL returns the reference page address for one ECO code.
func (f *Fetcher) PageURL(code string) string {
	return f.baseURL + "/eco/" + code
}

// Page fetches and decodes the page for one ECO code, retrying
// transient failures. HTTP error statuses count as transient; only
// cancellation stops the attempts early. On exhaustion the returned
// error is a *FetchError.
func (f *Fetcher) Page(ctx context.Context, code string) (string, int, error) {
	url := f.PageURL(code)

	var body string
	attempts, err := Retry(ctx, f.maxAttempts, f.delay, retryableFetch, func() error {
		text, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = text
		return nil
	})
	if err != nil {
		return "", attempts, &FetchError{URL: url, Attempts: attempts, Err: err}
	}
	return body, attempts, nil
}

func retryableFetch(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return "", &statusError{code: resp.StatusCode, status: resp.Status}
	}

	decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(resp.Body))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
