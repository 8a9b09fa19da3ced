package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/gzip"

	"github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/hashing"
	"github.com/ipfeeds/listgen/src/internal/log"
	"github.com/ipfeeds/listgen/src/internal/utils"
)

// Compression is the declared encoding of a source payload.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultRetries   = 2
	DefaultUserAgent = "listgen"
)

// Options configure a Fetcher. Zero values fall back to defaults.
type Options struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	Client    *http.Client

	// InitialInterval is the first backoff delay between attempts.
	InitialInterval time.Duration
}

// Fetcher performs single-source retrievals.
type Fetcher struct {
	client          *http.Client
	timeout         time.Duration
	retries         int
	userAgent       string
	initialInterval time.Duration
}

func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:          opts.Client,
		timeout:         opts.Timeout,
		retries:         opts.Retries,
		userAgent:       opts.UserAgent,
		initialInterval: opts.InitialInterval,
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.retries < 0 {
		f.retries = 0
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.initialInterval <= 0 {
		f.initialInterval = 500 * time.Millisecond
	}
	return f
}

// Fetch retrieves rawURL and returns its payload, decompressed when
// compression is gzip.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, compression Compression) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.NewFetchError(fmt.Sprintf("invalid URL %q", rawURL), err)
	}

	var raw []byte
	switch u.Scheme {
	case "http", "https":
		raw, err = f.fetchHTTP(ctx, rawURL)
	case "file":
		raw, err = readFile(u)
	default:
		return nil, errors.NewFetchError(fmt.Sprintf("unsupported URL scheme %q", u.Scheme), nil)
	}
	if err != nil {
		return nil, err
	}

	if compression == CompressionGzip {
		return gunzip(raw)
	}
	return raw, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.initialInterval
	bo.MaxInterval = 30 * time.Second

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		body, retryable, err := f.attempt(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if !retryable || ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		if attempt <= f.retries {
			log.Warnf("Fetching %s failed (attempt %d of %d), retrying: %v", rawURL, attempt, f.retries+1, err)
		}
		return nil, err
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(f.retries+1)),
	)
	if err != nil {
		if errors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, errors.NewFetchError(fmt.Sprintf("failed to fetch %s", rawURL), err)
	}
	return body, nil
}

// attempt performs one request. The bool result reports whether a failure is
// worth retrying.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, errors.NewFetchError(fmt.Sprintf("failed to build request for %s", rawURL), err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, errors.NewFetchError(fmt.Sprintf("failed to fetch %s", rawURL), err)
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, isRetryableStatus(resp.StatusCode),
			errors.NewFetchError(fmt.Sprintf("failed to fetch %s: %s", rawURL, resp.Status), nil)
	}

	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)
	content, err := io.ReadAll(bodyProxy)
	if err != nil {
		return nil, true, errors.NewFetchError(fmt.Sprintf("failed to read response from %s", rawURL), err)
	}

	if checksum, err := bodyProxy.GetChecksum(); err == nil {
		log.Debugf("Fetched %s: %d bytes, md5 %s", rawURL, len(content), checksum)
	}
	return content, false, nil
}

func isRetryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	}
	return false
}

// readFile serves file:// URLs. Both file:///abs/path and file://rel/path are
// accepted; the latter is resolved against the working directory.
func readFile(u *url.URL) ([]byte, error) {
	path := filepath.FromSlash(u.Host + u.Path)
	if path == "" {
		return nil, errors.NewFetchError(fmt.Sprintf("empty file path in %q", u.String()), nil)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFetchError(fmt.Sprintf("failed to read %s", path), err)
	}
	log.Debugf("Read %s: %d bytes", path, len(content))
	return content, nil
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.NewDecompressionError("payload is not gzip-compressed", err)
	}
	defer utils.CloseOrWarn(zr)

	content, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.NewDecompressionError("failed to decompress payload", err)
	}
	return content, nil
}
