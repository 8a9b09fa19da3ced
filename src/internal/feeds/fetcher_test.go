package feeds

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testFetcher(retries int) *Fetcher {
	return NewFetcher(Options{
		Timeout:         2 * time.Second,
		Retries:         retries,
		UserAgent:       "listgen-test",
		InitialInterval: time.Millisecond,
	})
}

func TestFetchPlain(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Write([]byte("1.2.3.4\n"))
	}))
	defer server.Close()

	body, err := testFetcher(0).Fetch(context.Background(), server.URL, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4\n", string(body))
	assert.Equal(t, "listgen-test", gotUA)
}

func TestFetchGzip(t *testing.T) {
	payload := gzipped(t, "RU\t5.8.0.0/19\n")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	body, err := testFetcher(0).Fetch(context.Background(), server.URL, CompressionGzip)
	require.NoError(t, err)
	assert.Equal(t, "RU\t5.8.0.0/19\n", string(body))
}

func TestFetchGzipDeclaredButPlain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1.2.3.4\n"))
	}))
	defer server.Close()

	_, err := testFetcher(2).Fetch(context.Background(), server.URL, CompressionGzip)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDecompression, errors.CodeOf(err))
}

func TestFetchStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"not found is permanent", http.StatusNotFound, 1},
		{"forbidden is permanent", http.StatusForbidden, 1},
		{"server error is retried", http.StatusBadGateway, 3},
		{"rate limit is retried", http.StatusTooManyRequests, 3},
		{"request timeout is retried", http.StatusRequestTimeout, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := testFetcher(2).Fetch(context.Background(), server.URL, CompressionNone)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeFetch, errors.CodeOf(err))
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("10.0.0.0/8\n"))
	}))
	defer server.Close()

	body, err := testFetcher(2).Fetch(context.Background(), server.URL, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8\n", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewFetcher(Options{Timeout: 50 * time.Millisecond, InitialInterval: time.Millisecond})
	_, err := f.Fetch(context.Background(), server.URL, CompressionNone)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetch, errors.CodeOf(err))
}

func TestFetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := testFetcher(1).Fetch(context.Background(), url, CompressionNone)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetch, errors.CodeOf(err))
}

func TestFetchFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.txt.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, "192.0.2.0/24\n"), 0644))

	body, err := testFetcher(0).Fetch(context.Background(), "file://"+filepath.ToSlash(path), CompressionGzip)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.0/24\n", string(body))

	_, err = testFetcher(0).Fetch(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "missing")), CompressionNone)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetch, errors.CodeOf(err))
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, err := testFetcher(0).Fetch(context.Background(), "ftp://example.org/list.txt", CompressionNone)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetch, errors.CodeOf(err))
}

func TestFetchCancelledContext(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher(5).Fetch(ctx, server.URL, CompressionNone)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetch, errors.CodeOf(err))
	assert.Zero(t, calls.Load())
}
