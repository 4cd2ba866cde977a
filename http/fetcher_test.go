package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claudehenchoz/gensi"
	gensihttp "github.com/claudehenchoz/gensi/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and URL from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := gensihttp.NewFetcher()

		body, resolved, err := fetcher.Fetch(context.Background(), server.URL, gensi.PurposeArticle)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", body)
		assert.Equal(t, server.URL, resolved)
	})

	t.Run("returns resolved URL after redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/final", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("landed"))
		})

		fetcher := gensihttp.NewFetcher()

		body, resolved, err := fetcher.Fetch(context.Background(), server.URL+"/start", gensi.PurposeArticle)
		require.NoError(t, err)
		assert.Equal(t, "landed", body)
		assert.Equal(t, server.URL+"/final", resolved)
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := gensihttp.NewFetcher(gensihttp.WithUserAgent("gensi-test/1.0"))

		_, _, err := fetcher.Fetch(context.Background(), server.URL, gensi.PurposeIndex)
		require.NoError(t, err)
		assert.Equal(t, "gensi-test/1.0", gotUA)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := gensihttp.NewFetcher(gensihttp.WithTimeout(10 * time.Millisecond))

		_, _, err := fetcher.Fetch(context.Background(), server.URL, gensi.PurposeArticle)
		require.Error(t, err)
		assert.Equal(t, gensi.EFETCH, gensi.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		fetcher := gensihttp.NewFetcher()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := fetcher.Fetch(ctx, server.URL, gensi.PurposeArticle)
		require.Error(t, err)
	})

	t.Run("non-success status is a fetch error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		fetcher := gensihttp.NewFetcher()

		_, _, err := fetcher.Fetch(context.Background(), server.URL, gensi.PurposeArticle)
		require.Error(t, err)
		assert.Equal(t, gensi.EFETCH, gensi.ErrorCode(err))
		assert.Contains(t, gensi.ErrorMessage(err), "404")
	})
}

func TestFetcher_FetchBinary(t *testing.T) {
	t.Parallel()

	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	fetcher := gensihttp.NewFetcher()

	body, resolved, err := fetcher.FetchBinary(context.Background(), server.URL, gensi.PurposeImage)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
	assert.Equal(t, server.URL, resolved)
}

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("second request to same domain waits", func(t *testing.T) {
		t.Parallel()

		limiter := gensihttp.NewDomainLimiter(20)
		ctx := context.Background()

		start := time.Now()
		require.NoError(t, limiter.Wait(ctx, "example.com"))
		require.NoError(t, limiter.Wait(ctx, "example.com"))
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("different domains do not block each other", func(t *testing.T) {
		t.Parallel()

		limiter := gensihttp.NewDomainLimiter(1)
		ctx := context.Background()

		start := time.Now()
		require.NoError(t, limiter.Wait(ctx, "a.example.com"))
		require.NoError(t, limiter.Wait(ctx, "b.example.com"))
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("canceled context aborts the wait", func(t *testing.T) {
		t.Parallel()

		limiter := gensihttp.NewDomainLimiter(0.1)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		require.NoError(t, limiter.Wait(ctx, "slow.example.com"))
		require.Error(t, limiter.Wait(ctx, "slow.example.com"))
	})
}
