package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/wishlens/pricepeek/internal/config"
	"github.com/wishlens/pricepeek/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestClient(t *testing.T, mutate func(*config.FetcherConfig)) *Client {
	t.Helper()
	cfg := config.DefaultConfig().Fetcher
	if mutate != nil {
		mutate(&cfg)
	}
	c := New(&cfg, testLogger)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	if _, err := c.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want a browser identity", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("Accept = %q, want text/html content", gotAccept)
	}
	if gotLang == "" {
		t.Error("Accept-Language must be sent")
	}
}

func TestFetchRecordsFinalURL(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>final</html>"))
	}))
	defer target.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/landed", http.StatusFound)
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	page, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if page.FinalURL != target.URL+"/landed" {
		t.Errorf("FinalURL = %q, want %q", page.FinalURL, target.URL+"/landed")
	}
}

func TestFetchRedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	c := newTestClient(t, func(cfg *config.FetcherConfig) { cfg.MaxRedirects = 5 })
	_, err := c.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected redirect-limit error")
	}
	if !types.IsFetchError(err) {
		t.Errorf("error = %v, want a FetchError", err)
	}
}

func TestFetchErrorStatuses(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := newTestClient(t, nil)
		_, err := c.Fetch(context.Background(), srv.URL)
		srv.Close()

		if err == nil {
			t.Errorf("status %d: expected error", status)
			continue
		}
		var fe *types.FetchError
		if !errors.As(err, &fe) {
			t.Errorf("status %d: error = %v, want FetchError", status, err)
			continue
		}
		if fe.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", fe.StatusCode, status)
		}
	}
}

func TestFetchAcceptsNonErrorStatuses(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := newTestClient(t, nil)
		page, err := c.Fetch(context.Background(), srv.URL)
		srv.Close()

		if err != nil {
			t.Errorf("status %d: unexpected error %v", status, err)
			continue
		}
		if page.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", page.StatusCode, status)
		}
	}
}

func TestFetchDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<html>compressed</html>"))
		gz.Close()
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	page, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(page.Body) != "<html>compressed</html>" {
		t.Errorf("body = %q, want decompressed HTML", page.Body)
	}
}

func TestFetchDecompressesBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		bw.Write([]byte("<html>br</html>"))
		bw.Close()
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	page, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(page.Body) != "<html>br</html>" {
		t.Errorf("body = %q, want decompressed HTML", page.Body)
	}
}

func TestFetchContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newTestClient(t, nil)
	if _, err := c.Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestFetchBodySizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 1024)))
	}))
	defer srv.Close()

	c := newTestClient(t, func(cfg *config.FetcherConfig) { cfg.MaxBodySize = 100 })
	page, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(page.Body) != 100 {
		t.Errorf("body size = %d, want capped at 100", len(page.Body))
	}
}
