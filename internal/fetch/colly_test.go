// Package fetch_test tests the single-shot page fetcher.
package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagewatch/pagewatch/internal/fetch"
	"github.com/pagewatch/pagewatch/internal/watch"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	f := fetch.New(fetch.Config{UserAgent: "pagewatch-test/1.0"}, nil)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", string(body))
	assert.Equal(t, "pagewatch-test/1.0", gotUA)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := fetch.New(fetch.Config{}, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *watch.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestFetchServerErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := fetch.New(fetch.Config{}, nil)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, body)

	var fe *watch.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
}

func TestFetchAcceptsUpperSuccessStatus(t *testing.T) {
	t.Parallel()

	// 206 sits above colly's default 202 cutoff; the collector is
	// configured to deliver it through the response path like a 200.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("tail of page"))
	}))
	defer srv.Close()

	f := fetch.New(fetch.Config{}, nil)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "tail of page", string(body))
}

func TestFetchConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead := srv.URL
	srv.Close()

	f := fetch.New(fetch.Config{Timeout: 2 * time.Second}, nil)
	_, err := f.Fetch(context.Background(), dead)
	var fe *watch.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := fetch.New(fetch.Config{}, nil)
	_, err := f.Fetch(ctx, srv.URL)
	var fe *watch.FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, context.Canceled)
}
