package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/idea-research/internal/resilience"
)

func fastRetry() Option {
	return WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
}

func TestRead_Success(t *testing.T) {
	t.Parallel()

	want := ReadResponse{
		Code: 200,
		Data: ReadData{
			Title:   "Meal Kit Market Report",
			URL:     "https://example.com/meal-kits",
			Content: "# Meal kits\n\nThe market grew 8.5% last year.",
			Usage:   ReadUsage{Tokens: 310},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))
		assert.Equal(t, "/https://example.com/meal-kits", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Read(context.Background(), "https://example.com/meal-kits")

	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestRead_AnonymousOmitsAuthorization(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(ReadResponse{Code: 200}) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewClient("", WithBaseURL(srv.URL)).Read(context.Background(), "https://example.com")
	require.NoError(t, err)
}

func TestRead_RetryOn429(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(ReadResponse{Code: 200, Data: ReadData{Title: "ok"}}) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), fastRetry())
	got, err := client.Read(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, "ok", got.Data.Title)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRead_RetryExhausted(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`service unavailable`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), fastRetry())
	_, err := client.Read(context.Background(), "https://example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.True(t, resilience.IsTransient(err))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRead_NotFoundNotRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL), fastRetry()).Read(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRead_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Read(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestRead_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("k", WithBaseURL(srv.URL), fastRetry()).Read(ctx, "https://example.com")
	require.Error(t, err)
}

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	want := SearchResponse{
		Code: 200,
		Data: []SearchResult{{
			Title:       "Meal kit delivery market size",
			URL:         "https://example.com/market",
			Description: "Market analysis",
		}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meal+kit+market", r.URL.Path)
		assert.Empty(t, r.Header.Get("X-Return-Format"))
		json.NewEncoder(w).Encode(want) //nolint:errcheck
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "meal kit market")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSearch_WithSiteFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "site=statista.com")
		json.NewEncoder(w).Encode(SearchResponse{Code: 200, Data: []SearchResult{}}) //nolint:errcheck
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL)).
		Search(context.Background(), "meal kits", WithSiteFilter("statista.com"))
	require.NoError(t, err)
	assert.Equal(t, 200, got.Code)
}

func TestSearch_NoResults422(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

func TestSearch_RetryOn500(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(SearchResponse{Code: 200, Data: []SearchResult{{URL: "https://example.com"}}}) //nolint:errcheck
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL), fastRetry()).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, got.Data, 1)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestNewClient_Options(t *testing.T) {
	t.Parallel()

	hc := NewClient("my-key", WithTimeout(5*time.Second)).(*httpClient)
	assert.Equal(t, "https://r.jina.ai", hc.baseURL)
	assert.Equal(t, "https://s.jina.ai", hc.searchBaseURL)
	assert.Equal(t, 5*time.Second, hc.http.Timeout)
	assert.Equal(t, 3, hc.retry.MaxAttempts)

	custom := &http.Client{}
	assert.Same(t, custom, NewClient("k", WithHTTPClient(custom)).(*httpClient).http)
}
