package podcastapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const episodesJSON = `[
	{
		"id": "a-importancia-da-contribuicao-em-open-source",
		"title": "A importância da contribuição em Open Source",
		"members": "Diego Fernandes, João Pedro, Diego Schell e Bruna Pietra",
		"published_at": "2021-01-22 19:00:00",
		"thumbnail": "https://cdn.example.com/thumb1.jpg",
		"description": "<p>Nesse episódio...</p>",
		"file": {"url": "https://cdn.example.com/opensource.m4a", "type": "audio/x-m4a", "duration": 3981}
	},
	{
		"id": 42,
		"title": "Uma semana com Go",
		"members": "Mayk Brito",
		"published_at": "2021-01-13T12:00:00Z",
		"thumbnail": "https://cdn.example.com/thumb2.jpg",
		"description": "",
		"file": {"url": "https://cdn.example.com/go.m4a", "type": "audio/x-m4a", "duration": 1800}
	}
]`

func newTestClient(t *testing.T, serverURL string, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = serverURL
	cfg.RetryDelay = time.Millisecond
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestEpisodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/episodes", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("_limit"))
		assert.Equal(t, "published_at", r.URL.Query().Get("_sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("_order"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, episodesJSON)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{Limit: 12, Sort: "published_at", Order: "desc"})

	eps, err := client.Episodes(context.Background())
	require.NoError(t, err)
	require.Len(t, eps, 2)

	assert.Equal(t, "a-importancia-da-contribuicao-em-open-source", eps[0].ID)
	assert.Equal(t, "Diego Fernandes, João Pedro, Diego Schell e Bruna Pietra", eps[0].Members)
	assert.Equal(t, "https://cdn.example.com/opensource.m4a", eps[0].URL)
	assert.Equal(t, 3981, eps[0].Duration)
	assert.Equal(t, time.Date(2021, 1, 22, 19, 0, 0, 0, time.UTC), eps[0].PublishedAt)

	assert.Equal(t, "42", eps[1].ID)
	assert.Equal(t, time.Date(2021, 1, 13, 12, 0, 0, 0, time.UTC), eps[1].PublishedAt)
}

func TestEpisodes_Cache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, episodesJSON)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{Revalidate: time.Hour})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	ctx := context.Background()
	first, err := client.Episodes(ctx)
	require.NoError(t, err)

	// Mutating the returned slice must not corrupt the cache.
	first[0].Title = "changed"

	second, err := client.Episodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotEqual(t, "changed", second[0].Title)

	now = now.Add(time.Hour)
	_, err = client.Episodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expired cache should refetch")

	client.Invalidate()
	_, err = client.Episodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "invalidated cache should refetch")
}

func TestEpisodes_EmptyListNotCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, episodesJSON)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{Revalidate: time.Hour})

	eps, err := client.Episodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, eps)

	eps, err = client.Episodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, eps, 2, "an empty response must not be served from cache")
	assert.Equal(t, int32(2), calls.Load())

	_, err = client.Episodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "a non-empty response is cached")
}

func TestEpisodes_RetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, episodesJSON)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{MaxRetries: 3})

	eps, err := client.Episodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, eps, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEpisodes_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		maxRetries int
		wantCalls  int32
		wantStatus int
	}{
		{
			name:       "not found is not retried",
			status:     http.StatusNotFound,
			body:       "not found",
			maxRetries: 2,
			wantCalls:  1,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error exhausts retries",
			status:     http.StatusInternalServerError,
			body:       "boom",
			maxRetries: 2,
			wantCalls:  3,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed body is not retried",
			status:     http.StatusOK,
			body:       `{"not": "a list"}`,
			maxRetries: 2,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, Config{MaxRetries: tt.maxRetries})

			_, err := client.Episodes(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantCalls, calls.Load())

			var se *StatusError
			if tt.wantStatus != 0 {
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.StatusCode)
			} else {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BaseURL: "::bad"})
	assert.Error(t, err)

	_, err = New(Config{Order: "sideways"})
	assert.Error(t, err)

	client, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"/episodes", client.requestURL())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &StatusError{StatusCode: 429}, true},
		{"503", &StatusError{StatusCode: 503}, true},
		{"400", &StatusError{StatusCode: 400}, false},
		{"wrapped 502", errors.Wrap(&StatusError{StatusCode: 502}, "ctx"), true},
		{"canceled", errors.Wrap(context.Canceled, "send"), false},
		{"malformed", errors.Mark(errors.New("bad json"), ErrMalformedResponse), false},
		{"transport", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}
