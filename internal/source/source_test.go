package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestLog struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (rl *requestLog) add(r *http.Request) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requests = append(rl.requests, r)
}

func (rl *requestLog) all() []*http.Request {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return append([]*http.Request(nil), rl.requests...)
}

func newTestServer(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}

	mux := http.NewServeMux()
	mux.HandleFunc("/items.json", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		w.Write([]byte(`[{"sku":"C001","title":"Tee","price":50}]`))
	})
	mux.HandleFunc("/discounts.json", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/settings.json", func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		w.Write([]byte(`{"currency":"S/"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, log
}

func TestFetchAllReturnsAllThreePayloads(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL, "items.json", "discounts.json", "settings.json", 5*time.Second)

	payloads, err := client.FetchAll(context.Background(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, payloads.Items)
	assert.NotEmpty(t, payloads.Discounts)
	assert.NotEmpty(t, payloads.Settings)
}

func TestFetchAllSendsNoCacheHeader(t *testing.T) {
	server, requests := newTestServer(t)
	client := NewClient(server.URL, "items.json", "discounts.json", "settings.json", 5*time.Second)

	_, err := client.FetchAll(context.Background(), false)
	require.NoError(t, err)

	for _, r := range requests.all() {
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Empty(t, r.URL.Query().Get("ts"))
	}
}

func TestFetchAllBypassCacheAddsTimestampParam(t *testing.T) {
	server, requests := newTestServer(t)
	client := NewClient(server.URL, "items.json", "discounts.json", "settings.json", 5*time.Second)

	_, err := client.FetchAll(context.Background(), true)
	require.NoError(t, err)

	seen := requests.all()
	require.Len(t, seen, 3)
	for _, r := range seen {
		assert.NotEmpty(t, r.URL.Query().Get("ts"), "cache-defeating param missing on %s", r.URL.Path)
	}
}

func TestFetchAllFailsWhenAnySourceIsMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/items.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/settings.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	// discounts.json 404s
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, "items.json", "discounts.json", "settings.json", 5*time.Second)
	_, err := client.FetchAll(context.Background(), false)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestFetchAllFailsWhenServerIsDown(t *testing.T) {
	server, _ := newTestServer(t)
	url := server.URL
	server.Close()

	client := NewClient(url, "items.json", "discounts.json", "settings.json", time.Second)
	_, err := client.FetchAll(context.Background(), false)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}
