package jokes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"type":"general","setup":"Why did the chicken cross the road?","punchline":"To get to the other side."}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bad joke time: Why did the chicken cross the road?... To get to the other side.", text)
}

func TestFetchCustomFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"setup":"A","punchline":"B"}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "Momento del chiste malo: %s... %s").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Momento del chiste malo: A... B", text)
}

func TestFetchNothingToSay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"setup":"","punchline":"B"}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Fetch(context.Background())
	assert.ErrorContains(t, err, "429")

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer bad.Close()

	_, err = NewClient(bad.URL, "").Fetch(context.Background())
	assert.ErrorContains(t, err, "decode")
}

func TestFetchHonoursContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(srv.URL, "").Fetch(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
