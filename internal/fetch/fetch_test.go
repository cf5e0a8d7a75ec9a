package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "coinboard-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"bitcoin"}`))
	}))
	defer server.Close()

	r := &Requester{HTTPClient: server.Client(), UserAgent: "coinboard-test"}
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, r.GetJSON(context.Background(), "test", server.URL, &out))
	assert.Equal(t, "bitcoin", out.Name)
}

func TestGetJSON_StatusIsTransportErrorWithoutRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	r := &Requester{HTTPClient: server.Client()}
	var out map[string]interface{}
	err := r.GetJSON(context.Background(), "coingecko/markets", server.URL, &out)
	require.Error(t, err)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindTransport, fe.Kind)
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, "coingecko/markets", fe.Source)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrParse))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "fetchers must not retry")
}

func TestGetJSON_MalformedBodyIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	}))
	defer server.Close()

	r := &Requester{HTTPClient: server.Client()}
	var out map[string]interface{}
	err := r.GetJSON(context.Background(), "test", server.URL, &out)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestGetJSON_UnreachableIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	r := &Requester{HTTPClient: &http.Client{}}
	var out map[string]interface{}
	err := r.GetJSON(context.Background(), "test", url, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "test: transport error")
}

func TestGetJSON_CancelledContextDuringLimiterWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lim := NewLimiter(0.001, 1)
	lim.Allow() // exhaust the single token

	r := &Requester{Limiter: lim}
	var out map[string]interface{}
	err := r.GetJSON(ctx, "test", "http://127.0.0.1:1", &out)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	lim := NewLimiter(2, 0)
	require.NotNil(t, lim)
	assert.Equal(t, 1, lim.Burst())
}
