package feargreed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/coinboard/internal/fetch"
	"github.com/rewired-gh/coinboard/internal/models"
)

func newTestClient(t *testing.T, body string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewClient(server.URL, &fetch.Requester{HTTPClient: server.Client()})
}

func TestHistory_RealAPIFormat(t *testing.T) {
	client := newTestClient(t, `{"name":"Fear and Greed Index","data":[
		{"value":"72","value_classification":"Greed","timestamp":"1700172800","time_until_update":"1234"},
		{"value":"65","value_classification":"Greed","timestamp":"1700086400"},
		{"value":"40","value_classification":"Fear","timestamp":"1700000000"}
	],"metadata":{"error":null}}`)

	samples, err := client.History(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, 72, samples[0].Value)
	assert.Equal(t, "Greed", samples[0].Classification)
	assert.Equal(t, int64(1700172800), samples[0].Timestamp.Unix())
	assert.Equal(t, 40, samples[2].Value)
}

func TestHistory_BadValueIsParseError(t *testing.T) {
	client := newTestClient(t, `{"data":[{"value":"high","value_classification":"Greed","timestamp":"1700000000"}]}`)

	_, err := client.History(context.Background(), 3)
	assert.True(t, errors.Is(err, fetch.ErrParse))
}

func TestHistory_APIErrorIsParseError(t *testing.T) {
	client := newTestClient(t, `{"data":[],"metadata":{"error":"limit too large"}}`)

	_, err := client.History(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit too large")
}

func TestSummarize(t *testing.T) {
	samples := []models.SentimentSample{{Value: 72}, {Value: 65}, {Value: 40}}

	s, ok := Summarize(samples)
	require.True(t, ok)
	assert.Equal(t, 72, s.Current.Value)
	assert.True(t, s.HasPrevious)
	assert.Equal(t, 7, s.Change)

	s, ok = Summarize([]models.SentimentSample{{Value: 30}, {Value: 45}})
	require.True(t, ok)
	assert.Equal(t, -15, s.Change)

	s, ok = Summarize([]models.SentimentSample{{Value: 30}})
	require.True(t, ok)
	assert.False(t, s.HasPrevious)
	assert.Equal(t, 0, s.Change)

	_, ok = Summarize(nil)
	assert.False(t, ok)
}

func TestChronological(t *testing.T) {
	samples := []models.SentimentSample{{Value: 3}, {Value: 2}, {Value: 1}}
	out := Chronological(samples)
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].Value, out[1].Value, out[2].Value})
	assert.Equal(t, 3, samples[0].Value, "input is not modified")
}
