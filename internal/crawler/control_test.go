package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotTopicsFiltersBlockedNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hot_topics", r.URL.Path)

		_, _ = w.Write([]byte(`{"topics":[
			{"name":"世界杯","tag":"#世界杯#"},
			{"name":"广告推广","tag":"#广告推广#"},
			{"name":"新能源"}
		]}`))
	}))
	defer srv.Close()

	client := NewControlClient(srv.URL, 5*time.Second, []string{"广告"})

	topics, err := client.HotTopics(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "世界杯", topics[0].Name)
	// Tag derived from the name when the crawler omits it.
	assert.Equal(t, "#新能源#", topics[1].Tag)
}

func TestHotTopicsRespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"topics":[
			{"name":"一"},{"name":"二"},{"name":"三"}
		]}`))
	}))
	defer srv.Close()

	topics, err := NewControlClient(srv.URL, 5*time.Second, nil).HotTopics(context.Background(), 2)

	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestSetKeywords(t *testing.T) {
	var got map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/keywords", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewControlClient(srv.URL, 5*time.Second, nil).SetKeywords(context.Background(), []string{"世界杯", "新能源"})

	require.NoError(t, err)
	assert.Equal(t, []string{"世界杯", "新能源"}, got["keywords"])
}

func TestSetKeywordsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewControlClient(srv.URL, 5*time.Second, nil).SetKeywords(context.Background(), []string{"x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
