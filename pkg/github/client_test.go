package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, repoCount int, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"login":     "octocat",
			"name":      "The Octocat",
			"html_url":  "https://github.com/octocat",
			"bio":       nil,
			"followers": 10,
		})
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := (page - 1) * perPage
		var repos []map[string]any
		for i := start; i < repoCount && i < start+perPage; i++ {
			repos = append(repos, map[string]any{"name": fmt.Sprintf("repo-%d", i), "stargazers_count": i})
		}
		if repos == nil {
			repos = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(repos)
	})
	mux.HandleFunc("/users/ghost", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	mux.HandleFunc("/users/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientUser(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, 0, &hits)
	client := NewClient(WithBaseURL(server.URL))

	user, err := client.User(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "The Octocat", user.Name)
	assert.Empty(t, user.Bio)
	assert.Equal(t, 10, user.Followers)
}

func TestClientReposPaginates(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, 150, &hits)
	client := NewClient(WithBaseURL(server.URL))

	repos, err := client.Repos(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Len(t, repos, 150)
	assert.Equal(t, "repo-149", repos[149].Name)
}

func TestClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, 0, &hits)
	client := NewClient(WithBaseURL(server.URL))

	t.Run("not found", func(t *testing.T) {
		_, err := client.User(context.Background(), "ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("api error", func(t *testing.T) {
		_, err := client.User(context.Background(), "limited")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Contains(t, apiErr.Error(), "rate limit")
	})

	t.Run("empty login", func(t *testing.T) {
		_, err := client.User(context.Background(), "  ")
		require.Error(t, err)
	})
}

func TestClientCachesResponses(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, 0, &hits)
	client := NewClient(WithBaseURL(server.URL))

	_, err := client.User(context.Background(), "octocat")
	require.NoError(t, err)
	_, err = client.User(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	uncached := NewClient(WithBaseURL(server.URL), WithCacheTTL(0))
	_, err = uncached.User(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClientSendsToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("ghp_testtoken"))
	_, err := client.User(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_testtoken", auth)
}

func TestClientFetchAll(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, 3, &hits)
	client := NewClient(WithBaseURL(server.URL))

	data, err := client.FetchAll(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", data.User.Login)
	assert.Len(t, data.Repos, 3)

	_, err = client.FetchAll(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
