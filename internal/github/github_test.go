package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePullRequestNumber(t *testing.T) {
	tests := []struct {
		ref    string
		want   int
		wantOK bool
	}{
		{"refs/pull/123/merge", 123, true},
		{"refs/pull/1/head", 1, true},
		{"refs/heads/main", 0, false},
		{"refs/pull/abc/merge", 0, false},
		{"refs/pull/0/merge", 0, false},
		{"refs/pull/12", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := ParsePullRequestNumber(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostComment(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/octo/demo/issues/42/comments", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "octo/demo", "secret")
	require.NoError(t, client.PostComment(context.Background(), 42, "# Committer Coverage Report\n"))
	assert.Equal(t, "# Committer Coverage Report\n", gotBody["body"])
}

func TestPostCommentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "octo/demo", "secret").PostComment(context.Background(), 1, "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Resource not accessible by integration")
}

func TestPostCommentOKIsNotCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "octo/demo", "secret").PostComment(context.Background(), 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "200 OK")
}

func TestPostCommentTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url, "octo/demo", "secret").PostComment(context.Background(), 1, "x")
	assert.ErrorContains(t, err, "failed to send request")

	err = (&Client{}).PostComment(context.Background(), 1, "x")
	assert.ErrorContains(t, err, "API URL")
}

func TestLookupUserByEmail(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search/users", r.URL.Path)
		switch r.URL.Query().Get("q") {
		case "alice@example.com in:email":
			_, _ = w.Write([]byte(`{"total_count":1,"items":[{"login":"alice"}]}`))
		default:
			_, _ = w.Write([]byte(`{"total_count":0,"items":[]}`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "octo/demo", "secret")
	ctx := context.Background()

	login, ok, err := client.LookupUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", login)

	login, ok, err = client.LookupUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", login)
	assert.Equal(t, int32(1), calls.Load(), "second lookup is served from the cache")

	_, ok, err = client.LookupUserByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = client.LookupUserByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(2), calls.Load(), "misses are cached too")

	_, ok, err = client.LookupUserByEmail(ctx, "Alice Example")
	require.NoError(t, err)
	assert.False(t, ok, "names are never searched")
	assert.Equal(t, int32(2), calls.Load())
}

func TestLookupUserByEmailErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "broken@example.com in:email" {
			_, _ = w.Write([]byte(`{not json`))
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "octo/demo", "")
	_, _, err := client.LookupUserByEmail(context.Background(), "a@example.com")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)

	_, _, err = client.LookupUserByEmail(context.Background(), "broken@example.com")
	assert.ErrorContains(t, err, "decode")
}
