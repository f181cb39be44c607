package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/common"
)

type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

func TestPush_SendsBearerAndBody(t *testing.T) {
	var gotAuth string
	var gotReq api.PushRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sync/push", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(api.PushResponse{OK: true, Pushed: api.PushCounts{Categories: 1}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)
	resp, err := c.Push(context.Background(), api.PushRequest{
		Categories: []api.Category{{ID: "c1", Name: "Work"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, gotReq.Categories, 1)
	assert.Equal(t, "c1", gotReq.Categories[0].ID)
	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.Pushed.Categories)
}

func TestPull_NilCheckpointMarshalsNull(t *testing.T) {
	var rawBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rawBody = string(data)

		_ = json.NewEncoder(w).Encode(api.PullResponse{ServerTime: "2024-06-01T12:00:00.000Z"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)
	resp, err := c.Pull(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, rawBody, `"lastSyncedAt":null`)
	assert.Equal(t, "2024-06-01T12:00:00.000Z", resp.ServerTime)
}

func TestDoJSON_SignedOut(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", &staticTokens{token: ""}, nil)

	_, err := c.Pull(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestDoJSON_UnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid token"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "expired"}, nil)
	_, err := c.Pull(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestDoJSON_ServerErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "failed to load entries"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)
	_, err := c.Pull(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
	assert.Contains(t, err.Error(), "failed to load entries")
}

func TestUploadFile_NoBearerHeader(t *testing.T) {
	var gotAuth, gotContentType, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(data)
	}))
	defer srv.Close()

	c := NewHTTPClient("http://unused", &staticTokens{token: "tok"}, nil)
	err := c.UploadFile(context.Background(), srv.URL+"/bucket/key?sig=abc", "image/jpeg",
		strings.NewReader("jpeg-bytes"), int64(len("jpeg-bytes")))
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "jpeg-bytes", gotBody)
}

func TestUploadFile_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient("http://unused", &staticTokens{token: "tok"}, nil)
	err := c.UploadFile(context.Background(), srv.URL, "image/jpeg", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDeleteImage_PathFromKey(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)
	require.NoError(t, c.DeleteImage(context.Background(), "images/u1/e1.jpg"))
	assert.Equal(t, "/upload/images/u1/e1.jpg", gotPath)
}

func TestDeleteAccount(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &staticTokens{token: "tok"}, nil)
	require.NoError(t, c.DeleteAccount(context.Background()))
	assert.Equal(t, "/account", gotPath)
}
