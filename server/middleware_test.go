package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social/auth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		tokens: auth.NewTokenIssuer("test-secret", time.Hour),
	}
}

func TestAuthedRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	handler := s.authed(func(w http.ResponseWriter, r *http.Request, viewerID string) {
		t.Fatal("handler must not run")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthedRejectsInvalidToken(t *testing.T) {
	s := newTestServer(t)
	handler := s.authed(func(w http.ResponseWriter, r *http.Request, viewerID string) {
		t.Fatal("handler must not run")
	})

	request := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	request.Header.Set("Authorization", "Bearer garbage")

	recorder := httptest.NewRecorder()
	handler(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthedResolvesBearerToken(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.Sign("user-123")
	require.NoError(t, err)

	var gotViewer string
	handler := s.authed(func(w http.ResponseWriter, r *http.Request, viewerID string) {
		gotViewer = viewerID
		w.WriteHeader(http.StatusNoContent)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	recorder := httptest.NewRecorder()
	handler(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "user-123", gotViewer)
}

func TestResolveViewerFromQueryToken(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.Sign("user-123")
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	viewerID, ok := s.resolveViewer(request)
	assert.True(t, ok)
	assert.Equal(t, "user-123", viewerID)
}

func TestParseQueryParams(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedCursor string
		expectedLimit  int
	}{
		{"defaults", "/api/feed", "", 0},
		{"cursor and limit", "/api/feed?cursor=abc&limit=5", "abc", 5},
		{"unparsable limit falls back", "/api/feed?limit=many", "", 0},
		{"repeated params ignored", "/api/feed?limit=5&limit=7", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := parseQueryParams(httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.expectedCursor, params.Cursor)
			assert.Equal(t, tt.expectedLimit, params.Limit)
		})
	}
}
