package server

import (
	"net/http"
	"strings"
)

type authedHandler func(w http.ResponseWriter, r *http.Request, viewerID string)

// authed resolves the viewer identity from the Authorization header and
// rejects the request before the handler runs when the token is missing
// or invalid.
func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := s.resolveViewer(r)
		if !ok {
			sendError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, viewerID)
	}
}

// resolveViewer accepts a bearer header or, for websocket upgrades where
// browsers cannot set headers, a token query parameter.
func (s *Server) resolveViewer(r *http.Request) (string, bool) {
	token := ""
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	} else {
		token = getQueryItem(r.URL.Query(), "token")
	}
	if token == "" {
		return "", false
	}

	viewerID, err := s.tokens.Validate(token)
	if err != nil {
		return "", false
	}
	return viewerID, true
}
