package server

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"social/utils"
)

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request, viewerID string) {
	params := parseQueryParams(r)

	result, err := s.feed.GetTimeline(r.Context(), viewerID, params)
	if err != nil {
		log.Errorf(
			"Error assembling feed for viewer %s (cursor=%q limit=%d): %v",
			viewerID, params.Cursor, params.Limit, err,
		)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sendJson(w, http.StatusOK, result)
}

func (s *Server) getUserPosts(w http.ResponseWriter, r *http.Request, viewerID string) {
	authorID := r.PathValue("id")
	if !utils.IsValidID(authorID) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}
	params := parseQueryParams(r)

	result, err := s.feed.GetUserTimeline(r.Context(), viewerID, authorID, params)
	if err != nil {
		log.Errorf(
			"Error assembling timeline of %s for viewer %s (cursor=%q limit=%d): %v",
			authorID, viewerID, params.Cursor, params.Limit, err,
		)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sendJson(w, http.StatusOK, result)
}
