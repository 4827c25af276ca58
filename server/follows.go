package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"social/feeds"
	"social/storage/models"
	"social/utils"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}

	profile, err := s.queries.GetProfile(r.Context(), id, viewerID)
	if err != nil {
		log.Errorf("Error fetching profile %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profile == nil {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}
	profile.IsOnline = s.presence.IsOnline(r.Context(), id)
	sendJson(w, http.StatusOK, profile)
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}
	if id == viewerID {
		sendError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}

	followee, err := s.queries.GetUserByID(r.Context(), id)
	if err != nil {
		log.Errorf("Error fetching user %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if followee == nil {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}

	created, err := s.queries.CreateFollow(r.Context(), viewerID, id)
	if err != nil {
		log.Errorf("Error creating follow %s -> %s: %v", viewerID, id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if created {
		s.notify(r, id, viewerID, models.NotificationFollow, nil)
		// The follower's first page now includes the followee's posts.
		s.feedsCache.InvalidateAll(r.Context())
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}

	deleted, err := s.queries.DeleteFollow(r.Context(), viewerID, id)
	if err != nil {
		log.Errorf("Error deleting follow %s -> %s: %v", viewerID, id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if deleted {
		s.feedsCache.InvalidateAll(r.Context())
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFollowers(w http.ResponseWriter, r *http.Request, viewerID string) {
	s.listFollowEdges(w, r, viewerID, "followers")
}

func (s *Server) listFollowing(w http.ResponseWriter, r *http.Request, viewerID string) {
	s.listFollowEdges(w, r, viewerID, "following")
}

type followUserView struct {
	ID                string `json:"id"`
	Name              string `json:"displayName"`
	AvatarURL         string `json:"avatarUrl"`
	ViewerIsFollowing bool   `json:"viewerIsFollowing"`
}

// Follower lists page on the follow edge under (created_at, user id), the
// same compound order the post lists use. The cursor carries both halves:
// the edge timestamp in microseconds and the id of the last listed user.
func (s *Server) listFollowEdges(w http.ResponseWriter, r *http.Request, viewerID string, direction string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}
	params := parseQueryParams(r)
	limit := clampListLimit(params.Limit)

	var before time.Time
	var beforeID string
	if params.Cursor != "" {
		edgeTime, edgeUserID, ok := parseEdgeCursor(params.Cursor)
		if !ok {
			sendJson(w, http.StatusOK, emptyListResponse("users"))
			return
		}
		before, beforeID = edgeTime, edgeUserID
	}

	var users []models.User
	var edgeTimes []time.Time
	var err error
	if direction == "followers" {
		users, edgeTimes, err = s.queries.ListFollowers(r.Context(), id, before, beforeID, limit+1)
	} else {
		users, edgeTimes, err = s.queries.ListFollowing(r.Context(), id, before, beforeID, limit+1)
	}
	if err != nil {
		log.Errorf("Error listing %s of user %s: %v", direction, id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
		edgeTimes = edgeTimes[:limit]
	}
	var nextCursor *string
	if hasMore {
		cursor := encodeEdgeCursor(edgeTimes[len(edgeTimes)-1], users[len(users)-1].ID)
		nextCursor = &cursor
	}

	followed := make(map[string]bool)
	if len(users) > 0 {
		ids := make([]string, len(users))
		for i, user := range users {
			ids[i] = user.ID
		}
		followed, err = s.queries.GetFollowedSet(r.Context(), viewerID, ids)
		if err != nil {
			// Decoration only; the list itself still renders.
			log.Errorf("Error fetching followed set for viewer %s: %v", viewerID, err)
		}
	}

	sendJson(w, http.StatusOK, map[string]any{
		"users":      followUserViews(users, followed),
		"pagination": feeds.Pagination{HasMore: hasMore, NextCursor: nextCursor},
	})
}

func followUserViews(users []models.User, followed map[string]bool) []followUserView {
	views := make([]followUserView, len(users))
	for i, user := range users {
		views[i] = followUserView{
			ID:                user.ID,
			Name:              user.Name,
			AvatarURL:         user.AvatarURL,
			ViewerIsFollowing: followed[user.ID],
		}
	}
	return views
}

func encodeEdgeCursor(edgeTime time.Time, userID string) string {
	return fmt.Sprintf("%d_%s", edgeTime.UnixMicro(), userID)
}

func parseEdgeCursor(cursor string) (time.Time, string, bool) {
	rawMicros, userID, found := strings.Cut(cursor, "_")
	if !found || !utils.IsValidID(userID) {
		return time.Time{}, "", false
	}
	micros, err := strconv.ParseInt(rawMicros, 10, 64)
	if err != nil {
		return time.Time{}, "", false
	}
	return time.UnixMicro(micros), userID, true
}
