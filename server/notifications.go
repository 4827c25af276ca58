package server

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"social/feeds"
	"social/monitoring"
	"social/storage/models"
	"social/utils"
)

// notify records a notification and pushes it to the recipient's open
// websocket connections. The database row is the source of truth; the
// push is best-effort. Acting on one's own content notifies nobody.
func (s *Server) notify(
	r *http.Request,
	recipientID string,
	actorID string,
	kind models.NotificationKind,
	postID *string,
) {
	if recipientID == actorID {
		return
	}

	notification := models.Notification{
		ID:          utils.NewID(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		PostID:      postID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.queries.CreateNotification(r.Context(), notification); err != nil {
		log.Errorf("Error creating %s notification for user %s: %v", kind, recipientID, err)
		return
	}
	monitoring.NotificationsSent.WithLabelValues(string(kind)).Inc()

	s.hub.Publish(recipientID, map[string]any{
		"type":         "notification",
		"notification": notification,
	})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request, viewerID string) {
	params := parseQueryParams(r)
	limit := clampListLimit(params.Limit)

	var before *models.Notification
	if params.Cursor != "" {
		if !utils.IsValidID(params.Cursor) {
			sendJson(w, http.StatusOK, emptyListResponse("notifications"))
			return
		}
		cursorNotification, err := s.queries.GetNotification(r.Context(), params.Cursor)
		if err != nil {
			log.Errorf("Error resolving notification cursor %q: %v", params.Cursor, err)
			sendError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if cursorNotification == nil {
			sendJson(w, http.StatusOK, emptyListResponse("notifications"))
			return
		}
		before = cursorNotification
	}

	notifications, err := s.queries.ListNotifications(r.Context(), viewerID, before, limit+1)
	if err != nil {
		log.Errorf("Error listing notifications of user %s: %v", viewerID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hasMore := len(notifications) > limit
	if hasMore {
		notifications = notifications[:limit]
	}
	var nextCursor *string
	if hasMore {
		cursor := notifications[len(notifications)-1].ID
		nextCursor = &cursor
	}

	sendJson(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"pagination":    feeds.Pagination{HasMore: hasMore, NextCursor: nextCursor},
	})
}

func (s *Server) markNotificationsRead(w http.ResponseWriter, r *http.Request, viewerID string) {
	updated, err := s.queries.MarkAllNotificationsRead(r.Context(), viewerID)
	if err != nil {
		log.Errorf("Error marking notifications read for user %s: %v", viewerID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sendJson(w, http.StatusOK, map[string]int64{"updated": updated})
}
