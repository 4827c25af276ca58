package server

import (
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"social/feeds"
	"social/storage/models"
	"social/utils"
)

type commentView struct {
	ID        string              `json:"id"`
	PostID    string              `json:"postId"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"createdAt"`
	Author    feeds.AuthorSummary `json:"author"`
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request, viewerID string) {
	postID := r.PathValue("id")
	if !utils.IsValidID(postID) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}
	params := parseQueryParams(r)
	limit := clampListLimit(params.Limit)

	// Same stale-cursor contract as the feed: an unknown cursor yields an
	// empty page.
	var before *models.Comment
	if params.Cursor != "" {
		if !utils.IsValidID(params.Cursor) {
			sendJson(w, http.StatusOK, emptyListResponse("comments"))
			return
		}
		cursorComment, err := s.queries.GetComment(r.Context(), params.Cursor)
		if err != nil {
			log.Errorf("Error resolving comment cursor %q: %v", params.Cursor, err)
			sendError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if cursorComment == nil {
			sendJson(w, http.StatusOK, emptyListResponse("comments"))
			return
		}
		before = cursorComment
	}

	comments, err := s.queries.ListComments(r.Context(), postID, before, limit+1)
	if err != nil {
		log.Errorf("Error listing comments of post %s: %v", postID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hasMore := len(comments) > limit
	if hasMore {
		comments = comments[:limit]
	}
	var nextCursor *string
	if hasMore {
		cursor := comments[len(comments)-1].ID
		nextCursor = &cursor
	}

	sendJson(w, http.StatusOK, map[string]any{
		"comments":   s.decorateComments(r, comments),
		"pagination": feeds.Pagination{HasMore: hasMore, NextCursor: nextCursor},
	})
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request, viewerID string) {
	postID := r.PathValue("id")
	if !utils.IsValidID(postID) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	body.Content = strings.TrimSpace(body.Content)
	if body.Content == "" {
		sendError(w, http.StatusBadRequest, "comment needs content")
		return
	}

	post, err := s.queries.GetPost(r.Context(), postID)
	if err != nil {
		log.Errorf("Error fetching post %s: %v", postID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if post == nil {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	comment := models.Comment{
		ID:        utils.NewID(),
		PostID:    postID,
		AuthorID:  viewerID,
		Content:   body.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.queries.CreateComment(r.Context(), comment); err != nil {
		log.Errorf("Error creating comment on post %s: %v", postID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.notify(r, post.AuthorID, viewerID, models.NotificationComment, &post.ID)

	views := s.decorateComments(r, []models.Comment{comment})
	sendJson(w, http.StatusCreated, views[0])
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "comment not found")
		return
	}

	deleted, err := s.queries.DeleteComment(r.Context(), id, viewerID)
	if err != nil {
		log.Errorf("Error deleting comment %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !deleted {
		sendError(w, http.StatusNotFound, "comment not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decorateComments(r *http.Request, comments []models.Comment) []commentView {
	authorIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, comment := range comments {
		if !seen[comment.AuthorID] {
			seen[comment.AuthorID] = true
			authorIDs = append(authorIDs, comment.AuthorID)
		}
	}

	var authors map[string]models.User
	if len(authorIDs) > 0 {
		var err error
		authors, err = s.queries.GetUserSummaries(r.Context(), authorIDs)
		if err != nil {
			log.Errorf("Error fetching comment authors: %v", err)
		}
	}

	views := make([]commentView, len(comments))
	for i, comment := range comments {
		author := authors[comment.AuthorID]
		views[i] = commentView{
			ID:        comment.ID,
			PostID:    comment.PostID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			Author: feeds.AuthorSummary{
				ID:        comment.AuthorID,
				Name:      author.Name,
				AvatarURL: author.AvatarURL,
			},
		}
	}
	return views
}

func clampListLimit(limit int) int {
	if limit == 0 {
		return feeds.DefaultLimit
	}
	if limit < feeds.MinLimit {
		return feeds.MinLimit
	}
	if limit > feeds.MaxLimit {
		return feeds.MaxLimit
	}
	return limit
}

func emptyListResponse(field string) map[string]any {
	return map[string]any{
		field:        []any{},
		"pagination": feeds.Pagination{HasMore: false, NextCursor: nil},
	}
}
