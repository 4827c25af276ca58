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

func (s *Server) createPost(w http.ResponseWriter, r *http.Request, viewerID string) {
	var body struct {
		Content  string  `json:"content"`
		MediaURL *string `json:"mediaUrl"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	body.Content = strings.TrimSpace(body.Content)
	if body.Content == "" && body.MediaURL == nil {
		sendError(w, http.StatusBadRequest, "post needs content or media")
		return
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        utils.NewID(),
		AuthorID:  viewerID,
		Content:   body.Content,
		MediaURL:  body.MediaURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.queries.CreatePost(r.Context(), post); err != nil {
		log.Errorf("Error creating post for user %s: %v", viewerID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// A new post may belong on any follower's first page.
	s.feedsCache.InvalidateAll(r.Context())

	sendJson(w, http.StatusCreated, s.decoratePost(r, viewerID, post))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	post, err := s.queries.GetPost(r.Context(), id)
	if err != nil {
		log.Errorf("Error fetching post %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if post == nil {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	sendJson(w, http.StatusOK, s.decoratePost(r, viewerID, *post))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	var body struct {
		Content  string  `json:"content"`
		MediaURL *string `json:"mediaUrl"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	body.Content = strings.TrimSpace(body.Content)
	if body.Content == "" && body.MediaURL == nil {
		sendError(w, http.StatusBadRequest, "post needs content or media")
		return
	}

	updated, err := s.queries.UpdatePost(r.Context(), id, viewerID, body.Content, body.MediaURL)
	if err != nil {
		log.Errorf("Error updating post %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !updated {
		// Either the post does not exist or the viewer is not its author;
		// no distinction is leaked.
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	s.feedsCache.InvalidateAll(r.Context())

	post, err := s.queries.GetPost(r.Context(), id)
	if err != nil || post == nil {
		log.Errorf("Error re-fetching post %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sendJson(w, http.StatusOK, s.decoratePost(r, viewerID, *post))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	deleted, err := s.queries.DeletePost(r.Context(), id, viewerID)
	if err != nil {
		log.Errorf("Error deleting post %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !deleted {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	s.feedsCache.InvalidateAll(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// decoratePost builds the single-post view with the same author and
// engagement fields a feed page carries. Decoration failures degrade to
// zero counts, matching the feed assembler.
func (s *Server) decoratePost(r *http.Request, viewerID string, post models.Post) feeds.PostView {
	view := feeds.PostView{
		ID:        post.ID,
		Content:   post.Content,
		MediaURL:  post.MediaURL,
		CreatedAt: post.CreatedAt,
		Author:    feeds.AuthorSummary{ID: post.AuthorID},
	}

	authors, err := s.queries.GetUserSummaries(r.Context(), []string{post.AuthorID})
	if err != nil {
		log.Errorf("Error fetching author of post %s: %v", post.ID, err)
	} else if author, ok := authors[post.AuthorID]; ok {
		view.Author.Name = author.Name
		view.Author.AvatarURL = author.AvatarURL
	}

	engagement, err := s.queries.GetEngagement(r.Context(), []string{post.ID}, viewerID)
	if err != nil {
		log.Errorf("Error fetching engagement of post %s: %v", post.ID, err)
	} else if e, ok := engagement[post.ID]; ok {
		view.LikeCount = e.LikeCount
		view.CommentCount = e.CommentCount
		view.ViewerHasLiked = e.ViewerHasLiked
	}

	return view
}

func (s *Server) likePost(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	post, err := s.queries.GetPost(r.Context(), id)
	if err != nil {
		log.Errorf("Error fetching post %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if post == nil {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	created, err := s.queries.CreateLike(r.Context(), viewerID, id)
	if err != nil {
		log.Errorf("Error liking post %s by user %s: %v", id, viewerID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if created {
		s.notify(r, post.AuthorID, viewerID, models.NotificationLike, &post.ID)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unlikePost(w http.ResponseWriter, r *http.Request, viewerID string) {
	id := r.PathValue("id")
	if !utils.IsValidID(id) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	if _, err := s.queries.DeleteLike(r.Context(), viewerID, id); err != nil {
		log.Errorf("Error unliking post %s by user %s: %v", id, viewerID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
