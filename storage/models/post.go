package models

import "time"

type Post struct {
	ID        string
	AuthorID  string
	Content   string
	MediaURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Engagement holds the derived per-post counters attached during feed
// decoration. It is computed from child rows, never stored.
type Engagement struct {
	LikeCount      int64
	CommentCount   int64
	ViewerHasLiked bool
}
