package queries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"social/storage/models"
)

func (q *Queries) CreatePost(ctx context.Context, post models.Post) error {
	_, err := q.pool.Exec(
		ctx,
		`INSERT INTO posts (id, author_id, content, media_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.MediaURL,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return err
}

// GetPost returns nil when the post does not exist.
func (q *Queries) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := q.pool.QueryRow(
		ctx,
		`SELECT id, author_id, content, media_url, created_at, updated_at
		 FROM posts WHERE id = $1`,
		id,
	)

	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Content,
		&post.MediaURL,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost changes content and media of a post, restricted to its author.
// Returns false when no row matched.
func (q *Queries) UpdatePost(ctx context.Context, id string, authorID string, content string, mediaURL *string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`UPDATE posts SET content = $3, media_url = $4, updated_at = now()
		 WHERE id = $1 AND author_id = $2`,
		id,
		authorID,
		content,
		mediaURL,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeletePost removes a post, restricted to its author. Likes, comments and
// notifications referencing it go with it by cascade.
func (q *Queries) DeletePost(ctx context.Context, id string, authorID string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`DELETE FROM posts WHERE id = $1 AND author_id = $2`,
		id,
		authorID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListTimeline returns up to limit posts authored by the given set, ordered
// by (created_at DESC, id DESC). When before is non-nil only posts strictly
// older than it under that order are returned.
func (q *Queries) ListTimeline(ctx context.Context, authorIDs []string, before *models.Post, limit int) ([]models.Post, error) {
	var rows pgx.Rows
	var err error

	if before == nil {
		rows, err = q.pool.Query(
			ctx,
			`SELECT id, author_id, content, media_url, created_at, updated_at
			 FROM posts
			 WHERE author_id = ANY($1::uuid[])
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			authorIDs,
			limit,
		)
	} else {
		rows, err = q.pool.Query(
			ctx,
			`SELECT id, author_id, content, media_url, created_at, updated_at
			 FROM posts
			 WHERE author_id = ANY($1::uuid[])
			   AND (created_at, id) < ($2::timestamptz, $3::uuid)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			authorIDs,
			before.CreatedAt,
			before.ID,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		var post models.Post
		err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Content,
			&post.MediaURL,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetEngagement returns like count, comment count and the viewer's like
// state for every given post id in a single aggregate query.
func (q *Queries) GetEngagement(ctx context.Context, postIDs []string, viewerID string) (map[string]models.Engagement, error) {
	rows, err := q.pool.Query(
		ctx,
		`SELECT p.id,
		        (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		        (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		        EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $2)
		 FROM posts p
		 WHERE p.id = ANY($1::uuid[])`,
		postIDs,
		viewerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	engagement := make(map[string]models.Engagement, len(postIDs))
	for rows.Next() {
		var id string
		var e models.Engagement
		if err := rows.Scan(&id, &e.LikeCount, &e.CommentCount, &e.ViewerHasLiked); err != nil {
			return nil, err
		}
		engagement[id] = e
	}
	return engagement, rows.Err()
}
