package queries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"social/storage/models"
)

// CreateLike inserts a like for (userID, postID). Returns false when the
// like already existed; liking twice is a no-op.
func (q *Queries) CreateLike(ctx context.Context, userID string, postID string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`INSERT INTO likes (user_id, post_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userID,
		postID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) DeleteLike(ctx context.Context, userID string, postID string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`,
		userID,
		postID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) CreateComment(ctx context.Context, comment models.Comment) error {
	_, err := q.pool.Exec(
		ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	)
	return err
}

// GetComment returns nil when the comment does not exist.
func (q *Queries) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	row := q.pool.QueryRow(
		ctx,
		`SELECT id, post_id, author_id, content, created_at
		 FROM comments WHERE id = $1`,
		id,
	)

	var comment models.Comment
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment when the viewer authored either the
// comment or the post it hangs on.
func (q *Queries) DeleteComment(ctx context.Context, id string, viewerID string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`DELETE FROM comments
		 WHERE id = $1
		   AND (author_id = $2
		        OR EXISTS (SELECT 1 FROM posts p WHERE p.id = comments.post_id AND p.author_id = $2))`,
		id,
		viewerID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListComments pages through a post's comments, newest first, using the
// same keyset order as the feed. before may be nil.
func (q *Queries) ListComments(ctx context.Context, postID string, before *models.Comment, limit int) ([]models.Comment, error) {
	var rows pgx.Rows
	var err error

	if before == nil {
		rows, err = q.pool.Query(
			ctx,
			`SELECT id, post_id, author_id, content, created_at
			 FROM comments
			 WHERE post_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			postID,
			limit,
		)
	} else {
		rows, err = q.pool.Query(
			ctx,
			`SELECT id, post_id, author_id, content, created_at
			 FROM comments
			 WHERE post_id = $1
			   AND (created_at, id) < ($2::timestamptz, $3::uuid)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			postID,
			before.CreatedAt,
			before.ID,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0, limit)
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.Content,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
