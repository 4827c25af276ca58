package queries

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"social/storage/models"
)

// CreateFollow inserts a follow edge. Returns false when the edge already
// existed; the operation is idempotent.
func (q *Queries) CreateFollow(ctx context.Context, followerID string, followeeID string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`INSERT INTO follows (follower_id, followee_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		followerID,
		followeeID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) DeleteFollow(ctx context.Context, followerID string, followeeID string) (bool, error) {
	tag, err := q.pool.Exec(
		ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID,
		followeeID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetFollowing resolves the follow set of a user: every followee id.
func (q *Queries) GetFollowing(ctx context.Context, userID string) ([]string, error) {
	rows, err := q.pool.Query(
		ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListFollowers pages through the users following userID, newest edge
// first. The bound is the (created_at, listed user id) pair of the oldest
// edge already seen, mirroring the compound keyset the post lists use so
// edges sharing a timestamp cannot be skipped; a zero before means no
// bound.
func (q *Queries) ListFollowers(ctx context.Context, userID string, before time.Time, beforeID string, limit int) ([]models.User, []time.Time, error) {
	return q.listFollowEdges(ctx, userID, before, beforeID, limit, "follower_id", "followee_id")
}

// ListFollowing pages through the users userID follows.
func (q *Queries) ListFollowing(ctx context.Context, userID string, before time.Time, beforeID string, limit int) ([]models.User, []time.Time, error) {
	return q.listFollowEdges(ctx, userID, before, beforeID, limit, "followee_id", "follower_id")
}

// GetFollowedSet reports which of the given users the viewer follows.
func (q *Queries) GetFollowedSet(ctx context.Context, viewerID string, ids []string) (map[string]bool, error) {
	rows, err := q.pool.Query(
		ctx,
		`SELECT followee_id FROM follows
		 WHERE follower_id = $1 AND followee_id = ANY($2::uuid[])`,
		viewerID,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followed := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		followed[id] = true
	}
	return followed, rows.Err()
}

func (q *Queries) listFollowEdges(
	ctx context.Context,
	userID string,
	before time.Time,
	beforeID string,
	limit int,
	selectColumn string,
	whereColumn string,
) ([]models.User, []time.Time, error) {
	var rows pgx.Rows
	var err error

	if before.IsZero() {
		rows, err = q.pool.Query(
			ctx,
			`SELECT u.id, u.name, u.avatar_url, f.created_at
			 FROM follows f JOIN users u ON u.id = f.`+selectColumn+`
			 WHERE f.`+whereColumn+` = $1
			 ORDER BY f.created_at DESC, f.`+selectColumn+` DESC
			 LIMIT $2`,
			userID,
			limit,
		)
	} else {
		rows, err = q.pool.Query(
			ctx,
			`SELECT u.id, u.name, u.avatar_url, f.created_at
			 FROM follows f JOIN users u ON u.id = f.`+selectColumn+`
			 WHERE f.`+whereColumn+` = $1
			   AND (f.created_at, f.`+selectColumn+`) < ($2::timestamptz, $3::uuid)
			 ORDER BY f.created_at DESC, f.`+selectColumn+` DESC
			 LIMIT $4`,
			userID,
			before,
			beforeID,
			limit,
		)
	}
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var users []models.User
	var edgeTimes []time.Time
	for rows.Next() {
		var user models.User
		var createdAt time.Time
		if err := rows.Scan(&user.ID, &user.Name, &user.AvatarURL, &createdAt); err != nil {
			return nil, nil, err
		}
		users = append(users, user)
		edgeTimes = append(edgeTimes, createdAt)
	}
	return users, edgeTimes, rows.Err()
}
