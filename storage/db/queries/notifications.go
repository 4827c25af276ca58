package queries

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"social/storage/models"
)

func (q *Queries) CreateNotification(ctx context.Context, n models.Notification) error {
	_, err := q.pool.Exec(
		ctx,
		`INSERT INTO notifications (id, recipient_id, actor_id, kind, post_id, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID,
		n.RecipientID,
		n.ActorID,
		n.Kind,
		n.PostID,
		n.Read,
		n.CreatedAt,
	)
	return err
}

// GetNotification returns nil when the notification does not exist.
func (q *Queries) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	row := q.pool.QueryRow(
		ctx,
		`SELECT id, recipient_id, actor_id, kind, post_id, read, created_at
		 FROM notifications WHERE id = $1`,
		id,
	)

	var n models.Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Kind, &n.PostID, &n.Read, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications pages through a user's notifications, newest first.
// before may be nil.
func (q *Queries) ListNotifications(ctx context.Context, recipientID string, before *models.Notification, limit int) ([]models.Notification, error) {
	var rows pgx.Rows
	var err error

	if before == nil {
		rows, err = q.pool.Query(
			ctx,
			`SELECT id, recipient_id, actor_id, kind, post_id, read, created_at
			 FROM notifications
			 WHERE recipient_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			recipientID,
			limit,
		)
	} else {
		rows, err = q.pool.Query(
			ctx,
			`SELECT id, recipient_id, actor_id, kind, post_id, read, created_at
			 FROM notifications
			 WHERE recipient_id = $1
			   AND (created_at, id) < ($2::timestamptz, $3::uuid)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			recipientID,
			before.CreatedAt,
			before.ID,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0, limit)
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Kind, &n.PostID, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (q *Queries) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error) {
	tag, err := q.pool.Exec(
		ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`,
		recipientID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteOldNotifications drops read notifications older than the bound.
func (q *Queries) DeleteOldNotifications(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := q.pool.Exec(
		ctx,
		`DELETE FROM notifications WHERE read AND created_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
