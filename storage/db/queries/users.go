package queries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"social/storage/models"
)

var ErrDuplicateEmail = errors.New("email already registered")

func (q *Queries) CreateUser(ctx context.Context, user models.User) error {
	_, err := q.pool.Exec(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar_url, bio, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.Bio,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// isUniqueViolation reports whether err carries a Postgres unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetUserByEmail returns nil when no user carries the email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := q.pool.QueryRow(
		ctx,
		`SELECT id, name, email, password_hash, avatar_url, bio, created_at
		 FROM users WHERE email = $1`,
		email,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := q.pool.QueryRow(
		ctx,
		`SELECT id, name, email, password_hash, avatar_url, bio, created_at
		 FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// GetUserSummaries batch-fetches the public fields of the given users,
// keyed by id. Missing ids are absent from the result.
func (q *Queries) GetUserSummaries(ctx context.Context, ids []string) (map[string]models.User, error) {
	rows, err := q.pool.Query(
		ctx,
		`SELECT id, name, avatar_url FROM users WHERE id = ANY($1::uuid[])`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[string]models.User, len(ids))
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.AvatarURL); err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// GetProfile returns the public profile of a user decorated with aggregate
// counts and the viewer's follow state, or nil when the user is unknown.
func (q *Queries) GetProfile(ctx context.Context, userID string, viewerID string) (*models.Profile, error) {
	row := q.pool.QueryRow(
		ctx,
		`SELECT u.id, u.name, u.avatar_url, u.bio,
		        (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id),
		        (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id),
		        (SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id),
		        EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = $2 AND f.followee_id = u.id)
		 FROM users u WHERE u.id = $1`,
		userID,
		viewerID,
	)

	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.FollowersCount,
		&profile.FollowingCount,
		&profile.PostsCount,
		&profile.ViewerIsFollowing,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.Bio,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
