package feeds

import (
	"context"

	"social/storage/models"
)

// Store is the persistent backend the assembler reads from. Implemented
// by the queries package; tests substitute an in-memory fake.
type Store interface {
	// GetFollowing resolves the followee ids of a user.
	GetFollowing(ctx context.Context, userID string) ([]string, error)

	// GetPost returns nil when the post does not exist.
	GetPost(ctx context.Context, id string) (*models.Post, error)

	// ListTimeline returns up to limit posts authored by the given set,
	// ordered by (created_at DESC, id DESC), strictly older than before
	// when before is non-nil.
	ListTimeline(ctx context.Context, authorIDs []string, before *models.Post, limit int) ([]models.Post, error)

	// GetUserSummaries batch-fetches public author fields keyed by id.
	GetUserSummaries(ctx context.Context, ids []string) (map[string]models.User, error)

	// GetEngagement returns per-post counters and the viewer's like state.
	GetEngagement(ctx context.Context, postIDs []string, viewerID string) (map[string]models.Engagement, error)
}

// Cache holds serialized first pages. Implementations swallow their own
// errors: a failed get is a miss, a failed set is a no-op.
type Cache interface {
	GetFirstPage(ctx context.Context, viewerID string, limit int) ([]byte, bool)
	SetFirstPage(ctx context.Context, viewerID string, limit int, payload []byte)
}
