package feeds

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social/storage/models"
)

type fakeStore struct {
	follows  map[string][]string
	posts    []models.Post
	users    map[string]models.User
	likes    map[string]map[string]bool
	comments map[string]int

	failEngagement bool
	timelineCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		follows:  make(map[string][]string),
		users:    make(map[string]models.User),
		likes:    make(map[string]map[string]bool),
		comments: make(map[string]int),
	}
}

func (s *fakeStore) GetFollowing(_ context.Context, userID string) ([]string, error) {
	return s.follows[userID], nil
}

func (s *fakeStore) GetPost(_ context.Context, id string) (*models.Post, error) {
	for _, post := range s.posts {
		if post.ID == id {
			p := post
			return &p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListTimeline(_ context.Context, authorIDs []string, before *models.Post, limit int) ([]models.Post, error) {
	s.timelineCalls++

	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}

	var matched []models.Post
	for _, post := range s.posts {
		if !authors[post.AuthorID] {
			continue
		}
		if before != nil {
			older := post.CreatedAt.Before(before.CreatedAt) ||
				(post.CreatedAt.Equal(before.CreatedAt) && post.ID < before.ID)
			if !older {
				continue
			}
		}
		matched = append(matched, post)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *fakeStore) GetUserSummaries(_ context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

func (s *fakeStore) GetEngagement(_ context.Context, postIDs []string, viewerID string) (map[string]models.Engagement, error) {
	if s.failEngagement {
		return nil, errors.New("engagement backend down")
	}
	result := make(map[string]models.Engagement, len(postIDs))
	for _, id := range postIDs {
		result[id] = models.Engagement{
			LikeCount:      int64(len(s.likes[id])),
			CommentCount:   int64(s.comments[id]),
			ViewerHasLiked: s.likes[id][viewerID],
		}
	}
	return result, nil
}

type fakeCache struct {
	entries map[string][]byte
	gets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) key(viewerID string, limit int) string {
	return fmt.Sprintf("%s__%d", viewerID, limit)
}

func (c *fakeCache) GetFirstPage(_ context.Context, viewerID string, limit int) ([]byte, bool) {
	c.gets++
	payload, ok := c.entries[c.key(viewerID, limit)]
	if ok {
		c.hits++
	}
	return payload, ok
}

func (c *fakeCache) SetFirstPage(_ context.Context, viewerID string, limit int, payload []byte) {
	c.entries[c.key(viewerID, limit)] = payload
}

// testID builds a valid, deterministic UUID whose lexicographic order
// follows n.
func testID(n int) string {
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", n)
}

func makePost(n int, authorID string, createdAt time.Time) models.Post {
	return models.Post{
		ID:        testID(n),
		AuthorID:  authorID,
		Content:   fmt.Sprintf("post %d", n),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

var (
	viewer = testID(900)
	userB  = testID(901)
	userC  = testID(902)
	t0     = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newScenarioStore() *fakeStore {
	store := newFakeStore()
	store.follows[viewer] = []string{userB, userC}
	store.users[viewer] = models.User{ID: viewer, Name: "Ada"}
	store.users[userB] = models.User{ID: userB, Name: "Brian", AvatarURL: "http://cdn/b.png"}
	store.users[userC] = models.User{ID: userC, Name: "Clara"}

	// B has posts [b1@T3, b2@T1]; C has posts [c1@T2].
	store.posts = []models.Post{
		makePost(1, userB, t0.Add(1*time.Hour)), // b2@T1
		makePost(2, userC, t0.Add(2*time.Hour)), // c1@T2
		makePost(3, userB, t0.Add(3*time.Hour)), // b1@T3
	}
	return store
}

func postIDs(resp Response) []string {
	ids := make([]string, len(resp.Posts))
	for i, post := range resp.Posts {
		ids[i] = post.ID
	}
	return ids
}

func TestGetTimelineScenario(t *testing.T) {
	store := newScenarioStore()
	feed := New(store, nil)
	ctx := context.Background()

	first, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{testID(3), testID(2)}, postIDs(first))
	assert.True(t, first.Pagination.HasMore)
	require.NotNil(t, first.Pagination.NextCursor)
	assert.Equal(t, testID(2), *first.Pagination.NextCursor)

	second, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 2, Cursor: *first.Pagination.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{testID(1)}, postIDs(second))
	assert.False(t, second.Pagination.HasMore)
	assert.Nil(t, second.Pagination.NextCursor)
}

func TestGetTimelineDecoration(t *testing.T) {
	store := newScenarioStore()
	store.likes[testID(3)] = map[string]bool{viewer: true, userC: true}
	store.comments[testID(3)] = 4

	feed := New(store, nil)
	resp, err := feed.GetTimeline(context.Background(), viewer, QueryParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)

	post := resp.Posts[0]
	assert.Equal(t, testID(3), post.ID)
	assert.Equal(t, "Brian", post.Author.Name)
	assert.Equal(t, "http://cdn/b.png", post.Author.AvatarURL)
	assert.Equal(t, int64(2), post.LikeCount)
	assert.Equal(t, int64(4), post.CommentCount)
	assert.True(t, post.ViewerHasLiked)
}

func TestGetTimelineLikeToggle(t *testing.T) {
	store := newScenarioStore()
	feed := New(store, nil)
	ctx := context.Background()

	before, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, before.Posts, 1)
	assert.False(t, before.Posts[0].ViewerHasLiked)
	baseline := before.Posts[0].LikeCount

	store.likes[testID(3)] = map[string]bool{viewer: true}
	after, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 1})
	require.NoError(t, err)
	assert.True(t, after.Posts[0].ViewerHasLiked)
	assert.Equal(t, baseline+1, after.Posts[0].LikeCount)

	delete(store.likes, testID(3))
	reverted, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 1})
	require.NoError(t, err)
	assert.False(t, reverted.Posts[0].ViewerHasLiked)
	assert.Equal(t, baseline, reverted.Posts[0].LikeCount)
}

func TestGetTimelineIncludesOwnPosts(t *testing.T) {
	store := newScenarioStore()
	store.posts = append(store.posts, makePost(4, viewer, t0.Add(4*time.Hour)))

	feed := New(store, nil)
	resp, err := feed.GetTimeline(context.Background(), viewer, QueryParams{})
	require.NoError(t, err)
	assert.Contains(t, postIDs(resp), testID(4))
}

func TestGetTimelineCompleteness(t *testing.T) {
	store := newFakeStore()
	store.follows[viewer] = []string{userB, userC}
	expected := make(map[string]bool)
	for i := 0; i < 23; i++ {
		author := userB
		if i%3 == 0 {
			author = userC
		}
		post := makePost(i, author, t0.Add(time.Duration(i)*time.Minute))
		store.posts = append(store.posts, post)
		expected[post.ID] = true
	}
	// Posts by an unfollowed author must never surface.
	store.posts = append(store.posts, makePost(100, testID(903), t0.Add(5*time.Hour)))

	for _, limit := range []int{1, 4, 7, 50} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			feed := New(store, nil)
			ctx := context.Background()

			seen := make(map[string]bool)
			params := QueryParams{Limit: limit}
			for {
				resp, err := feed.GetTimeline(ctx, viewer, params)
				require.NoError(t, err)
				for _, post := range resp.Posts {
					assert.False(t, seen[post.ID], "post %s returned twice", post.ID)
					seen[post.ID] = true
				}
				if !resp.Pagination.HasMore {
					assert.Nil(t, resp.Pagination.NextCursor)
					break
				}
				require.NotNil(t, resp.Pagination.NextCursor)
				params.Cursor = *resp.Pagination.NextCursor
			}

			assert.Equal(t, len(expected), len(seen))
			for id := range expected {
				assert.True(t, seen[id], "post %s never returned", id)
			}
		})
	}
}

func TestGetTimelineOrdering(t *testing.T) {
	store := newFakeStore()
	store.follows[viewer] = []string{userB}
	// Two posts share a timestamp; ties break by id descending.
	sharedTime := t0.Add(time.Hour)
	store.posts = []models.Post{
		makePost(1, userB, t0),
		makePost(2, userB, sharedTime),
		makePost(3, userB, sharedTime),
		makePost(4, userB, t0.Add(2*time.Hour)),
	}

	feed := New(store, nil)
	resp, err := feed.GetTimeline(context.Background(), viewer, QueryParams{})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 4)

	for i := 1; i < len(resp.Posts); i++ {
		a, b := resp.Posts[i-1], resp.Posts[i]
		assert.False(t, a.CreatedAt.Before(b.CreatedAt))
		if a.CreatedAt.Equal(b.CreatedAt) {
			assert.Greater(t, a.ID, b.ID)
		}
	}
	assert.Equal(t, []string{testID(4), testID(3), testID(2), testID(1)}, postIDs(resp))
}

func TestGetTimelineCursorDeterminism(t *testing.T) {
	store := newScenarioStore()
	feed := New(store, nil)
	ctx := context.Background()

	params := QueryParams{Limit: 2, Cursor: testID(3)}
	first, err := feed.GetTimeline(ctx, viewer, params)
	require.NoError(t, err)
	second, err := feed.GetTimeline(ctx, viewer, params)
	require.NoError(t, err)

	assert.Equal(t, postIDs(first), postIDs(second))
}

func TestGetTimelineCacheTransparency(t *testing.T) {
	storeCached := newScenarioStore()
	storeUncached := newScenarioStore()

	cached := New(storeCached, newFakeCache())
	uncached := New(storeUncached, nil)
	ctx := context.Background()

	params := QueryParams{Limit: 2}
	for i := 0; i < 3; i++ {
		fromCached, err := cached.GetTimeline(ctx, viewer, params)
		require.NoError(t, err)
		fromUncached, err := uncached.GetTimeline(ctx, viewer, params)
		require.NoError(t, err)
		assert.Equal(t, fromUncached, fromCached)
	}
}

func TestGetTimelineCacheHitSkipsStore(t *testing.T) {
	store := newScenarioStore()
	pageCache := newFakeCache()
	feed := New(store, pageCache)
	ctx := context.Background()

	first, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, store.timelineCalls)

	second, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, store.timelineCalls, "cache hit must not query the store")
	assert.Equal(t, 1, pageCache.hits)
	assert.Equal(t, first, second)

	// Cursor requests always bypass the cache.
	_, err = feed.GetTimeline(ctx, viewer, QueryParams{Limit: 2, Cursor: testID(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, store.timelineCalls)
	assert.Equal(t, 2, pageCache.gets, "cursor request must not consult the cache")
}

func TestGetTimelineCacheKeyIncludesLimit(t *testing.T) {
	store := newScenarioStore()
	feed := New(store, newFakeCache())
	ctx := context.Background()

	wide, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 20})
	require.NoError(t, err)
	require.Len(t, wide.Posts, 3)

	narrow, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, narrow.Posts, 1)
}

func TestGetTimelineBoundaries(t *testing.T) {
	store := newScenarioStore()
	feed := New(store, nil)
	ctx := context.Background()

	t.Run("limit one", func(t *testing.T) {
		resp, err := feed.GetTimeline(ctx, viewer, QueryParams{Limit: 1})
		require.NoError(t, err)
		require.Len(t, resp.Posts, 1)
		assert.True(t, resp.Pagination.HasMore)
		require.NotNil(t, resp.Pagination.NextCursor)
		assert.Equal(t, resp.Posts[0].ID, *resp.Pagination.NextCursor)
	})

	t.Run("cursor at oldest post", func(t *testing.T) {
		resp, err := feed.GetTimeline(ctx, viewer, QueryParams{Cursor: testID(1)})
		require.NoError(t, err)
		assert.Empty(t, resp.Posts)
		assert.False(t, resp.Pagination.HasMore)
		assert.Nil(t, resp.Pagination.NextCursor)
	})

	t.Run("cursor referencing deleted post", func(t *testing.T) {
		resp, err := feed.GetTimeline(ctx, viewer, QueryParams{Cursor: testID(777)})
		require.NoError(t, err)
		assert.Empty(t, resp.Posts)
		assert.False(t, resp.Pagination.HasMore)
	})

	t.Run("malformed cursor", func(t *testing.T) {
		resp, err := feed.GetTimeline(ctx, viewer, QueryParams{Cursor: "not-a-post-id"})
		require.NoError(t, err)
		assert.Empty(t, resp.Posts)
		assert.False(t, resp.Pagination.HasMore)
	})
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"absent defaults", 0, DefaultLimit},
		{"below minimum", -5, MinLimit},
		{"above maximum", 500, MaxLimit},
		{"in range", 7, 7},
		{"at maximum", MaxLimit, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clampLimit(tt.limit))
		})
	}
}

func TestGetTimelineDecorationFailureDegrades(t *testing.T) {
	store := newScenarioStore()
	store.likes[testID(3)] = map[string]bool{viewer: true}
	store.failEngagement = true

	feed := New(store, nil)
	resp, err := feed.GetTimeline(context.Background(), viewer, QueryParams{Limit: 2})
	require.NoError(t, err, "decoration failure must not fail the page")
	require.Len(t, resp.Posts, 2)

	assert.Equal(t, []string{testID(3), testID(2)}, postIDs(resp))
	for _, post := range resp.Posts {
		assert.Zero(t, post.LikeCount)
		assert.Zero(t, post.CommentCount)
		assert.False(t, post.ViewerHasLiked)
	}
}

func TestGetUserTimeline(t *testing.T) {
	store := newScenarioStore()
	pageCache := newFakeCache()
	feed := New(store, pageCache)
	ctx := context.Background()

	resp, err := feed.GetUserTimeline(ctx, viewer, userB, QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{testID(3), testID(1)}, postIDs(resp))
	assert.Empty(t, pageCache.entries, "author timelines are not cached")
}
