package feeds

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"social/storage/models"
	"social/utils"
)

const (
	MinLimit     = 1
	MaxLimit     = 50
	DefaultLimit = 20
)

type QueryParams struct {
	Cursor string
	Limit  int
}

// Feed assembles pages of reverse-chronological timelines. A page request
// is stateless: resolve the follow set, window on the cursor, decorate,
// and cache the first page.
type Feed struct {
	store Store
	cache Cache
}

func New(store Store, cache Cache) *Feed {
	return &Feed{
		store: store,
		cache: cache,
	}
}

// GetTimeline produces one page of the viewer's home feed: posts authored
// by followed users and by the viewer, newest first.
func (f *Feed) GetTimeline(ctx context.Context, viewerID string, params QueryParams) (Response, error) {
	limit := clampLimit(params.Limit)

	// Cursor-less requests are the hot path; try the cache first. Any
	// cursor bypasses it entirely.
	if params.Cursor == "" && f.cache != nil {
		if payload, ok := f.cache.GetFirstPage(ctx, viewerID, limit); ok {
			var resp Response
			if err := json.Unmarshal(payload, &resp); err == nil {
				return resp, nil
			} else {
				log.Errorf("Error unmarshalling cached feed page for %s: %v", viewerID, err)
			}
		}
	}

	following, err := f.store.GetFollowing(ctx, viewerID)
	if err != nil {
		return Response{}, err
	}
	// Own posts appear in one's own feed.
	authorIDs := append(following, viewerID)

	resp, err := f.assemble(ctx, viewerID, authorIDs, params.Cursor, limit)
	if err != nil {
		return Response{}, err
	}

	if params.Cursor == "" && f.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			f.cache.SetFirstPage(ctx, viewerID, limit, payload)
		}
	}
	return resp, nil
}

// GetUserTimeline pages a single author's posts with the same cursor
// machinery as the home feed. Author timelines are not cached.
func (f *Feed) GetUserTimeline(ctx context.Context, viewerID string, authorID string, params QueryParams) (Response, error) {
	return f.assemble(ctx, viewerID, []string{authorID}, params.Cursor, clampLimit(params.Limit))
}

func (f *Feed) assemble(
	ctx context.Context,
	viewerID string,
	authorIDs []string,
	cursor string,
	limit int,
) (Response, error) {
	var before *models.Post
	if cursor != "" {
		// A cursor that parses but references no post means the client
		// holds stale state; there is nothing older than an unknown post,
		// so the page is empty rather than an error.
		if !utils.IsValidID(cursor) {
			return emptyResponse(), nil
		}
		cursorPost, err := f.store.GetPost(ctx, cursor)
		if err != nil {
			return Response{}, err
		}
		if cursorPost == nil {
			return emptyResponse(), nil
		}
		before = cursorPost
	}

	// Fetch one row past the limit to learn whether a next page exists.
	posts, err := f.store.ListTimeline(ctx, authorIDs, before, limit+1)
	if err != nil {
		return Response{}, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	var nextCursor *string
	if hasMore {
		cursor := posts[len(posts)-1].ID
		nextCursor = &cursor
	}

	return Response{
		Posts: f.decorate(ctx, viewerID, posts),
		Pagination: Pagination{
			HasMore:    hasMore,
			NextCursor: nextCursor,
		},
	}, nil
}

// decorate attaches author summaries and engagement data to a page. It
// never changes the set or order of posts, and a failing lookup degrades
// to zero counts rather than failing the page.
func (f *Feed) decorate(ctx context.Context, viewerID string, posts []models.Post) []PostView {
	postIDs := make([]string, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seenAuthors := make(map[string]bool, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
		if !seenAuthors[post.AuthorID] {
			seenAuthors[post.AuthorID] = true
			authorIDs = append(authorIDs, post.AuthorID)
		}
	}

	var authors map[string]models.User
	var engagement map[string]models.Engagement
	if len(posts) > 0 {
		var err error
		authors, err = f.store.GetUserSummaries(ctx, authorIDs)
		if err != nil {
			log.Errorf("Error fetching author summaries for viewer %s: %v", viewerID, err)
		}
		engagement, err = f.store.GetEngagement(ctx, postIDs, viewerID)
		if err != nil {
			log.Errorf("Error fetching engagement for viewer %s: %v", viewerID, err)
		}
	}

	views := make([]PostView, len(posts))
	for i, post := range posts {
		author := authors[post.AuthorID]
		e := engagement[post.ID]
		views[i] = PostView{
			ID:        post.ID,
			Content:   post.Content,
			MediaURL:  post.MediaURL,
			CreatedAt: post.CreatedAt,
			Author: AuthorSummary{
				ID:        post.AuthorID,
				Name:      author.Name,
				AvatarURL: author.AvatarURL,
			},
			LikeCount:      e.LikeCount,
			CommentCount:   e.CommentCount,
			ViewerHasLiked: e.ViewerHasLiked,
		}
	}
	return views
}

func clampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func emptyResponse() Response {
	return Response{
		Posts:      make([]PostView, 0),
		Pagination: Pagination{HasMore: false, NextCursor: nil},
	}
}
