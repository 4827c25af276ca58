package feeds

import "time"

type Response struct {
	Posts      []PostView `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor"`
}

type PostView struct {
	ID             string        `json:"id"`
	Content        string        `json:"content"`
	MediaURL       *string       `json:"mediaUrl,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	Author         AuthorSummary `json:"author"`
	LikeCount      int64         `json:"likeCount"`
	CommentCount   int64         `json:"commentCount"`
	ViewerHasLiked bool          `json:"viewerHasLiked"`
}

type AuthorSummary struct {
	ID        string `json:"id"`
	Name      string `json:"displayName"`
	AvatarURL string `json:"avatarUrl"`
}
