package models

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	Bio          string
	CreatedAt    time.Time
}

// Profile is the public view of a user, decorated with aggregate counts
// and the viewer's follow state.
type Profile struct {
	ID                string `json:"id"`
	Name              string `json:"displayName"`
	AvatarURL         string `json:"avatarUrl"`
	Bio               string `json:"bio"`
	FollowersCount    int64  `json:"followersCount"`
	FollowingCount    int64  `json:"followingCount"`
	PostsCount        int64  `json:"postsCount"`
	ViewerIsFollowing bool   `json:"viewerIsFollowing"`
	IsOnline          bool   `json:"isOnline"`
}
