package models

import "time"

type Like struct {
	UserID    string
	PostID    string
	CreatedAt time.Time
}

type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
