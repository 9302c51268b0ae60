package models

import "time"

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

// Post is authored content, optionally assigned to a group.
// Author and Group are filled from the owning records on read.
type Post struct {
	ID        int64
	Text      string
	AuthorID  int64
	Author    string
	GroupID   *int64
	Group     *Group
	CreatedAt time.Time
}
