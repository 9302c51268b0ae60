package storage

import (
	"context"
	"errors"

	"blog/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Scope filters a post listing. The zero value selects every post.
type Scope struct {
	GroupSlug string
	Author    string
}

func All() Scope { return Scope{} }

func ByGroup(slug string) Scope { return Scope{GroupSlug: slug} }

func ByAuthor(username string) Scope { return Scope{Author: username} }

// Store is the contract both the in-memory and the Postgres
// implementations satisfy. Listings are ordered newest first,
// ties broken by id descending.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error

	CreateGroup(ctx context.Context, g *models.Group) (*models.Group, error)
	GetGroupByID(ctx context.Context, id int64) (*models.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)

	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, text string, groupID *int64) (*models.Post, error)
	ListPosts(ctx context.Context, scope Scope) ([]*models.Post, error)
}
