package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"blog/internal/models"
	"blog/internal/storage"
)

const uniqueViolation = "23505"

// Store implements storage.Store on PostgreSQL through database/sql.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}

// === Users ===

func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	out := *u
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, u.Username, u.PasswordHash).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", mapErr(err))
	}
	return &out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// === Sessions ===

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, sess.ID, sess.UserID, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", mapErr(err))
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1
	`, id).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// === Groups ===

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) (*models.Group, error) {
	out := *g
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, g.Title, g.Slug, g.Description).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", mapErr(err))
	}
	return &out, nil
}

func (s *Store) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	return s.getGroup(ctx, `WHERE id = $1`, id)
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getGroup(ctx, `WHERE slug = $1`, slug)
}

func (s *Store) getGroup(ctx context.Context, where string, arg any) (*models.Group, error) {
	var g models.Group
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug, description FROM groups `+where, arg,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, description FROM groups ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// === Posts ===

const postColumns = `
	p.id, p.text, p.author_id, u.username, p.group_id, p.created_at,
	g.title, g.slug, g.description
`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id
`

func scanPost(scan func(dest ...any) error) (*models.Post, error) {
	var (
		p        models.Post
		groupID  sql.NullInt64
		gTitle   sql.NullString
		gSlug    sql.NullString
		gDescrip sql.NullString
	)
	err := scan(&p.ID, &p.Text, &p.AuthorID, &p.Author, &groupID, &p.CreatedAt,
		&gTitle, &gSlug, &gDescrip)
	if err != nil {
		return nil, err
	}
	if groupID.Valid {
		p.GroupID = &groupID.Int64
		p.Group = &models.Group{
			ID:          groupID.Int64,
			Title:       gTitle.String,
			Slug:        gSlug.String,
			Description: gDescrip.String,
		}
	}
	return &p, nil
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	var groupID sql.NullInt64
	if p.GroupID != nil {
		groupID = sql.NullInt64{Int64: *p.GroupID, Valid: true}
	}
	var createdAt sql.NullTime
	if !p.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: p.CreatedAt, Valid: true}
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (text, author_id, group_id, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		RETURNING id
	`, p.Text, p.AuthorID, groupID, createdAt).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", mapErr(err))
	}
	return s.GetPost(ctx, id)
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.id = $1`, id)
	post, err := scanPost(row.Scan)
	if err != nil {
		return nil, mapErr(err)
	}
	return post, nil
}

func (s *Store) UpdatePost(ctx context.Context, id int64, text string, groupID *int64) (*models.Post, error) {
	var gid sql.NullInt64
	if groupID != nil {
		gid = sql.NullInt64{Int64: *groupID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET text = $1, group_id = $2 WHERE id = $3
	`, text, gid, id)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", mapErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, storage.ErrNotFound
	}
	return s.GetPost(ctx, id)
}

func (s *Store) ListPosts(ctx context.Context, scope storage.Scope) ([]*models.Post, error) {
	var (
		conds []string
		args  []any
	)
	if scope.GroupSlug != "" {
		// Resolve the slug first so an unknown group is a not-found,
		// not an empty listing.
		if _, err := s.GetGroupBySlug(ctx, scope.GroupSlug); err != nil {
			return nil, err
		}
		args = append(args, scope.GroupSlug)
		conds = append(conds, fmt.Sprintf("g.slug = $%d", len(args)))
	}
	if scope.Author != "" {
		if _, err := s.GetUserByUsername(ctx, scope.Author); err != nil {
			return nil, err
		}
		args = append(args, scope.Author)
		conds = append(conds, fmt.Sprintf("u.username = $%d", len(args)))
	}
	var where string
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+postFrom+where+` ORDER BY p.created_at DESC, p.id DESC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, rows.Err()
}
