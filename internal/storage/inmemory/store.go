package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog/internal/models"
	"blog/internal/storage"
)

// Store keeps every record in maps guarded by one RWMutex. It backs the
// test suite and the development server; reads hand out copies so callers
// never share memory with the store.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]*models.User
	sessions map[string]*models.Session
	groups   map[int64]*models.Group
	posts    map[int64]*models.Post

	nextUserID  int64
	nextGroupID int64
	nextPostID  int64
}

func New() *Store {
	return &Store{
		users:    make(map[int64]*models.User),
		sessions: make(map[string]*models.Session),
		groups:   make(map[int64]*models.Group),
		posts:    make(map[int64]*models.Post),
	}
}

// === Users ===

func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, storage.ErrAlreadyExists
		}
	}

	s.nextUserID++
	stored := *u
	stored.ID = s.nextUserID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

// === Sessions ===

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *sess
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.sessions[stored.ID] = &stored
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *sess
	return &out, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// === Groups ===

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.groups {
		if existing.Slug == g.Slug {
			return nil, storage.ErrAlreadyExists
		}
	}

	s.nextGroupID++
	stored := *g
	stored.ID = s.nextGroupID
	s.groups[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *Store) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.Slug == slug {
			out := *g
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		gc := *g
		out = append(out, &gc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// === Posts ===

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.AuthorID]; !ok {
		return nil, storage.ErrNotFound
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return nil, storage.ErrNotFound
		}
	}

	s.nextPostID++
	stored := models.Post{
		ID:        s.nextPostID,
		Text:      p.Text,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	if p.GroupID != nil {
		gid := *p.GroupID
		stored.GroupID = &gid
	}
	s.posts[stored.ID] = &stored

	return s.postView(&stored), nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.postView(p), nil
}

// UpdatePost changes text and group assignment in place. Author and
// creation timestamp are never touched.
func (s *Store) UpdatePost(ctx context.Context, id int64, text string, groupID *int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if groupID != nil {
		if _, ok := s.groups[*groupID]; !ok {
			return nil, storage.ErrNotFound
		}
		gid := *groupID
		p.GroupID = &gid
	} else {
		p.GroupID = nil
	}
	p.Text = text

	return s.postView(p), nil
}

func (s *Store) ListPosts(ctx context.Context, scope storage.Scope) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groupID int64
	if scope.GroupSlug != "" {
		found := false
		for _, g := range s.groups {
			if g.Slug == scope.GroupSlug {
				groupID, found = g.ID, true
				break
			}
		}
		if !found {
			return nil, storage.ErrNotFound
		}
	}

	var authorID int64
	if scope.Author != "" {
		found := false
		for _, u := range s.users {
			if u.Username == scope.Author {
				authorID, found = u.ID, true
				break
			}
		}
		if !found {
			return nil, storage.ErrNotFound
		}
	}

	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if scope.GroupSlug != "" && (p.GroupID == nil || *p.GroupID != groupID) {
			continue
		}
		if scope.Author != "" && p.AuthorID != authorID {
			continue
		}
		out = append(out, s.postView(p))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// postView copies a stored post and joins the author username and group
// record. Callers must hold at least the read lock.
func (s *Store) postView(p *models.Post) *models.Post {
	out := *p
	if u, ok := s.users[p.AuthorID]; ok {
		out.Author = u.Username
	}
	if p.GroupID != nil {
		gid := *p.GroupID
		out.GroupID = &gid
		if g, ok := s.groups[gid]; ok {
			gc := *g
			out.Group = &gc
		}
	}
	return &out
}
