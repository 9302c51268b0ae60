package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/models"
	"blog/internal/storage"
)

// Fixtures are built per test case so no state leaks between tests.

func seedUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &models.User{
		Username:     username,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return u
}

func seedGroup(t *testing.T, s *Store, title, slug string) *models.Group {
	t.Helper()
	g, err := s.CreateGroup(context.Background(), &models.Group{
		Title:       title,
		Slug:        slug,
		Description: "about " + title,
	})
	require.NoError(t, err)
	return g
}

func seedPost(t *testing.T, s *Store, author *models.User, text string, group *models.Group, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID, CreatedAt: at}
	if group != nil {
		p.GroupID = &group.ID
	}
	created, err := s.CreatePost(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestListPostsNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	base := time.Now().Add(-time.Hour)

	seedPost(t, s, hanson, "oldest", nil, base)
	seedPost(t, s, hanson, "newest", nil, base.Add(2*time.Minute))
	seedPost(t, s, hanson, "middle", nil, base.Add(time.Minute))

	posts, err := s.ListPosts(ctx, storage.All())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "newest", posts[0].Text)
	assert.Equal(t, "middle", posts[1].Text)
	assert.Equal(t, "oldest", posts[2].Text)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}
}

func TestListPostsTieBrokenByIDDescending(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	at := time.Now()

	first := seedPost(t, s, hanson, "first", nil, at)
	second := seedPost(t, s, hanson, "second", nil, at)

	posts, err := s.ListPosts(ctx, storage.All())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestListPostsByGroup(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	sailors := seedGroup(t, s, "Sailors", "sailors")
	other := seedGroup(t, s, "Other", "other")
	base := time.Now().Add(-time.Hour)

	seedPost(t, s, hanson, "in sailors", sailors, base)
	seedPost(t, s, hanson, "in other", other, base.Add(time.Minute))
	seedPost(t, s, hanson, "no group", nil, base.Add(2*time.Minute))

	posts, err := s.ListPosts(ctx, storage.ByGroup("sailors"))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "in sailors", posts[0].Text)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "sailors", posts[0].Group.Slug)
}

func TestListPostsByGroupUnknownSlug(t *testing.T) {
	s := New()
	seedUser(t, s, "hanson")

	_, err := s.ListPosts(context.Background(), storage.ByGroup("no-such-group"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPostsByAuthor(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	tom := seedUser(t, s, "tom")
	base := time.Now().Add(-time.Hour)

	seedPost(t, s, hanson, "by hanson", nil, base)
	seedPost(t, s, tom, "by tom", nil, base.Add(time.Minute))

	posts, err := s.ListPosts(ctx, storage.ByAuthor("hanson"))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "by hanson", posts[0].Text)
	assert.Equal(t, "hanson", posts[0].Author)

	_, err = s.ListPosts(ctx, storage.ByAuthor("nobody"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPostsCombinedScope(t *testing.T) {
	// Both filters set means both apply; the same contract holds for
	// every Store implementation.
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	tom := seedUser(t, s, "tom")
	sailors := seedGroup(t, s, "Sailors", "sailors")
	other := seedGroup(t, s, "Other", "other")
	base := time.Now().Add(-time.Hour)

	seedPost(t, s, hanson, "hanson in sailors", sailors, base)
	seedPost(t, s, hanson, "hanson in other", other, base.Add(time.Minute))
	seedPost(t, s, tom, "tom in sailors", sailors, base.Add(2*time.Minute))

	posts, err := s.ListPosts(ctx, storage.Scope{GroupSlug: "sailors", Author: "hanson"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hanson in sailors", posts[0].Text)

	_, err = s.ListPosts(ctx, storage.Scope{GroupSlug: "sailors", Author: "nobody"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewPostLeadsItsGroupFeedOnly(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	sailors := seedGroup(t, s, "Sailors", "sailors")
	other := seedGroup(t, s, "Other", "other")
	base := time.Now().Add(-time.Hour)

	seedPost(t, s, hanson, "earlier sailors post", sailors, base)
	seedPost(t, s, hanson, "earlier other post", other, base.Add(time.Minute))
	fresh := seedPost(t, s, hanson, "fresh", sailors, base.Add(2*time.Minute))

	sailorsPosts, err := s.ListPosts(ctx, storage.ByGroup("sailors"))
	require.NoError(t, err)
	require.NotEmpty(t, sailorsPosts)
	assert.Equal(t, fresh.ID, sailorsPosts[0].ID)

	otherPosts, err := s.ListPosts(ctx, storage.ByGroup("other"))
	require.NoError(t, err)
	for _, p := range otherPosts {
		assert.NotEqual(t, fresh.ID, p.ID)
	}
}

func TestUpdatePostKeepsAuthorAndTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	group := seedGroup(t, s, "Группа", "group_slug")

	post := seedPost(t, s, hanson, "Мой первый пост", nil, time.Time{})

	updated, err := s.UpdatePost(ctx, post.ID, "забыл добавить группу", &group.ID)
	require.NoError(t, err)

	assert.Equal(t, "забыл добавить группу", updated.Text)
	require.NotNil(t, updated.GroupID)
	assert.Equal(t, group.ID, *updated.GroupID)
	assert.Equal(t, post.AuthorID, updated.AuthorID)
	assert.True(t, post.CreatedAt.Equal(updated.CreatedAt))

	reloaded, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "забыл добавить группу", reloaded.Text)
	require.NotNil(t, reloaded.Group)
	assert.Equal(t, "group_slug", reloaded.Group.Slug)
}

func TestUpdatePostCanClearGroup(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	group := seedGroup(t, s, "Группа", "group_slug")

	post := seedPost(t, s, hanson, "with group", group, time.Time{})

	updated, err := s.UpdatePost(ctx, post.ID, "without group", nil)
	require.NoError(t, err)
	assert.Nil(t, updated.GroupID)
	assert.Nil(t, updated.Group)
}

func TestGetPostJoinsAuthorAndGroup(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	group := seedGroup(t, s, "Группа", "group_slug")

	post := seedPost(t, s, hanson, "text", group, time.Time{})

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hanson", got.Author)
	require.NotNil(t, got.Group)
	assert.Equal(t, "Группа", got.Group.Title)

	_, err = s.GetPost(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := New()
	seedUser(t, s, "hanson")

	_, err := s.CreateUser(context.Background(), &models.User{Username: "hanson", PasswordHash: "x"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestReadsReturnOwnedCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	hanson := seedUser(t, s, "hanson")
	post := seedPost(t, s, hanson, "original", nil, time.Time{})

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	got.Text = "mutated by caller"

	again, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}
