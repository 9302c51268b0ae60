package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"blog/internal/auth"
	"blog/internal/models"
	"blog/internal/pagination"
	"blog/internal/storage"
	"blog/internal/util"
)

// Typed view models, one per page.

type listPage struct {
	Title  string
	User   *models.User
	Group  *models.Group
	Author *models.User
	Posts  []*models.Post
	Page   pagination.Page
}

type detailPage struct {
	Title   string
	User    *models.User
	Post    *models.Post
	CanEdit bool
}

type formPage struct {
	Title  string
	User   *models.User
	Post   *models.Post
	Form   postForm
	Groups []*models.Group
}

type authPage struct {
	Title string
	User  *models.User
	Form  authForm
	Next  string
}

func sessionUser(r *http.Request) *models.User {
	u, _ := auth.UserFrom(r.Context())
	return u
}

func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ------------------------------------------------------------------
// Listings
// ------------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Store.ListPosts(r.Context(), storage.All())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	pagePosts, page := pagination.Paginate(posts, s.Cfg.PageSize, pageNumber(r))
	util.Render(w, "index.html", listPage{
		Title: "Latest posts",
		User:  sessionUser(r),
		Posts: pagePosts,
		Page:  page,
	})
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	group, err := s.Store.GetGroupBySlug(r.Context(), slug)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	posts, err := s.Store.ListPosts(r.Context(), storage.ByGroup(slug))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	pagePosts, page := pagination.Paginate(posts, s.Cfg.PageSize, pageNumber(r))
	util.Render(w, "group_list.html", listPage{
		Title: group.Title,
		User:  sessionUser(r),
		Group: group,
		Posts: pagePosts,
		Page:  page,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	author, err := s.Store.GetUserByUsername(r.Context(), username)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	posts, err := s.Store.ListPosts(r.Context(), storage.ByAuthor(username))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	pagePosts, page := pagination.Paginate(posts, s.Cfg.PageSize, pageNumber(r))
	util.Render(w, "profile.html", listPage{
		Title:  "Posts by " + author.Username,
		User:   sessionUser(r),
		Author: author,
		Posts:  pagePosts,
		Page:   page,
	})
}

// ------------------------------------------------------------------
// Post detail
// ------------------------------------------------------------------

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}

	user := sessionUser(r)
	util.Render(w, "post_detail.html", detailPage{
		Title:   "Post by " + post.Author,
		User:    user,
		Post:    post,
		CanEdit: user != nil && user.ID == post.AuthorID,
	})
}

func (s *Server) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	post, err := s.Store.GetPost(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return post, true
}

// ------------------------------------------------------------------
// Create
// ------------------------------------------------------------------

func (s *Server) handlePostCreateForm(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Store.ListGroups(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	util.Render(w, "post_form.html", formPage{
		Title:  "New post",
		User:   sessionUser(r),
		Groups: groups,
	})
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	user := sessionUser(r)

	var form postForm
	form.parse(r)
	groupID, ok := form.validate(r.Context(), s.Store)
	if !ok {
		s.renderPostForm(w, r, "New post", nil, form)
		return
	}

	post, err := s.Store.CreatePost(r.Context(), &models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  groupID,
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.Log.Infow("post created", "post_id", post.ID, "user_id", user.ID)
	http.Redirect(w, r, fmt.Sprintf("/posts/%d", post.ID), http.StatusSeeOther)
}

// ------------------------------------------------------------------
// Edit (author only)
// ------------------------------------------------------------------

// ownPost loads the requested post and enforces authorship. Non-authors
// are sent to the post's detail page without the form ever being shown.
func (s *Server) ownPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return nil, false
	}
	user := sessionUser(r)
	if user == nil || user.ID != post.AuthorID {
		http.Redirect(w, r, fmt.Sprintf("/posts/%d", post.ID), http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

func (s *Server) handlePostEditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := s.ownPost(w, r)
	if !ok {
		return
	}

	form := postForm{Text: post.Text}
	if post.GroupID != nil {
		form.GroupID = strconv.FormatInt(*post.GroupID, 10)
	}
	s.renderPostForm(w, r, "Edit post", post, form)
}

func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := s.ownPost(w, r)
	if !ok {
		return
	}

	var form postForm
	form.parse(r)
	groupID, valid := form.validate(r.Context(), s.Store)
	if !valid {
		s.renderPostForm(w, r, "Edit post", post, form)
		return
	}

	updated, err := s.Store.UpdatePost(r.Context(), post.ID, form.Text, groupID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.Log.Infow("post updated", "post_id", updated.ID, "user_id", post.AuthorID)
	http.Redirect(w, r, fmt.Sprintf("/posts/%d", updated.ID), http.StatusSeeOther)
}

func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, title string, post *models.Post, form postForm) {
	groups, err := s.Store.ListGroups(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	util.Render(w, "post_form.html", formPage{
		Title:  title,
		User:   sessionUser(r),
		Post:   post,
		Form:   form,
		Groups: groups,
	})
}

// ------------------------------------------------------------------
// Auth
// ------------------------------------------------------------------

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	util.Render(w, "auth_signup.html", authPage{Title: "Sign up", User: sessionUser(r)})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := authForm{Username: strings.TrimSpace(r.FormValue("username"))}

	_, err := s.Auth.Register(r.Context(), form.Username, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			form.fail("Username already taken")
		} else {
			form.fail(err.Error())
		}
		util.Render(w, "auth_signup.html", authPage{Title: "Sign up", Form: form})
		return
	}

	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	util.Render(w, "auth_login.html", authPage{
		Title: "Log in",
		User:  sessionUser(r),
		Next:  r.URL.Query().Get("next"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := authForm{Username: strings.TrimSpace(r.FormValue("username"))}

	sid, uid, err := s.Auth.Login(r.Context(), form.Username, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) {
			form.fail("Invalid username or password")
			util.Render(w, "auth_login.html", authPage{
				Title: "Log in",
				Form:  form,
				Next:  r.FormValue("next"),
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.Log.Infow("login", "user_id", uid)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.Cfg.SessionLifetime),
	})

	next := r.FormValue("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		_ = s.Auth.Logout(r.Context(), c.Value)
		c.MaxAge = -1
		c.Path = "/"
		http.SetCookie(w, c)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
