package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"blog/internal/app"
	"blog/internal/auth"
	"blog/internal/storage"
)

type Server struct {
	Store  storage.Store
	Auth   *auth.Service
	Cfg    app.Config
	Log    *zap.SugaredLogger
	router chi.Router
}

func NewServer(store storage.Store, cfg app.Config, log *zap.SugaredLogger) *Server {
	s := &Server{
		Store: store,
		Auth:  &auth.Service{Store: store, Lifetime: cfg.SessionLifetime},
		Cfg:   cfg,
		Log:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(s.withSession)

	r.Get("/", s.handleIndex)
	r.Get("/group/{slug}", s.handleGroup)
	r.Get("/profile/{username}", s.handleProfile)

	r.Route("/posts/{postID}", func(r chi.Router) {
		r.Get("/", s.handlePostDetail)
		r.Route("/edit", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handlePostEditForm)
			r.Post("/", s.handlePostEdit)
		})
	})

	r.Route("/create", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handlePostCreateForm)
		r.Post("/", s.handlePostCreate)
	})

	r.Get("/auth/signup", s.handleSignupForm)
	r.Post("/auth/signup", s.handleSignup)
	r.Get("/auth/login", s.handleLoginForm)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/auth/logout", s.handleLogout)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
