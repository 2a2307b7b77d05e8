package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yatube/auth"
	"yatube/cache"
	"yatube/feeds"
	"yatube/monitoring"
	"yatube/storage"
	"yatube/utils"
)

const (
	// Posts per page on the index, group and followed-authors views.
	FeedPageSize = 10
	// Posts per page on a profile view.
	ProfilePageSize = 2
)

type Server struct {
	manager  *storage.Manager
	builder  *feeds.Builder
	sessions *auth.Manager
	pages    cache.Pages
}

func NewServer(
	manager *storage.Manager,
	sessions *auth.Manager,
	pages cache.Pages,
) *Server {
	return &Server{
		manager:  manager,
		builder:  feeds.NewBuilder(manager),
		sessions: sessions,
		pages:    pages,
	}
}

// Handler builds the full route table. Only the index view goes through the
// response cache.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.getIndex)
	mux.HandleFunc("GET /groups/{slug}", s.getGroupFeed)
	mux.HandleFunc("GET /profiles/{username}", s.getProfile)
	mux.HandleFunc("GET /feed", s.getFollowedFeed)

	mux.HandleFunc("GET /posts/{id}", s.getPostDetail)
	mux.HandleFunc("POST /posts", s.createPost)
	mux.HandleFunc("GET /posts/{id}/edit", s.getPostEdit)
	mux.HandleFunc("POST /posts/{id}/edit", s.updatePost)
	mux.HandleFunc("DELETE /posts/{id}", s.deletePost)
	mux.HandleFunc("POST /posts/{id}/comments", s.addComment)

	mux.HandleFunc("POST /profiles/{username}/follow", s.follow)
	mux.HandleFunc("POST /profiles/{username}/unfollow", s.unfollow)

	mux.HandleFunc("POST /auth/signup", s.signup)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/logout", s.logout)

	mux.Handle("GET /metrics", promhttp.Handler())

	return monitoring.NewPrometheusMiddleware(mux)
}

func (s *Server) Run() {
	port := utils.IntFromString(os.Getenv("PORT"), 8000)

	err := http.ListenAndServe(fmt.Sprintf(":%d", port), s.Handler())
	if errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("server closed\n")
	} else if err != nil {
		fmt.Printf("error starting server: %s\n", err)
		os.Exit(1)
	}
}
