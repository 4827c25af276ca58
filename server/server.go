package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"social/auth"
	"social/cache"
	"social/feeds"
	"social/monitoring/middleware"
	"social/realtime"
	"social/storage/db/queries"
)

type Server struct {
	port int

	queries    *queries.Queries
	feed       *feeds.Feed
	feedsCache *cache.FeedsCache
	presence   *cache.PresenceRegistry
	hub        *realtime.Hub
	tokens     *auth.TokenIssuer
}

func NewServer(
	port int,
	q *queries.Queries,
	feedsCache *cache.FeedsCache,
	presence *cache.PresenceRegistry,
	hub *realtime.Hub,
	tokens *auth.TokenIssuer,
) *Server {
	return &Server{
		port:       port,
		queries:    q,
		feed:       feeds.New(q, feedsCache),
		feedsCache: feedsCache,
		presence:   presence,
		hub:        hub,
		tokens:     tokens,
	}
}

func (s *Server) Run() {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/me", s.authed(s.getMe))

	mux.HandleFunc("GET /api/feed", s.authed(s.getFeed))

	mux.HandleFunc("POST /api/posts", s.authed(s.createPost))
	mux.HandleFunc("GET /api/posts/{id}", s.authed(s.getPost))
	mux.HandleFunc("PUT /api/posts/{id}", s.authed(s.updatePost))
	mux.HandleFunc("DELETE /api/posts/{id}", s.authed(s.deletePost))

	mux.HandleFunc("POST /api/posts/{id}/like", s.authed(s.likePost))
	mux.HandleFunc("DELETE /api/posts/{id}/like", s.authed(s.unlikePost))

	mux.HandleFunc("GET /api/posts/{id}/comments", s.authed(s.listComments))
	mux.HandleFunc("POST /api/posts/{id}/comments", s.authed(s.createComment))
	mux.HandleFunc("DELETE /api/comments/{id}", s.authed(s.deleteComment))

	mux.HandleFunc("GET /api/users/{id}", s.authed(s.getProfile))
	mux.HandleFunc("GET /api/users/{id}/posts", s.authed(s.getUserPosts))
	mux.HandleFunc("POST /api/users/{id}/follow", s.authed(s.follow))
	mux.HandleFunc("DELETE /api/users/{id}/follow", s.authed(s.unfollow))
	mux.HandleFunc("GET /api/users/{id}/followers", s.authed(s.listFollowers))
	mux.HandleFunc("GET /api/users/{id}/following", s.authed(s.listFollowing))

	mux.HandleFunc("GET /api/notifications", s.authed(s.listNotifications))
	mux.HandleFunc("POST /api/notifications/read", s.authed(s.markNotificationsRead))

	mux.HandleFunc("GET /ws", s.serveWebsocket)

	mux.Handle("GET /metrics", promhttp.Handler())

	log.Infof("Listening on :%d", s.port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", s.port), middleware.NewServerMiddleware(mux))
	if errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("server closed\n")
	} else if err != nil {
		fmt.Printf("error starting server: %s\n", err)
		os.Exit(1)
	}
}
