package server

import (
	"net/http"
	"time"
)

// registerRoutes sets up all routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)

	// Authorization handshake
	mux.HandleFunc("/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/auth/callback", s.handleAuthCallback)

	// Engagement
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/liked", s.handleLiked)
	mux.HandleFunc("/api/recommend", s.handleRecommend)
	mux.HandleFunc("/api/like", s.handleLike)
	mux.HandleFunc("/api/comment", s.handleComment)
	mux.HandleFunc("/api/subscribe", s.handleSubscribe)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
