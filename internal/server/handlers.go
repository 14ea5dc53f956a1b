package server

import (
	"net/http"
	"strings"

	"github.com/gauthierbraillon/ytagent/internal/failure"
	"github.com/gauthierbraillon/ytagent/internal/recommend"
	"github.com/gauthierbraillon/ytagent/internal/youtube"
)

// VideoRequest is the body of POST /api/like and POST /api/subscribe.
type VideoRequest struct {
	VideoID string `json:"videoId"`
}

// CommentRequest is the body of POST /api/comment.
type CommentRequest struct {
	VideoID string `json:"videoId"`
	Text    string `json:"text"`
}

// handleSearch handles GET /api/search?query=...&max=N.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		WriteFailure(w, failure.New(failure.InvalidArgument, "Query is required."))
		return
	}
	limit, err := intParam(r, "max", youtube.DefaultSearchResults)
	if err != nil {
		WriteFailure(w, err)
		return
	}

	videos, err := s.engagement.Search(r.Context(), query, limit)
	if err != nil {
		WriteFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, videos)
}

// handleLiked handles GET /api/liked?max=N.
func (s *Server) handleLiked(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit, err := intParam(r, "max", youtube.DefaultLikedResults)
	if err != nil {
		WriteFailure(w, err)
		return
	}

	videos, err := s.engagement.Liked(r.Context(), limit)
	if err != nil {
		WriteFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, videos)
}

// handleRecommend handles GET /api/recommend?max=N. It always answers 200.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit, err := intParam(r, "max", recommend.DefaultMaxResults)
	if err != nil {
		WriteFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.recommender.Recommend(r.Context(), limit))
}

// handleLike handles POST /api/like {"videoId": "..."}.
func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req VideoRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	videoID, err := s.engagement.Like(r.Context(), req.VideoID)
	if err != nil {
		WriteFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Video liked successfully", VideoID: videoID})
}

// handleComment handles POST /api/comment {"videoId": "...", "text": "..."}.
func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req CommentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	commentID, err := s.engagement.Comment(r.Context(), req.VideoID, req.Text)
	if err != nil {
		WriteFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Comment posted successfully", CommentID: commentID})
}

// handleSubscribe handles POST /api/subscribe {"videoId": "..."}. The channel
// is the one that published the video.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req VideoRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	channelID, err := s.engagement.Subscribe(r.Context(), req.VideoID)
	if err != nil {
		WriteFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Subscribed successfully", ChannelID: channelID})
}
