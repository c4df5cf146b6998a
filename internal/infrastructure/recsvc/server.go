package recsvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"NewsRecommender/internal/recommend"
)

// Engine is the scoring pipeline the service exposes.
type Engine interface {
	Recommend(ctx context.Context, liked, disliked, candidates []string, topK int) ([]recommend.Item, error)
	SelfTest(ctx context.Context) bool
}

// Server exposes the stateless scoring service over HTTP.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewServer wires the engine behind the HTTP surface.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/recommend", s.handleRecommend)
	return r
}

type recommendRequest struct {
	LikedTexts    []string `json:"liked_texts"`
	DislikedTexts []string `json:"disliked_texts"`
	Candidates    []string `json:"candidates"`
	TopK          int      `json:"top_k"`
}

type recommendedItem struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type recommendResponse struct {
	Items []recommendedItem `json:"items"`
}

// handleHealth runs one full scoring round-trip with a fixed fixture.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.engine.SelfTest(r.Context()) {
		writeError(w, http.StatusInternalServerError, "model self-test failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.logger.Info("recommend called",
		"liked", len(req.LikedTexts), "disliked", len(req.DislikedTexts),
		"candidates", len(req.Candidates), "top_k", req.TopK)

	items, err := s.engine.Recommend(r.Context(), req.LikedTexts, req.DislikedTexts, req.Candidates, req.TopK)
	switch {
	case errors.Is(err, recommend.ErrEmptyCandidates), errors.Is(err, recommend.ErrInsufficientSignal):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("scoring failed", "error", err)
		writeError(w, http.StatusInternalServerError, "recommendation service unavailable")
		return
	}

	resp := recommendResponse{Items: make([]recommendedItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, recommendedItem{Index: item.Index, Score: item.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
