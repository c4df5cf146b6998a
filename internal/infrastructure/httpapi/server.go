package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/usecase"
)

// Recommender is the orchestration entry point the API exposes.
type Recommender interface {
	Recommend(ctx context.Context, externalID string, candidateLimit, topK int) ([]domain.RecommendedArticle, error)
}

// Server exposes the catalog service over HTTP.
type Server struct {
	users       ports.UserRepository
	events      ports.EventRepository
	articles    ports.ArticleRepository
	recommender Recommender
	logger      *slog.Logger
}

// NewServer wires repositories and the orchestrator behind the API.
func NewServer(users ports.UserRepository, events ports.EventRepository, articles ports.ArticleRepository, recommender Recommender, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		users:       users,
		events:      events,
		articles:    articles,
		recommender: recommender,
		logger:      logger,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/users/ensure", s.handleEnsureUser)
	r.Get("/articles/latest", s.handleLatestArticles)
	r.Post("/events", s.handleEvent)
	r.Post("/recommend", s.handleRecommend)
	return r
}

type ensureUserRequest struct {
	ExternalID string `json:"external_id"`
}

type ensureUserResponse struct {
	UserID int64 `json:"user_id"`
}

type articleDTO struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at,omitempty"`
}

type articlesResponse struct {
	Items []articleDTO `json:"items"`
}

type eventRequest struct {
	ExternalID string `json:"external_id"`
	ArticleID  int64  `json:"article_id"`
	EventType  string `json:"event_type"`
}

type recommendRequest struct {
	ExternalID     string `json:"external_id"`
	CandidateLimit int    `json:"candidate_limit"`
	TopK           int    `json:"top_k"`
}

type recommendedArticleDTO struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

type recommendResponse struct {
	Items []recommendedArticleDTO `json:"items"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEnsureUser(w http.ResponseWriter, r *http.Request) {
	var req ensureUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExternalID == "" {
		writeError(w, http.StatusBadRequest, "external_id is required")
		return
	}

	user, err := s.users.Ensure(r.Context(), req.ExternalID)
	if err != nil {
		s.logger.Error("ensure user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ensureUserResponse{UserID: user.ID})
}

func (s *Server) handleLatestArticles(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	articles, err := s.articles.ListLatest(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list latest failed", "error", err)
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	resp := articlesResponse{Items: make([]articleDTO, 0, len(articles))}
	for _, a := range articles {
		resp.Items = append(resp.Items, toArticleDTO(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExternalID == "" || req.ArticleID == 0 {
		writeError(w, http.StatusBadRequest, "external_id and article_id are required")
		return
	}

	kind, err := domain.ParseEventKind(req.EventType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.users.Ensure(r.Context(), req.ExternalID)
	if err != nil {
		s.logger.Error("ensure user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	if err := s.events.Add(r.Context(), user.ID, req.ArticleID, kind); err != nil {
		s.logger.Error("add event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExternalID == "" {
		writeError(w, http.StatusBadRequest, "external_id is required")
		return
	}

	recs, err := s.recommender.Recommend(r.Context(), req.ExternalID, req.CandidateLimit, req.TopK)
	switch {
	case errors.Is(err, usecase.ErrInsufficientLikes), errors.Is(err, usecase.ErrNoCandidates):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, usecase.ErrScoringUnavailable):
		writeError(w, http.StatusBadGateway, "recommendation service unavailable")
		return
	case err != nil:
		s.logger.Error("recommend failed", "error", err)
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	resp := recommendResponse{Items: make([]recommendedArticleDTO, 0, len(recs))}
	for _, rec := range recs {
		resp.Items = append(resp.Items, recommendedArticleDTO{
			ID:     rec.Article.ID,
			Title:  rec.Article.Title,
			URL:    rec.Article.URL,
			Source: rec.Article.Source,
			Score:  rec.Score,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toArticleDTO(a domain.Article) articleDTO {
	dto := articleDTO{
		ID:      a.ID,
		URL:     a.URL,
		Title:   a.Title,
		Content: a.Content,
		Source:  a.Source,
	}
	if !a.PublishedAt.IsZero() {
		dto.PublishedAt = a.PublishedAt.Format(time.RFC3339)
	}
	return dto
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
