package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/usecase"
)

type stubUsers struct{}

func (stubUsers) Ensure(_ context.Context, externalID string) (domain.User, error) {
	return domain.User{ID: 42, ExternalID: externalID}, nil
}

type stubEvents struct {
	added []domain.EventKind
}

func (s *stubEvents) Add(_ context.Context, _, _ int64, kind domain.EventKind) error {
	s.added = append(s.added, kind)
	return nil
}

func (s *stubEvents) LikedTexts(context.Context, int64, int) ([]string, error)    { return nil, nil }
func (s *stubEvents) DislikedTexts(context.Context, int64, int) ([]string, error) { return nil, nil }
func (s *stubEvents) RatedArticleIDs(context.Context, int64) (map[int64]struct{}, error) {
	return nil, nil
}

type stubArticles struct{}

func (stubArticles) Upsert(context.Context, domain.Article) error { return nil }
func (stubArticles) ListLatest(context.Context, int, int) ([]domain.Article, error) {
	return []domain.Article{{ID: 1, URL: "https://news.example/1", Title: "headline", Source: "ann"}}, nil
}
func (stubArticles) ListCandidates(context.Context, int) ([]domain.Article, error) { return nil, nil }
func (stubArticles) GetByIDs(context.Context, []int64) ([]domain.Article, error)   { return nil, nil }

type stubRecommender struct {
	recs []domain.RecommendedArticle
	err  error
}

func (s *stubRecommender) Recommend(context.Context, string, int, int) ([]domain.RecommendedArticle, error) {
	return s.recs, s.err
}

func newTestServer(rec *stubRecommender, events *stubEvents) *httptest.Server {
	if events == nil {
		events = &stubEvents{}
	}
	return httptest.NewServer(NewServer(stubUsers{}, events, stubArticles{}, rec, nil).Router())
}

func TestHandleEnsureUser(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubRecommender{}, nil)
	defer server.Close()

	resp, err := http.Post(server.URL+"/users/ensure", "application/json", strings.NewReader(`{"external_id":"tg-1"}`))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	var got ensureUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UserID != 42 {
		t.Fatalf("unexpected user id: %d", got.UserID)
	}
}

func TestHandleEventValidatesKind(t *testing.T) {
	t.Parallel()

	events := &stubEvents{}
	server := newTestServer(&stubRecommender{}, events)
	defer server.Close()

	resp, err := http.Post(server.URL+"/events", "application/json",
		strings.NewReader(`{"external_id":"tg-1","article_id":3,"event_type":"meh"}`))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid kind, got %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/events", "application/json",
		strings.NewReader(`{"external_id":"tg-1","article_id":3,"event_type":"like"}`))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(events.added) != 1 || events.added[0] != domain.EventLike {
		t.Fatalf("event not recorded: %v", events.added)
	}
}

func TestHandleRecommendErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient likes", usecase.ErrInsufficientLikes, http.StatusBadRequest},
		{"no candidates", usecase.ErrNoCandidates, http.StatusBadRequest},
		{"scoring down", usecase.ErrScoringUnavailable, http.StatusBadGateway},
	}

	for _, tc := range cases {
		server := newTestServer(&stubRecommender{err: tc.err}, nil)

		resp, err := http.Post(server.URL+"/recommend", "application/json",
			strings.NewReader(`{"external_id":"tg-1","top_k":5}`))
		if err != nil {
			t.Fatalf("%s: request error: %v", tc.name, err)
		}
		resp.Body.Close()
		server.Close()

		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, resp.StatusCode)
		}
	}
}

func TestHandleRecommendSuccess(t *testing.T) {
	t.Parallel()

	rec := &stubRecommender{recs: []domain.RecommendedArticle{
		{Article: domain.Article{ID: 9, Title: "pick", URL: "https://news.example/9", Source: "ann"}, Score: 0.6},
	}}
	server := newTestServer(rec, nil)
	defer server.Close()

	resp, err := http.Post(server.URL+"/recommend", "application/json",
		strings.NewReader(`{"external_id":"tg-1","top_k":1}`))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	var got recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != 9 || got.Items[0].Score != 0.6 {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestHandleLatestArticles(t *testing.T) {
	t.Parallel()

	server := newTestServer(&stubRecommender{}, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/articles/latest?limit=5")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	var got articlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "headline" {
		t.Fatalf("unexpected response: %+v", got)
	}
}
