package usecase

import (
	"context"
	"errors"
	"testing"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

type fakeUsers struct {
	user domain.User
}

func (f *fakeUsers) Ensure(context.Context, string) (domain.User, error) {
	return f.user, nil
}

type fakeEvents struct {
	liked    []string
	disliked []string
	rated    map[int64]struct{}
}

func (f *fakeEvents) Add(context.Context, int64, int64, domain.EventKind) error { return nil }

func (f *fakeEvents) LikedTexts(context.Context, int64, int) ([]string, error) {
	return f.liked, nil
}

func (f *fakeEvents) DislikedTexts(context.Context, int64, int) ([]string, error) {
	return f.disliked, nil
}

func (f *fakeEvents) RatedArticleIDs(context.Context, int64) (map[int64]struct{}, error) {
	if f.rated == nil {
		return map[int64]struct{}{}, nil
	}
	return f.rated, nil
}

type fakeArticles struct {
	pool []domain.Article
}

func (f *fakeArticles) Upsert(context.Context, domain.Article) error { return nil }

func (f *fakeArticles) ListLatest(_ context.Context, limit, _ int) ([]domain.Article, error) {
	if limit > len(f.pool) {
		limit = len(f.pool)
	}
	return f.pool[:limit], nil
}

func (f *fakeArticles) ListCandidates(_ context.Context, limit int) ([]domain.Article, error) {
	if limit > len(f.pool) {
		limit = len(f.pool)
	}
	return f.pool[:limit], nil
}

func (f *fakeArticles) GetByIDs(_ context.Context, ids []int64) ([]domain.Article, error) {
	byID := make(map[int64]domain.Article)
	for _, a := range f.pool {
		byID[a.ID] = a
	}
	out := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeScoring struct {
	gotLiked      []string
	gotDisliked   []string
	gotCandidates []ports.Candidate
	result        []ports.ScoredCandidate
	err           error
}

func (f *fakeScoring) Score(_ context.Context, liked, disliked []string, candidates []ports.Candidate, _ int) ([]ports.ScoredCandidate, error) {
	f.gotLiked = liked
	f.gotDisliked = disliked
	f.gotCandidates = candidates
	return f.result, f.err
}

func testPool() []domain.Article {
	return []domain.Article{
		{ID: 1, URL: "https://news.example/1", Title: "Series A confirms new season date", Source: "ann"},
		{ID: 2, URL: "https://news.example/2", Title: "gacha collaboration revenue record", Source: "ann"},
		{ID: 3, URL: "https://news.example/3", Title: "Series B spin-off announced", Source: "crunch"},
	}
}

func TestRecommendMapsScoresToArticles(t *testing.T) {
	t.Parallel()

	scoring := &fakeScoring{result: []ports.ScoredCandidate{
		{ID: 3, Score: 0.9},
		{ID: 1, Score: 0.4},
	}}
	events := &fakeEvents{
		liked:    []string{"season renewal announced"},
		disliked: []string{"mobile game event"},
		rated:    map[int64]struct{}{2: {}},
	}

	o := NewOrchestrator(
		&fakeUsers{user: domain.User{ID: 7, ExternalID: "tg-7"}},
		events,
		&fakeArticles{pool: testPool()},
		scoring,
		OrchestratorConfig{},
		nil,
	)

	got, err := o.Recommend(context.Background(), "tg-7", 0, 2)
	if err != nil {
		t.Fatalf("Recommend error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(got))
	}
	if got[0].Article.ID != 3 || got[0].Score != 0.9 {
		t.Fatalf("unexpected first recommendation: %+v", got[0])
	}
	if got[1].Article.ID != 1 || got[1].Score != 0.4 {
		t.Fatalf("unexpected second recommendation: %+v", got[1])
	}

	// the rated article must not reach the scoring service
	for _, c := range scoring.gotCandidates {
		if c.ID == 2 {
			t.Fatalf("rated article leaked into candidates: %+v", scoring.gotCandidates)
		}
	}
	if len(scoring.gotCandidates) != 2 {
		t.Fatalf("expected 2 candidates submitted, got %d", len(scoring.gotCandidates))
	}
	if scoring.gotCandidates[0].Text == "" {
		t.Fatal("candidate text must carry title+body")
	}
}

func TestRecommendZeroLikesRejected(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		&fakeUsers{user: domain.User{ID: 7}},
		&fakeEvents{},
		&fakeArticles{pool: testPool()},
		&fakeScoring{},
		OrchestratorConfig{},
		nil,
	)

	_, err := o.Recommend(context.Background(), "tg-7", 0, 5)
	if !errors.Is(err, ErrInsufficientLikes) {
		t.Fatalf("expected ErrInsufficientLikes, got %v", err)
	}
}

func TestRecommendAllRatedYieldsNoCandidates(t *testing.T) {
	t.Parallel()

	events := &fakeEvents{
		liked: []string{"anything"},
		rated: map[int64]struct{}{1: {}, 2: {}, 3: {}},
	}
	o := NewOrchestrator(
		&fakeUsers{user: domain.User{ID: 7}},
		events,
		&fakeArticles{pool: testPool()},
		&fakeScoring{},
		OrchestratorConfig{},
		nil,
	)

	_, err := o.Recommend(context.Background(), "tg-7", 0, 5)
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestRecommendDropsUnknownIdentities(t *testing.T) {
	t.Parallel()

	scoring := &fakeScoring{result: []ports.ScoredCandidate{
		{ID: 999, Score: 0.8},
		{ID: 1, Score: 0.3},
	}}
	o := NewOrchestrator(
		&fakeUsers{user: domain.User{ID: 7}},
		&fakeEvents{liked: []string{"anything"}},
		&fakeArticles{pool: testPool()},
		scoring,
		OrchestratorConfig{},
		nil,
	)

	got, err := o.Recommend(context.Background(), "tg-7", 0, 5)
	if err != nil {
		t.Fatalf("Recommend error: %v", err)
	}
	if len(got) != 1 || got[0].Article.ID != 1 {
		t.Fatalf("unknown identity must be dropped, got %+v", got)
	}
}

func TestRecommendScoringFailurePropagates(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		&fakeUsers{user: domain.User{ID: 7}},
		&fakeEvents{liked: []string{"anything"}},
		&fakeArticles{pool: testPool()},
		&fakeScoring{err: errors.New("scoring down")},
		OrchestratorConfig{},
		nil,
	)

	_, err := o.Recommend(context.Background(), "tg-7", 0, 5)
	if err == nil || errors.Is(err, ErrInsufficientLikes) || errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected a scoring failure, got %v", err)
	}
}
