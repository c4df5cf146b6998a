package recsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsRecommender/internal/recommend"
)

type stubEngine struct {
	items   []recommend.Item
	err     error
	healthy bool
}

func (s *stubEngine) Recommend(_ context.Context, _, _, candidates []string, _ int) ([]recommend.Item, error) {
	if len(candidates) == 0 {
		return nil, recommend.ErrEmptyCandidates
	}
	return s.items, s.err
}

func (s *stubEngine) SelfTest(context.Context) bool { return s.healthy }

func TestHandleRecommend(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{items: []recommend.Item{{Index: 1, Score: 0.7}, {Index: 0, Score: 0.2}}}
	server := httptest.NewServer(NewServer(engine, nil).Router())
	defer server.Close()

	body := `{"liked_texts":["a"],"disliked_texts":[],"candidates":["x","y"],"top_k":2}`
	resp, err := http.Post(server.URL+"/recommend", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var got recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Index != 1 || got.Items[0].Score != 0.7 {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestHandleRecommendEmptyCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(NewServer(&stubEngine{}, nil).Router())
	defer server.Close()

	body := `{"liked_texts":["a"],"candidates":[]}`
	resp, err := http.Post(server.URL+"/recommend", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(NewServer(&stubEngine{healthy: true}, nil).Router())
	defer healthy.Close()

	resp, err := http.Get(healthy.URL + "/health")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	broken := httptest.NewServer(NewServer(&stubEngine{healthy: false}, nil).Router())
	defer broken.Close()

	resp, err = http.Get(broken.URL + "/health")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
