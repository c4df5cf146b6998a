package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsRecommender/internal/ports"
)

func testCandidates() []ports.Candidate {
	return []ports.Candidate{
		{ID: 11, Text: "first candidate"},
		{ID: 22, Text: "second candidate"},
		{ID: 33, Text: "third candidate"},
	}
}

func TestScoreMapsIndicesToIdentities(t *testing.T) {
	t.Parallel()

	var got recommendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recommend" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"items":[{"index":2,"score":0.8},{"index":0,"score":0.5}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, nil)
	scored, err := c.Score(context.Background(), []string{"liked"}, []string{"disliked"}, testCandidates(), 2)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}

	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
	if scored[0].ID != 33 || scored[0].Score != 0.8 {
		t.Fatalf("unexpected first result: %+v", scored[0])
	}
	if scored[1].ID != 11 || scored[1].Score != 0.5 {
		t.Fatalf("unexpected second result: %+v", scored[1])
	}

	// the request must carry candidate texts in submission order
	if len(got.Candidates) != 3 || got.Candidates[0] != "first candidate" || got.Candidates[2] != "third candidate" {
		t.Fatalf("unexpected submitted candidates: %v", got.Candidates)
	}
	if got.TopK != 2 {
		t.Fatalf("unexpected top_k: %d", got.TopK)
	}
}

func TestScoreDropsOutOfRangeIndices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"index":7,"score":0.9},{"index":-1,"score":0.9},{"index":1,"score":0.3}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, nil)
	scored, err := c.Score(context.Background(), []string{"liked"}, nil, testCandidates(), 5)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}

	if len(scored) != 1 || scored[0].ID != 22 {
		t.Fatalf("out-of-range indices must be dropped, got %+v", scored)
	}
}

func TestScoreSurfacesServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "candidates cannot be empty", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, nil)
	if _, err := c.Score(context.Background(), []string{"liked"}, nil, testCandidates(), 5); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
