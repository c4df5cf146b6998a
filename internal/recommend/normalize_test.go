package recommend

import (
	"strings"
	"testing"
)

func TestNormalizeCanonicalizes(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizerConfig{Lowercase: true})

	got := n.Normalize("  Breaking   NEWS:\tseason\nrenewal https://example.org/a?b=c announced  ")
	want := "breaking news: season renewal announced"
	if got != want {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizerConfig{Lowercase: true})
	if got := n.Normalize(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := n.Normalize("   \n\t "); got != "" {
		t.Fatalf("expected empty output for whitespace input, got %q", got)
	}
}

func TestNormalizeTruncates(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizerConfig{Lowercase: true, MaxLen: 10})
	got := n.Normalize(strings.Repeat("abc ", 20))
	if len([]rune(got)) > 10 {
		t.Fatalf("output longer than max: %q", got)
	}
	if strings.HasSuffix(got, " ") {
		t.Fatalf("truncated output has trailing space: %q", got)
	}
}

func TestNormalizeProperties(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizerConfig{Lowercase: true})
	inputs := []string{
		"Plain text",
		"  padded  ",
		"mixed https://a.example CASE\twith  runs",
		"многоязычный   текст",
	}
	for _, in := range inputs {
		out := n.Normalize(in)
		if out != strings.TrimSpace(out) {
			t.Fatalf("output not trimmed: %q", out)
		}
		if strings.Contains(out, "  ") {
			t.Fatalf("output contains double space: %q", out)
		}
		if out != strings.ToLower(out) {
			t.Fatalf("output not lowercased: %q", out)
		}
	}
}

func TestNormalizeAllPreservesOrderAndLength(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NormalizerConfig{Lowercase: true})
	in := []string{"First ONE", "", "  third "}
	out := n.NormalizeAll(in)

	if len(out) != len(in) {
		t.Fatalf("expected %d outputs, got %d", len(in), len(out))
	}
	if out[0] != "first one" || out[1] != "" || out[2] != "third" {
		t.Fatalf("unexpected batch output: %v", out)
	}
}
