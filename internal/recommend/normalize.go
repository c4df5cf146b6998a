package recommend

import (
	"regexp"
	"strings"
)

const defaultMaxTextLen = 2000

var (
	urlExpr        = regexp.MustCompile(`https?://\S+`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// NormalizerConfig tunes text canonicalization before embedding.
type NormalizerConfig struct {
	Lowercase bool
	MaxLen    int
}

// Normalizer canonicalizes raw article text. It never fails: empty input
// yields an empty string.
type Normalizer struct {
	cfg NormalizerConfig
}

// NewNormalizer applies defaults for zero-valued settings.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultMaxTextLen
	}
	return &Normalizer{cfg: cfg}
}

// Normalize trims, strips URLs, lowercases, collapses whitespace runs to a
// single space and truncates to the configured maximum length.
func (n *Normalizer) Normalize(text string) string {
	t := urlExpr.ReplaceAllString(text, " ")
	t = strings.TrimSpace(t)
	if n.cfg.Lowercase {
		t = strings.ToLower(t)
	}
	t = whitespaceExpr.ReplaceAllString(t, " ")
	if runes := []rune(t); len(runes) > n.cfg.MaxLen {
		t = strings.TrimSpace(string(runes[:n.cfg.MaxLen]))
	}
	return t
}

// NormalizeAll applies Normalize element-wise, preserving order and length.
func (n *Normalizer) NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}
